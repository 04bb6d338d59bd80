package l6score

import (
	"math"

	"github.com/fleetwatch/dms/internal/dms/l5debounce"
	"gonum.org/v1/gonum/stat"
)

type category int

const (
	categoryFatigue category = iota
	categoryDistraction
	categoryLane
	categoryFollowing
	categoryCount
)

var eventCategory = map[string]category{
	"driver_fatigue":     categoryFatigue,
	"microsleep":         categoryFatigue,
	"distracted_driving": categoryDistraction,
	"mobile_phone_use":   categoryDistraction,
	"seatbelt_not_worn":  categoryDistraction,
	"lane_deviation":     categoryLane,
	"tailgating":         categoryFollowing,
	"obstruction_ahead":  categoryFollowing,
}

var eventWeight = map[string]float64{
	"driver_fatigue":     2.2,
	"microsleep":         3.0,
	"distracted_driving": 1.9,
	"mobile_phone_use":   2.0,
	"seatbelt_not_worn":  1.6,
	"lane_deviation":     1.5,
	"tailgating":         1.8,
	"obstruction_ahead":  1.4,
}

// categoryNames gives the four category keys, in fixed order, under
// which details.penalties is reported (spec §4.5 "Accumulate per
// category"; original_source/backend/app/services/video_processor.py
// ::_score_trip always emits all four, even when a category saw no
// events).
var categoryNames = [categoryCount]string{
	categoryFatigue:     "fatigue",
	categoryDistraction: "distraction",
	categoryLane:        "lane",
	categoryFollowing:   "following",
}

// ScoreDetails carries the penalty/event-count breakdown that
// accompanies the four sub-scores in the trip report (spec §6).
type ScoreDetails struct {
	Penalties    map[string]float64 `json:"penalties"`
	EventCounts  map[string]int     `json:"event_counts"`
	TotalEvents  int                `json:"total_events"`
	DurationSecs float64            `json:"duration_seconds"`
}

// CategoryScores is the per-trip scoring output (spec §3 CategoryScores
// entity).
type CategoryScores struct {
	FatigueScore           float64      `json:"fatigue_score"`
	DistractionScore       float64      `json:"distraction_score"`
	LaneScore              float64      `json:"lane_score"`
	FollowingDistanceScore float64      `json:"following_distance_score"`
	OverallScore           float64      `json:"overall_score"`
	Details                ScoreDetails `json:"details"`
}

// Score reduces a trip's emitted events into CategoryScores.
// durationSeconds is the trip's total duration, used to normalize
// penalty totals for trips over one hour (spec §4.5: norm = max(1,
// duration_seconds/3600)).
func Score(events []l5debounce.Event, durationSeconds float64) CategoryScores {
	var penaltyTotals [categoryCount]float64
	eventCounts := make(map[string]int)

	for _, e := range events {
		weight := eventWeight[e.Type]
		cat := eventCategory[e.Type]
		durS := math.Max(0.5, float64(e.TsMsEnd-e.TsMsStart)/1000.0)
		penalty := weight * e.Severity * durS
		penaltyTotals[cat] += penalty
		eventCounts[e.Type]++
	}

	penalties := make(map[string]float64, categoryCount)
	for c := category(0); c < categoryCount; c++ {
		penalties[categoryNames[c]] = round2(penaltyTotals[c])
	}

	norm := math.Max(1, durationSeconds/3600.0)
	sub := func(c category) float64 {
		return math.Max(0, 100-penaltyTotals[c]/norm)
	}

	fatigue := sub(categoryFatigue)
	distraction := sub(categoryDistraction)
	lane := sub(categoryLane)
	following := sub(categoryFollowing)

	overall := stat.Mean([]float64{fatigue, distraction, lane, following}, nil)

	total := 0
	for _, n := range eventCounts {
		total += n
	}

	return CategoryScores{
		FatigueScore:           round2(fatigue),
		DistractionScore:       round2(distraction),
		LaneScore:              round2(lane),
		FollowingDistanceScore: round2(following),
		OverallScore:           round2(overall),
		Details: ScoreDetails{
			Penalties:    penalties,
			EventCounts:  eventCounts,
			TotalEvents:  total,
			DurationSecs: round2(durationSeconds),
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
