package l4interpret

import (
	"math"

	"github.com/fleetwatch/dms/internal/dms/l3signal"
)

// Interpreter folds a frame's signals into candidate activations. It owns
// only the PERCLOS window and the microsleep closed-eye streak — every
// other activation is a direct, stateless translation of its input
// signal.
type Interpreter struct {
	perclos        *perclosWindow
	closedStreakMs float64
}

// NewInterpreter creates an interpreter sized for the given target_fps.
func NewInterpreter(fps float64) *Interpreter {
	it := &Interpreter{}
	it.Reset(fps)
	return it
}

// Reset reinitializes the PERCLOS window and microsleep streak for a new
// trip (or a new fps).
func (it *Interpreter) Reset(fps float64) {
	it.perclos = newPerclosWindow(fps)
	it.closedStreakMs = 0
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// ProcessCabin folds the cabin-stream (or front-when-no-cabin) signals
// into the five cabin-scoped activations: driver_fatigue, microsleep,
// distracted_driving, mobile_phone_use, seatbelt_not_worn.
func (it *Interpreter) ProcessCabin(
	face l3signal.DriverFaceSignal,
	seatbelt l3signal.SeatbeltSignal,
	scene l3signal.SceneSignal,
	nowMs int64,
	deltaMs int64,
) []Activation {
	it.perclos.push(nowMs, face.EyesClosed)
	r := it.perclos.ratio()
	fatigueActive := r > 0.35
	fatigueConf := 0.0
	if fatigueActive {
		fatigueConf = math.Min(1, math.Max(face.FatigueConf, (r-0.25)*2.0))
	}

	if face.EyesClosed {
		it.closedStreakMs += float64(deltaMs)
	} else {
		it.closedStreakMs = 0
	}
	microsleepActive := it.closedStreakMs >= 1500
	microsleepConf := 0.0
	if microsleepActive {
		microsleepConf = math.Min(1, it.closedStreakMs/3000.0)
	}

	return []Activation{
		{
			Type:       DriverFatigue,
			Active:     fatigueActive,
			Confidence: fatigueConf,
			Metadata:   map[string]interface{}{"perclos": round3(r)},
		},
		{
			Type:       Microsleep,
			Active:     microsleepActive,
			Confidence: microsleepConf,
			Metadata:   map[string]interface{}{"closed_ms": it.closedStreakMs},
		},
		{
			Type:       DistractedDriving,
			Active:     face.DistractedActive,
			Confidence: face.DistractedConf,
		},
		{
			Type:       MobilePhoneUse,
			Active:     scene.PhonePresent,
			Confidence: scene.PhoneConf,
		},
		{
			Type:       SeatbeltNotWorn,
			Active:     seatbelt.Missing,
			Confidence: seatbelt.Confidence,
		},
	}
}

// ProcessFront folds the front-stream signals into the three
// forward-scene activations: lane_deviation, obstruction_ahead,
// tailgating.
func (it *Interpreter) ProcessFront(lane l3signal.LaneSignal, scene l3signal.SceneSignal) []Activation {
	return []Activation{
		{
			Type:       LaneDeviation,
			Active:     lane.Deviated,
			Confidence: lane.Confidence,
			Metadata:   map[string]interface{}{"offset_ratio": round3(lane.OffsetRatio)},
		},
		{
			Type:       ObstructionAhead,
			Active:     scene.Obstruction,
			Confidence: scene.ObstructionConf,
			Metadata:   map[string]interface{}{"lead_distance_m": round3(scene.LeadDistanceM)},
		},
		{
			Type:       Tailgating,
			Active:     scene.Tailgating,
			Confidence: scene.TailgatingConf,
			Metadata:   map[string]interface{}{"lead_distance_m": round3(scene.LeadDistanceM)},
		},
	}
}
