package matching

import (
	"sort"

	"github.com/fleetwatch/dms/internal/eval/evrecord"
)

type key struct {
	tripID    string
	eventType string
}

// duration returns an event's span in milliseconds, floored at 1 so a
// zero-length (instantaneous) event never divides IoU by zero.
func duration(ev evrecord.EventRecord) int64 {
	d := ev.TsMsEnd - ev.TsMsStart
	if d < 1 {
		return 1
	}
	return d
}

// TemporalIoU returns the intersection-over-union of two events'
// [ts_ms_start, ts_ms_end) intervals.
func TemporalIoU(a, b evrecord.EventRecord) float64 {
	left := maxInt64(a.TsMsStart, b.TsMsStart)
	right := minInt64(a.TsMsEnd, b.TsMsEnd)
	inter := maxInt64(0, right-left)
	union := duration(a) + duration(b) - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// CenterDistanceMs returns the absolute distance in milliseconds
// between two events' interval midpoints.
func CenterDistanceMs(a, b evrecord.EventRecord) int64 {
	ac := (a.TsMsStart + a.TsMsEnd) / 2
	bc := (b.TsMsStart + b.TsMsEnd) / 2
	d := ac - bc
	if d < 0 {
		return -d
	}
	return d
}

// compatible reports whether a ground-truth event and a prediction may
// be paired at all: same trip, same event type, and either shares a
// stream or one side's stream is unknown (spec §5 matching rules).
func compatible(a, b evrecord.EventRecord) bool {
	if a.TripID != b.TripID {
		return false
	}
	if a.EventType != b.EventType {
		return false
	}
	if a.Stream != evrecord.StreamUnknown && b.Stream != evrecord.StreamUnknown && a.Stream != b.Stream {
		return false
	}
	return true
}

// MatchEvents runs the greedy confidence-ordered matcher over every
// (trip_id, event_type) group present in gt or pred, returning one
// MatchResult per prediction (tp or fp) and one per unmatched
// ground-truth event (fn). Predictions are tried in (confidence desc,
// source_id asc) order — the source_id tie-break is an explicit
// deviation from the Python original's reliance on stable-sort input
// order (spec §9, DESIGN.md Open Question 3).
func MatchEvents(gt, pred []evrecord.EventRecord, iouThreshold float64, toleranceMs int64) []evrecord.MatchResult {
	byKeyGT := make(map[key][]evrecord.EventRecord)
	byKeyPred := make(map[key][]evrecord.EventRecord)

	for _, ev := range gt {
		k := key{ev.TripID, ev.EventType}
		byKeyGT[k] = append(byKeyGT[k], ev)
	}
	for _, ev := range pred {
		k := key{ev.TripID, ev.EventType}
		byKeyPred[k] = append(byKeyPred[k], ev)
	}

	keySet := make(map[key]struct{})
	for k := range byKeyGT {
		keySet[k] = struct{}{}
	}
	for k := range byKeyPred {
		keySet[k] = struct{}{}
	}
	keys := make([]key, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].tripID != keys[j].tripID {
			return keys[i].tripID < keys[j].tripID
		}
		return keys[i].eventType < keys[j].eventType
	})

	var results []evrecord.MatchResult

	for _, k := range keys {
		gts := append([]evrecord.EventRecord(nil), byKeyGT[k]...)
		sort.Slice(gts, func(i, j int) bool {
			if gts[i].TsMsStart != gts[j].TsMsStart {
				return gts[i].TsMsStart < gts[j].TsMsStart
			}
			return gts[i].TsMsEnd < gts[j].TsMsEnd
		})

		preds := append([]evrecord.EventRecord(nil), byKeyPred[k]...)
		sort.Slice(preds, func(i, j int) bool {
			if preds[i].Confidence != preds[j].Confidence {
				return preds[i].Confidence > preds[j].Confidence
			}
			return preds[i].SourceID < preds[j].SourceID
		})

		usedGT := make(map[string]bool)
		usedPred := make(map[string]bool)

		for _, p := range preds {
			var bestGT *evrecord.EventRecord
			bestScore := -1.0
			bestIoU := 0.0

			for i := range gts {
				g := gts[i]
				if usedGT[g.SourceID] || !compatible(g, p) {
					continue
				}
				iou := TemporalIoU(g, p)
				closeEnough := CenterDistanceMs(g, p) <= toleranceMs
				if iou < iouThreshold && !closeEnough {
					continue
				}
				score := iou
				if closeEnough {
					score += 0.1
				}
				if score > bestScore {
					bestScore = score
					bestGT = &gts[i]
					bestIoU = iou
				}
			}

			if bestGT == nil {
				continue
			}

			usedGT[bestGT.SourceID] = true
			usedPred[p.SourceID] = true
			results = append(results, evrecord.MatchResult{
				TripID:     p.TripID,
				EventType:  p.EventType,
				Stream:     p.Stream,
				Scenario:   p.Scenario,
				GTID:       bestGT.SourceID,
				PredID:     p.SourceID,
				Confidence: p.Confidence,
				IoU:        bestIoU,
				Outcome:    evrecord.OutcomeTP,
			})
		}

		for _, p := range preds {
			if usedPred[p.SourceID] {
				continue
			}
			results = append(results, evrecord.MatchResult{
				TripID:     p.TripID,
				EventType:  p.EventType,
				Stream:     p.Stream,
				Scenario:   p.Scenario,
				PredID:     p.SourceID,
				Confidence: p.Confidence,
				Outcome:    evrecord.OutcomeFP,
			})
		}

		for _, g := range gts {
			if usedGT[g.SourceID] {
				continue
			}
			results = append(results, evrecord.MatchResult{
				TripID:    g.TripID,
				EventType: g.EventType,
				Stream:    g.Stream,
				Scenario:  g.Scenario,
				GTID:      g.SourceID,
				Outcome:   evrecord.OutcomeFN,
			})
		}
	}

	return results
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
