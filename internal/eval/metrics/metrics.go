package metrics

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/fleetwatch/dms/internal/eval/evrecord"
	"github.com/fleetwatch/dms/internal/eval/matching"
)

// Counts is the precision/recall/F1 summary of one slice of matches
// (spec §6 evaluation.json `overall`/`by_event`/`by_stream`/
// `by_scenario` shape).
type Counts struct {
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	FN        int     `json:"fn"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

// FromMatches reduces a slice of MatchResults to tp/fp/fn counts and
// derived precision/recall/F1.
func FromMatches(matches []evrecord.MatchResult) Counts {
	var tp, fp, fn int
	for _, m := range matches {
		switch m.Outcome {
		case evrecord.OutcomeTP:
			tp++
		case evrecord.OutcomeFP:
			fp++
		case evrecord.OutcomeFN:
			fn++
		}
	}

	precision := safeDiv(float64(tp), float64(tp+fp))
	recall := safeDiv(float64(tp), float64(tp+fn))
	f1 := safeDiv(2*precision*recall, precision+recall)

	return Counts{
		TP:        tp,
		FP:        fp,
		FN:        fn,
		Precision: round(precision, 4),
		Recall:    round(recall, 4),
		F1:        round(f1, 4),
	}
}

// SlicedMetrics groups matches by keyFn(m) and reduces each group with
// FromMatches, keyed by the group's string label.
func SlicedMetrics(matches []evrecord.MatchResult, keyFn func(evrecord.MatchResult) string) map[string]Counts {
	grouped := make(map[string][]evrecord.MatchResult)
	for _, m := range matches {
		k := keyFn(m)
		grouped[k] = append(grouped[k], m)
	}
	out := make(map[string]Counts, len(grouped))
	for k, v := range grouped {
		out[k] = FromMatches(v)
	}
	return out
}

// BestThreshold is one entry of a threshold sweep's best-F1 summary
// (spec §6 `threshold_sweep.global_best`/`per_event_best`).
type BestThreshold struct {
	Threshold float64 `json:"threshold"`
	F1        float64 `json:"f1"`
}

// ThresholdRow is one row of a confidence threshold sweep: the overall
// counts at that threshold plus a per-event-type F1 breakdown. The
// per-event F1s flatten into `<event_type>_f1` keys on marshal,
// matching the Python original's dict-merge row shape.
type ThresholdRow struct {
	Threshold  float64
	Counts     Counts
	PerEventF1 map[string]float64
}

// MarshalJSON flattens Counts and PerEventF1 onto the row alongside
// threshold, matching the Python original's `{"threshold": thr,
// **overall, f"{event_type}_f1": f1}` row shape.
func (r ThresholdRow) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"threshold": r.Threshold,
		"tp":        r.Counts.TP,
		"fp":        r.Counts.FP,
		"fn":        r.Counts.FN,
		"precision": r.Counts.Precision,
		"recall":    r.Counts.Recall,
		"f1":        r.Counts.F1,
	}
	for eventType, f1 := range r.PerEventF1 {
		m[eventType+"_f1"] = f1
	}
	return json.Marshal(m)
}

// ThresholdSweep is the confidence threshold sweep result (spec §5
// "Threshold sweep").
type ThresholdSweep struct {
	Rows         []ThresholdRow           `json:"rows"`
	GlobalBest   BestThreshold            `json:"global_best"`
	PerEventBest map[string]BestThreshold `json:"per_event_best"`
}

// Sweep runs match_events at each threshold in 0.10..0.95 (step 0.05),
// filtering predictions by confidence >= threshold, and tracks the
// best-F1 threshold overall and per event type (spec §5 "Threshold
// sweep").
func Sweep(gt, pred []evrecord.EventRecord, iouThreshold float64, toleranceMs int64) ThresholdSweep {
	eventTypeSet := make(map[string]struct{})
	for _, ev := range gt {
		eventTypeSet[ev.EventType] = struct{}{}
	}
	for _, ev := range pred {
		eventTypeSet[ev.EventType] = struct{}{}
	}
	eventTypes := make([]string, 0, len(eventTypeSet))
	for t := range eventTypeSet {
		eventTypes = append(eventTypes, t)
	}
	sort.Strings(eventTypes)

	perEventBest := make(map[string]BestThreshold, len(eventTypes))
	for _, t := range eventTypes {
		perEventBest[t] = BestThreshold{Threshold: 0.5, F1: -1.0}
	}
	globalBest := BestThreshold{Threshold: 0.5, F1: -1.0}

	var rows []ThresholdRow
	for i := 10; i <= 95; i += 5 {
		thr := round(float64(i)/100.0, 2)

		var filtered []evrecord.EventRecord
		for _, p := range pred {
			if p.Confidence >= thr {
				filtered = append(filtered, p)
			}
		}

		matches := matching.MatchEvents(gt, filtered, iouThreshold, toleranceMs)
		overall := FromMatches(matches)
		if overall.F1 > globalBest.F1 {
			globalBest = BestThreshold{Threshold: thr, F1: overall.F1}
		}

		byEvent := SlicedMetrics(matches, func(m evrecord.MatchResult) string { return m.EventType })
		perEventF1 := make(map[string]float64, len(eventTypes))
		for _, t := range eventTypes {
			f1 := byEvent[t].F1
			perEventF1[t] = round(f1, 4)
			if f1 > perEventBest[t].F1 {
				perEventBest[t] = BestThreshold{Threshold: thr, F1: f1}
			}
		}

		rows = append(rows, ThresholdRow{Threshold: thr, Counts: overall, PerEventF1: perEventF1})
	}

	return ThresholdSweep{Rows: rows, GlobalBest: globalBest, PerEventBest: perEventBest}
}

// CalibrationBucket is one equal-width confidence bucket's diagnostic
// row (spec §5 "Calibration"). Variance is a supplemented diagnostic
// not present in the original implementation's bucket rows: the
// within-bucket confidence spread, useful for judging whether a
// bucket's avg_conf is representative of its members.
type CalibrationBucket struct {
	Bin      int     `json:"bin"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	Count    int     `json:"count"`
	AvgConf  float64 `json:"avg_conf"`
	Accuracy float64 `json:"accuracy"`
	Variance float64 `json:"variance"`
}

// Calibration is the confidence-calibration summary (spec §5
// "Calibration"): expected calibration error, Brier score, and the
// per-bucket breakdown behind them.
type Calibration struct {
	ECE   float64             `json:"ece"`
	Brier float64             `json:"brier"`
	Bins  []CalibrationBucket `json:"bins"`
}

// CalibrateConfidence buckets every prediction (tp or fp; fn rows carry
// no prediction and are excluded) into `bins` equal-width confidence
// buckets and computes ECE/Brier (spec §5 "Calibration"). The last
// bucket is closed on both ends ([low, high]); every other bucket is
// half-open ([low, high)).
func CalibrateConfidence(matches []evrecord.MatchResult, bins int) Calibration {
	var predRows []evrecord.MatchResult
	for _, m := range matches {
		if m.PredID != "" {
			predRows = append(predRows, m)
		}
	}
	if len(predRows) == 0 {
		return Calibration{ECE: 0, Brier: 0, Bins: nil}
	}

	conf := make([]float64, len(predRows))
	correct := make([]float64, len(predRows))
	for i, m := range predRows {
		conf[i] = m.Confidence
		if m.Outcome == evrecord.OutcomeTP {
			correct[i] = 1.0
		}
	}

	var brierSum float64
	for i := range conf {
		diff := correct[i] - conf[i]
		brierSum += diff * diff
	}
	brier := brierSum / float64(len(conf))

	total := len(conf)
	bucketRows := make([]CalibrationBucket, 0, bins)
	var ece float64

	for i := 0; i < bins; i++ {
		low := float64(i) / float64(bins)
		high := float64(i+1) / float64(bins)

		var idx []int
		for j, c := range conf {
			if i == bins-1 {
				if c >= low && c <= high {
					idx = append(idx, j)
				}
			} else if c >= low && c < high {
				idx = append(idx, j)
			}
		}

		if len(idx) == 0 {
			bucketRows = append(bucketRows, CalibrationBucket{Bin: i, Low: low, High: high})
			continue
		}

		bucketConf := make([]float64, len(idx))
		bucketCorrect := make([]float64, len(idx))
		for k, j := range idx {
			bucketConf[k] = conf[j]
			bucketCorrect[k] = correct[j]
		}

		avgConf := stat.Mean(bucketConf, nil)
		acc := stat.Mean(bucketCorrect, nil)
		weight := float64(len(idx)) / float64(total)
		ece += math.Abs(acc-avgConf) * weight

		variance := 0.0
		if len(bucketConf) > 1 {
			variance = stat.Variance(bucketConf, nil)
		}

		bucketRows = append(bucketRows, CalibrationBucket{
			Bin:      i,
			Low:      low,
			High:     high,
			Count:    len(idx),
			AvgConf:  round(avgConf, 4),
			Accuracy: round(acc, 4),
			Variance: round(variance, 4),
		})
	}

	return Calibration{
		ECE:   round(ece, 5),
		Brier: round(brier, 5),
		Bins:  bucketRows,
	}
}

// Dataset summarizes the evaluated input sizes (spec §6 evaluation.json
// `dataset`).
type Dataset struct {
	GroundTruthEvents int `json:"ground_truth_events"`
	PredictedEvents   int `json:"predicted_events"`
	TripsGroundTruth  int `json:"trips_ground_truth"`
	TripsPredicted    int `json:"trips_predicted"`
}

// Config echoes the evaluation run's tuning parameters into the report
// (spec §6 evaluation.json `config`).
type Config struct {
	IoUThreshold float64 `json:"iou_threshold"`
	ToleranceMs  int64   `json:"tolerance_ms"`
	Bins         int     `json:"bins"`
}

// FailureExamples caps the false-positive/false-negative match lists at
// 200 each, so a large evaluation run's report stays a bounded size
// (spec §5 "Failure examples").
type FailureExamples struct {
	FalsePositives []evrecord.MatchResult `json:"false_positives"`
	FalseNegatives []evrecord.MatchResult `json:"false_negatives"`
}

const maxFailureExamples = 200

// Report is the complete evaluation.json payload (spec §6).
type Report struct {
	Config          Config                 `json:"config"`
	Dataset         Dataset                `json:"dataset"`
	Overall         Counts                 `json:"overall"`
	ByEvent         map[string]Counts      `json:"by_event"`
	ByStream        map[string]Counts      `json:"by_stream"`
	ByScenario      map[string]Counts      `json:"by_scenario"`
	Calibration     Calibration            `json:"calibration"`
	ThresholdSweep  ThresholdSweep         `json:"threshold_sweep"`
	FailureExamples FailureExamples        `json:"failure_examples"`
	Matches         []evrecord.MatchResult `json:"matches"`
}

// Evaluate runs the full Evaluation Engine core: matching, overall and
// sliced metrics, calibration, threshold sweep, and failure-example
// capture (spec §5 Evaluation Engine: core).
func Evaluate(gt, pred []evrecord.EventRecord, iouThreshold float64, toleranceMs int64, bins int) Report {
	matches := matching.MatchEvents(gt, pred, iouThreshold, toleranceMs)

	tripsGT := make(map[string]struct{})
	for _, ev := range gt {
		tripsGT[ev.TripID] = struct{}{}
	}
	tripsPred := make(map[string]struct{})
	for _, ev := range pred {
		tripsPred[ev.TripID] = struct{}{}
	}

	var falsePositives, falseNegatives []evrecord.MatchResult
	for _, m := range matches {
		switch m.Outcome {
		case evrecord.OutcomeFP:
			if len(falsePositives) < maxFailureExamples {
				falsePositives = append(falsePositives, m)
			}
		case evrecord.OutcomeFN:
			if len(falseNegatives) < maxFailureExamples {
				falseNegatives = append(falseNegatives, m)
			}
		}
	}

	return Report{
		Config: Config{
			IoUThreshold: iouThreshold,
			ToleranceMs:  toleranceMs,
			Bins:         bins,
		},
		Dataset: Dataset{
			GroundTruthEvents: len(gt),
			PredictedEvents:   len(pred),
			TripsGroundTruth:  len(tripsGT),
			TripsPredicted:    len(tripsPred),
		},
		Overall:         FromMatches(matches),
		ByEvent:         SlicedMetrics(matches, func(m evrecord.MatchResult) string { return m.EventType }),
		ByStream:        SlicedMetrics(matches, func(m evrecord.MatchResult) string { return string(m.Stream) }),
		ByScenario:      SlicedMetrics(matches, func(m evrecord.MatchResult) string { return string(m.Scenario) }),
		Calibration:     CalibrateConfidence(matches, bins),
		ThresholdSweep:  Sweep(gt, pred, iouThreshold, toleranceMs),
		FailureExamples: FailureExamples{FalsePositives: falsePositives, FalseNegatives: falseNegatives},
		Matches:         matches,
	}
}
