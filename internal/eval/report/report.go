package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/fleetwatch/dms/internal/eval/metrics"
	"github.com/fleetwatch/dms/internal/fsutil"
	"github.com/fleetwatch/dms/internal/timeutil"
)

// CalibrationSummary is the trimmed calibration view carried in
// summary.json (spec §6 summary.json `calibration`).
type CalibrationSummary struct {
	ECE   float64 `json:"ece"`
	Brier float64 `json:"brier"`
}

// Summary is the compact summary.json payload written alongside the
// full evaluation.json (spec §6 summary.json).
type Summary struct {
	Overall             metrics.Counts        `json:"overall"`
	GlobalBestThreshold metrics.BestThreshold  `json:"global_best_threshold"`
	Calibration         CalibrationSummary     `json:"calibration"`
	SelectedTripCount   *int                   `json:"selected_trip_count,omitempty"`
	OutputDir           string                 `json:"output_dir"`
}

// Write renders one evaluation run to `<outDirRoot>/<prefix>_<UTC
// timestamp>/`: evaluation.json, summary.json, and four CSVs. prefix
// is "eval" for a plain evaluate run or "eval_range" for
// evaluate-range (spec §6). selectedTripIDs is nil for a plain
// evaluate run (summary.json omits selected_trip_count) or the
// date-filtered trip id set for evaluate-range.
func Write(fs fsutil.FileSystem, clock timeutil.Clock, outDirRoot, prefix string, rep metrics.Report, selectedTripIDs []string) (string, Summary, error) {
	timestamp := clock.Now().UTC().Format("20060102_150405")
	reportID := fmt.Sprintf("%s_%s", prefix, timestamp)
	outDir := filepath.Join(outDirRoot, reportID)

	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		return "", Summary{}, fmt.Errorf("creating eval report directory %q: %w", outDir, err)
	}

	evalJSON, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", Summary{}, fmt.Errorf("marshaling evaluation.json: %w", err)
	}
	if err := fs.WriteFile(filepath.Join(outDir, "evaluation.json"), evalJSON, 0o644); err != nil {
		return "", Summary{}, fmt.Errorf("writing evaluation.json: %w", err)
	}

	if err := writeSlicedCSV(fs, filepath.Join(outDir, "metrics_by_event.csv"), "event_type", rep.ByEvent); err != nil {
		return "", Summary{}, err
	}
	if err := writeSlicedCSV(fs, filepath.Join(outDir, "metrics_by_stream.csv"), "stream", rep.ByStream); err != nil {
		return "", Summary{}, err
	}
	if err := writeSlicedCSV(fs, filepath.Join(outDir, "metrics_by_scenario.csv"), "scenario", rep.ByScenario); err != nil {
		return "", Summary{}, err
	}
	if err := writeThresholdSweepCSV(fs, filepath.Join(outDir, "threshold_sweep.csv"), rep.ThresholdSweep); err != nil {
		return "", Summary{}, err
	}

	summary := Summary{
		Overall:             rep.Overall,
		GlobalBestThreshold: rep.ThresholdSweep.GlobalBest,
		Calibration:         CalibrationSummary{ECE: rep.Calibration.ECE, Brier: rep.Calibration.Brier},
		OutputDir:           outDir,
	}
	if selectedTripIDs != nil {
		n := len(selectedTripIDs)
		summary.SelectedTripCount = &n
	}

	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", Summary{}, fmt.Errorf("marshaling summary.json: %w", err)
	}
	if err := fs.WriteFile(filepath.Join(outDir, "summary.json"), summaryJSON, 0o644); err != nil {
		return "", Summary{}, fmt.Errorf("writing summary.json: %w", err)
	}

	return outDir, summary, nil
}

// writeSlicedCSV writes one of the metrics_by_*.csv files: a header
// row of `<keyHeader>,tp,fp,fn,precision,recall,f1` followed by one
// row per slice key in ascending order (spec §6). An empty slice still
// writes a header-only file, matching the teacher's "always produce
// the artifact" CSV idiom.
func writeSlicedCSV(fs fsutil.FileSystem, path, keyHeader string, sliced map[string]metrics.Counts) error {
	keys := make([]string, 0, len(sliced))
	for k := range sliced {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w, closer, err := newCSVWriter(fs, path)
	if err != nil {
		return err
	}
	defer closer()

	if err := w.Write([]string{keyHeader, "tp", "fp", "fn", "precision", "recall", "f1"}); err != nil {
		return fmt.Errorf("writing %q header: %w", path, err)
	}
	for _, k := range keys {
		c := sliced[k]
		row := []string{
			k,
			strconv.Itoa(c.TP),
			strconv.Itoa(c.FP),
			strconv.Itoa(c.FN),
			strconv.FormatFloat(c.Precision, 'f', -1, 64),
			strconv.FormatFloat(c.Recall, 'f', -1, 64),
			strconv.FormatFloat(c.F1, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing %q row: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// writeThresholdSweepCSV writes threshold_sweep.csv: a header of
// `threshold,tp,fp,fn,precision,recall,f1,<event_type>_f1...` (the
// event-type columns sorted ascending, taken from the first row) plus
// one row per swept threshold.
func writeThresholdSweepCSV(fs fsutil.FileSystem, path string, sweep metrics.ThresholdSweep) error {
	var eventTypes []string
	if len(sweep.Rows) > 0 {
		eventTypes = make([]string, 0, len(sweep.Rows[0].PerEventF1))
		for t := range sweep.Rows[0].PerEventF1 {
			eventTypes = append(eventTypes, t)
		}
		sort.Strings(eventTypes)
	}

	w, closer, err := newCSVWriter(fs, path)
	if err != nil {
		return err
	}
	defer closer()

	header := []string{"threshold", "tp", "fp", "fn", "precision", "recall", "f1"}
	for _, t := range eventTypes {
		header = append(header, t+"_f1")
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing %q header: %w", path, err)
	}

	for _, row := range sweep.Rows {
		record := []string{
			strconv.FormatFloat(row.Threshold, 'f', -1, 64),
			strconv.Itoa(row.Counts.TP),
			strconv.Itoa(row.Counts.FP),
			strconv.Itoa(row.Counts.FN),
			strconv.FormatFloat(row.Counts.Precision, 'f', -1, 64),
			strconv.FormatFloat(row.Counts.Recall, 'f', -1, 64),
			strconv.FormatFloat(row.Counts.F1, 'f', -1, 64),
		}
		for _, t := range eventTypes {
			record = append(record, strconv.FormatFloat(row.PerEventF1[t], 'f', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing %q row: %w", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

func newCSVWriter(fs fsutil.FileSystem, path string) (*csv.Writer, func(), error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %q: %w", path, err)
	}
	return csv.NewWriter(f), func() { f.Close() }, nil
}
