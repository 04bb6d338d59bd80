// Command evaluate-range runs the Evaluation Engine over every
// completed trip whose report was generated within a date range,
// scoring it against one ground-truth file (spec §6 CLI surface:
// `evaluate-range --gt <path> --from YYYY-MM-DD --to YYYY-MM-DD ...`).
// Predictions are read from the configured report directory, not a
// `--pred` flag: every trip.go engine analyze-trip run deposits its
// report.json there, and that is this command's prediction source
// (see internal/eval/rangeselect, substituting for the original's
// relational `Trip` table query).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fleetwatch/dms/internal/cliutil"
	"github.com/fleetwatch/dms/internal/config"
	"github.com/fleetwatch/dms/internal/eval/evrecord"
	"github.com/fleetwatch/dms/internal/eval/metrics"
	"github.com/fleetwatch/dms/internal/eval/rangeselect"
	"github.com/fleetwatch/dms/internal/eval/report"
	"github.com/fleetwatch/dms/internal/fsutil"
	"github.com/fleetwatch/dms/internal/timeutil"
)

func main() {
	base, err := config.LoadWithOverride("")
	if err != nil {
		cliutil.Fail(err)
	}

	gtPath := flag.String("gt", "", "path to the ground truth JSON")
	from := flag.String("from", "", "include trips generated on or after this date (YYYY-MM-DD)")
	to := flag.String("to", "", "include trips generated on or before this date (YYYY-MM-DD)")
	outDir := flag.String("outdir", "eval_reports", "directory under which the timestamped report directory is written")
	reportDir := flag.String("report-dir", "", "override the configured report_dir to scan for trip reports")
	evalFlags := config.RegisterEvaluationFlags(flag.CommandLine, base)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: evaluate-range --gt <path> --from YYYY-MM-DD --to YYYY-MM-DD [--iou 0.30] [--tolerance-ms 1200] [--bins 10] [--outdir ...]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *gtPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := base.Merge(evalFlags.Resolve())
	if *reportDir != "" {
		cfg.ReportDir = reportDir
	}

	fs := fsutil.OSFileSystem{}

	tripIDs, err := rangeselect.SelectTripIDs(fs, cfg.GetReportDir(), *from, *to)
	if err != nil {
		cliutil.Fail(err)
	}
	tripIDSet := make(map[string]bool, len(tripIDs))
	for _, id := range tripIDs {
		tripIDSet[id] = true
	}

	gtEvents, err := evrecord.LoadGroundTruth(fs, *gtPath)
	if err != nil {
		cliutil.Fail(err)
	}
	predEvents, err := evrecord.LoadPredictions(fs, cfg.GetReportDir())
	if err != nil {
		cliutil.Fail(err)
	}

	gtEvents = evrecord.FilterEventsByTripIDs(gtEvents, tripIDSet)
	predEvents = evrecord.FilterEventsByTripIDs(predEvents, tripIDSet)

	rep := metrics.Evaluate(gtEvents, predEvents, cfg.GetIOUThreshold(), int64(cfg.GetToleranceMs()), cfg.GetBins())

	_, summary, err := report.Write(fs, timeutil.RealClock{}, *outDir, "eval_range", rep, tripIDs)
	if err != nil {
		cliutil.Fail(err)
	}
	if err := cliutil.PrintJSON(summary); err != nil {
		cliutil.Fail(err)
	}
}
