// Command evaluate runs the Evaluation Engine over one ground-truth
// file and one predictions source, writing a timestamped report
// directory (spec §6 CLI surface: `evaluate --gt <path> --pred <path>
// [--iou 0.30] [--tolerance-ms 1200] [--bins 10] [--outdir ...]`).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fleetwatch/dms/internal/cliutil"
	"github.com/fleetwatch/dms/internal/config"
	"github.com/fleetwatch/dms/internal/eval/evrecord"
	"github.com/fleetwatch/dms/internal/eval/metrics"
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
	predPath := flag.String("pred", "", "path to predictions JSON, a directory of report.json files, or a single-trip JSON")
	outDir := flag.String("outdir", "eval_reports", "directory under which the timestamped report directory is written")
	evalFlags := config.RegisterEvaluationFlags(flag.CommandLine, base)
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: evaluate --gt <path> --pred <path> [--iou 0.30] [--tolerance-ms 1200] [--bins 10] [--outdir ...]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *gtPath == "" || *predPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := base.Merge(evalFlags.Resolve())
	fs := fsutil.OSFileSystem{}

	gtEvents, err := evrecord.LoadGroundTruth(fs, *gtPath)
	if err != nil {
		cliutil.Fail(err)
	}
	predEvents, err := evrecord.LoadPredictions(fs, *predPath)
	if err != nil {
		cliutil.Fail(err)
	}

	rep := metrics.Evaluate(gtEvents, predEvents, cfg.GetIOUThreshold(), int64(cfg.GetToleranceMs()), cfg.GetBins())

	_, summary, err := report.Write(fs, timeutil.RealClock{}, *outDir, "eval", rep, nil)
	if err != nil {
		cliutil.Fail(err)
	}
	if err := cliutil.PrintJSON(summary); err != nil {
		cliutil.Fail(err)
	}
}
