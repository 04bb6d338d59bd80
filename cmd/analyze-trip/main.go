// Command analyze-trip runs the Trip Analysis Engine end to end for a
// single trip id and writes its report.json under the configured
// report directory (spec §6 CLI surface: `analyze-trip <trip_id>`).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fleetwatch/dms/internal/cliutil"
	"github.com/fleetwatch/dms/internal/config"
	"github.com/fleetwatch/dms/internal/dms/trip"
	"github.com/fleetwatch/dms/internal/fsutil"
	"github.com/fleetwatch/dms/internal/timeutil"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file overriding config/dms.defaults.json")
	uploadDir := flag.String("upload-dir", "", "override the configured upload_dir")
	reportDir := flag.String("report-dir", "", "override the configured report_dir")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: analyze-trip [flags] <trip_id>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	tripID := flag.Arg(0)

	cfg, err := config.LoadWithOverride(*configPath)
	if err != nil {
		cliutil.Fail(err)
	}
	if *uploadDir != "" {
		cfg.UploadDir = uploadDir
	}
	if *reportDir != "" {
		cfg.ReportDir = reportDir
	}

	fs := fsutil.OSFileSystem{}
	engine := trip.NewEngine(cfg, fs, trip.NewJSONFrameSource(fs), timeutil.RealClock{})

	report, err := engine.Analyze(tripID)
	if err != nil {
		cliutil.Fail(err)
	}
	if err := cliutil.PrintJSON(report); err != nil {
		cliutil.Fail(err)
	}
}
