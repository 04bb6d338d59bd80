// Package rangeselect resolves the trip id set an `evaluate-range` run
// should score. The Python original queried a relational `Trip` table
// for `status == "done" AND created_at BETWEEN date_from AND date_to`
// (original_source/backend/app/services/evaluation_service.py::
// run_eval_for_date_range); the relational store is an out-of-scope
// external collaborator here (spec §1 Non-goals), so this package
// substitutes a scan of the trip report directory tree the Trip
// Analysis Engine itself writes (spec §6 trip report JSON), reading
// each trip's `generated_at` and `status` straight off its report.json.
package rangeselect

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fleetwatch/dms/internal/fsutil"
)

// tripReportHeader is the minimal slice of a trip report.json needed
// to decide whether a trip falls within a date range (spec §6 trip
// report JSON: `trip_id`, `generated_at`, `status`).
type tripReportHeader struct {
	TripID      string `json:"trip_id"`
	GeneratedAt string `json:"generated_at"`
	Status      string `json:"status"`
}

// SelectTripIDs lists the completed trips under reportDir whose
// generated_at timestamp falls within [from, to] (each "YYYY-MM-DD",
// inclusive of the full day; an empty bound is unbounded on that
// side), sorted ascending. Only trips with status=="completed" count,
// matching the original's `Trip.status == "done"` filter (spec §7: a
// trip report with status=="failed" never has usable events).
func SelectTripIDs(fs fsutil.FileSystem, reportDir, from, to string) ([]string, error) {
	var startBound, endBound time.Time
	hasStart, hasEnd := from != "", to != ""

	if hasStart {
		d, err := time.Parse("2006-01-02", from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
		startBound = d
	}
	if hasEnd {
		d, err := time.Parse("2006-01-02", to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
		endBound = d.Add(24*time.Hour - time.Nanosecond)
	}

	entries, err := fs.ReadDir(reportDir)
	if err != nil {
		return nil, fmt.Errorf("listing report directory %q: %w", reportDir, err)
	}

	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		reportPath := filepath.Join(reportDir, e.Name(), "report.json")
		if !fs.Exists(reportPath) {
			continue
		}
		data, err := fs.ReadFile(reportPath)
		if err != nil {
			continue
		}
		var hdr tripReportHeader
		if err := json.Unmarshal(data, &hdr); err != nil {
			continue
		}
		if hdr.Status != "completed" {
			continue
		}
		generatedAt, err := time.Parse(time.RFC3339, hdr.GeneratedAt)
		if err != nil {
			continue
		}
		if hasStart && generatedAt.Before(startBound) {
			continue
		}
		if hasEnd && generatedAt.After(endBound) {
			continue
		}
		tripID := hdr.TripID
		if tripID == "" {
			tripID = e.Name()
		}
		ids = append(ids, tripID)
	}

	sort.Strings(ids)
	return ids, nil
}
