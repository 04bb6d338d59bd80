package trip

import (
	"github.com/fleetwatch/dms/internal/dms/l5debounce"
	"github.com/fleetwatch/dms/internal/dms/l6score"
)

// Status is the terminal state of one Analyze call, carried in the
// written report (spec §6).
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Info is the trip-identity portion of the report (spec §6 `trip`
// object). DriverID/VehicleID/DayFolder have no relational store to
// come from (spec Non-goals exclude one); Engine.Analyze reads them
// from an optional sidecar file under the trip root (see meta.go) and
// leaves them as empty strings when absent.
type Info struct {
	DriverID          string  `json:"driver_id"`
	VehicleID         string  `json:"vehicle_id"`
	DurationSeconds   float64 `json:"duration_seconds"`
	SyncOffsetSeconds float64 `json:"sync_offset_seconds"`
	DayFolder         string  `json:"day_folder"`
}

// ReportEvent is one emitted event as it appears in the trip report
// JSON (spec §6 `events[]`).
type ReportEvent struct {
	Type      string                 `json:"type"`
	TsMsStart int64                  `json:"ts_ms_start"`
	TsMsEnd   int64                  `json:"ts_ms_end"`
	Severity  float64                `json:"severity"`
	ClipName  string                 `json:"clip_name"`
	Stream    l5debounce.Stream      `json:"stream"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// Report is the full trip report JSON written to
// `<report_dir>/<trip_id>/report.json` (spec §6).
type Report struct {
	TripID      string               `json:"trip_id"`
	GeneratedAt string               `json:"generated_at"`
	Status      Status               `json:"status"`
	Error       string               `json:"error,omitempty"`
	Trip        Info                 `json:"trip"`
	Scores      l6score.CategoryScores `json:"scores"`
	Events      []ReportEvent        `json:"events"`
	Limitations []string             `json:"limitations"`
}

func toReportEvents(events []l5debounce.Event) []ReportEvent {
	out := make([]ReportEvent, 0, len(events))
	for _, e := range events {
		out = append(out, ReportEvent{
			Type:      e.Type,
			TsMsStart: e.TsMsStart,
			TsMsEnd:   e.TsMsEnd,
			Severity:  e.Severity,
			ClipName:  e.ClipName,
			Stream:    e.Stream,
			Metadata:  e.Metadata,
		})
	}
	return out
}
