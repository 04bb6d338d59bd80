package evrecord

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fleetwatch/dms/internal/errs"
	"github.com/fleetwatch/dms/internal/fsutil"
)

// rawEvent mirrors the canonical event JSON schema (spec §6 Event JSON
// schema): severity (predictions from a trip report) or confidence
// (raw prediction files) are both accepted, severity taking priority.
type rawEvent struct {
	Type       string                 `json:"type"`
	TsMsStart  int64                  `json:"ts_ms_start"`
	TsMsEnd    int64                  `json:"ts_ms_end"`
	Stream     string                 `json:"stream"`
	Severity   *float64               `json:"severity"`
	Confidence *float64               `json:"confidence"`
	Scenario   string                 `json:"scenario"`
	Metadata   map[string]interface{} `json:"metadata"`
}

type rawTrip struct {
	TripID string     `json:"trip_id"`
	Events []rawEvent `json:"events"`
}

type rawTripsPayload struct {
	Trips []rawTrip `json:"trips"`
}

func normStream(value string) Stream {
	v := strings.ToLower(strings.TrimSpace(value))
	switch Stream(v) {
	case StreamFront, StreamRear, StreamCabin:
		return Stream(v)
	default:
		return StreamUnknown
	}
}

func normScenario(value string) Scenario {
	v := strings.ToLower(strings.TrimSpace(value))
	switch Scenario(v) {
	case ScenarioDay, ScenarioDusk, ScenarioNight:
		return Scenario(v)
	default:
		return ScenarioUnknown
	}
}

func metaString(meta map[string]interface{}, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// toEventRecord converts one raw event into an EventRecord. predicted
// selects whether Confidence is read from Severity/Confidence
// (predictions) or pinned to 1.0 (ground truth), matching
// original_source/backend/app/eval/io.py::_to_event.
func toEventRecord(ev rawEvent, tripID string, idx int, predicted bool) EventRecord {
	eventType := ev.Type
	if eventType == "" {
		eventType = "unknown"
	}

	confidence := 1.0
	if ev.Severity != nil {
		confidence = *ev.Severity
	} else if ev.Confidence != nil {
		confidence = *ev.Confidence
	}
	if predicted {
		confidence = clamp01(confidence)
	} else {
		confidence = 1.0
	}

	scenarioSrc := metaString(ev.Metadata, "lighting")
	if scenarioSrc == "" {
		scenarioSrc = metaString(ev.Metadata, "scenario")
	}
	if scenarioSrc == "" {
		scenarioSrc = ev.Scenario
	}

	return EventRecord{
		TripID:     tripID,
		EventType:  eventType,
		TsMsStart:  ev.TsMsStart,
		TsMsEnd:    ev.TsMsEnd,
		Stream:     normStream(ev.Stream),
		Scenario:   normScenario(scenarioSrc),
		Confidence: confidence,
		SourceID:   fmt.Sprintf("%s:%d", tripID, idx),
	}
}

// LoadGroundTruth reads the ground-truth JSON at path (spec §6: `{trips:
// [{trip_id, events: [...]}]}`) and returns its EventRecords, each
// pinned to Confidence == 1.0.
func LoadGroundTruth(fsys fsutil.FileSystem, path string) ([]EventRecord, error) {
	if !fsys.Exists(path) {
		return nil, fmt.Errorf("ground truth path %q: %w", path, errs.ErrInputMissing)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ground truth %q: %w", path, errs.ErrInputMissing)
	}

	var payload rawTripsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing ground truth %q: %w", path, errs.ErrMalformed)
	}

	var events []EventRecord
	for _, trip := range payload.Trips {
		tripID := trip.TripID
		if tripID == "" {
			tripID = "unknown"
		}
		for idx, ev := range trip.Events {
			events = append(events, toEventRecord(ev, tripID, idx+1, false))
		}
	}
	return events, nil
}

// LoadPredictions reads predictions from path, accepting any of the
// three shapes spec §6 describes: a single multi-trip JSON (the same
// `{trips: [...]}` shape as ground truth), a directory searched
// recursively for `report.json` files (each a single-trip payload), or
// a single-trip JSON (`{trip_id, events: [...]}`).
func LoadPredictions(fsys fsutil.FileSystem, path string) ([]EventRecord, error) {
	if !fsys.Exists(path) {
		return nil, fmt.Errorf("predictions path %q: %w", path, errs.ErrInputMissing)
	}
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat predictions %q: %w", path, errs.ErrInputMissing)
	}

	if info.IsDir() {
		return loadPredictionsFromDir(fsys, path)
	}
	return loadPredictionsFromFile(fsys, path)
}

func loadPredictionsFromDir(fsys fsutil.FileSystem, root string) ([]EventRecord, error) {
	reportPaths, err := findReportFiles(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("walking predictions directory %q: %w", root, errs.ErrInputMissing)
	}

	var events []EventRecord
	for _, rp := range reportPaths {
		data, err := fsys.ReadFile(rp)
		if err != nil {
			return nil, fmt.Errorf("reading prediction report %q: %w", rp, errs.ErrInputMissing)
		}
		var payload struct {
			TripID string     `json:"trip_id"`
			Events []rawEvent `json:"events"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parsing prediction report %q: %w", rp, errs.ErrMalformed)
		}
		tripID := payload.TripID
		if tripID == "" {
			tripID = filepath.Base(filepath.Dir(rp))
		}
		for idx, ev := range payload.Events {
			events = append(events, toEventRecord(ev, tripID, idx+1, true))
		}
	}
	return events, nil
}

func loadPredictionsFromFile(fsys fsutil.FileSystem, path string) ([]EventRecord, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading predictions %q: %w", path, errs.ErrInputMissing)
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parsing predictions %q: %w", path, errs.ErrMalformed)
	}

	var events []EventRecord
	if raw, ok := generic["trips"]; ok {
		var trips []rawTrip
		if err := json.Unmarshal(raw, &trips); err != nil {
			return nil, fmt.Errorf("parsing predictions %q: %w", path, errs.ErrMalformed)
		}
		for _, trip := range trips {
			tripID := trip.TripID
			if tripID == "" {
				tripID = "unknown"
			}
			for idx, ev := range trip.Events {
				events = append(events, toEventRecord(ev, tripID, idx+1, true))
			}
		}
		return events, nil
	}

	var payload struct {
		TripID string     `json:"trip_id"`
		Events []rawEvent `json:"events"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing predictions %q: %w", path, errs.ErrMalformed)
	}
	tripID := payload.TripID
	if tripID == "" {
		tripID = "unknown"
	}
	for idx, ev := range payload.Events {
		events = append(events, toEventRecord(ev, tripID, idx+1, true))
	}
	return events, nil
}

// findReportFiles walks root recursively collecting every file named
// "report.json", sorted ascending by path. Per spec §9's open question
// 2, nested evaluation-output directories are not excluded — any
// report.json anywhere under root counts, matching
// original_source/backend/app/eval/io.py's unconditional
// `path.rglob("report.json")`.
func findReportFiles(fsys fsutil.FileSystem, root string) ([]string, error) {
	var out []string
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			full := filepath.Join(dir, e.Name())
			if e.IsDir() {
				if err := walk(full); err != nil {
					return err
				}
				continue
			}
			if e.Name() == "report.json" {
				out = append(out, full)
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// FilterEventsByTripIDs keeps only events whose TripID is in tripIDs.
// An empty tripIDs set yields nil, matching
// original_source/backend/app/eval/io.py::filter_events_by_trip_ids
// (used by evaluate-range to scope a run to a date-bounded trip set).
func FilterEventsByTripIDs(events []EventRecord, tripIDs map[string]bool) []EventRecord {
	if len(tripIDs) == 0 {
		return nil
	}
	var out []EventRecord
	for _, ev := range events {
		if tripIDs[ev.TripID] {
			out = append(out, ev)
		}
	}
	return out
}
