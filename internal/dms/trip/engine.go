package trip

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/fleetwatch/dms/internal/config"
	"github.com/fleetwatch/dms/internal/dms/l2segment"
	"github.com/fleetwatch/dms/internal/dms/l3signal"
	"github.com/fleetwatch/dms/internal/dms/l4interpret"
	"github.com/fleetwatch/dms/internal/dms/l5debounce"
	"github.com/fleetwatch/dms/internal/dms/l6score"
	"github.com/fleetwatch/dms/internal/errs"
	"github.com/fleetwatch/dms/internal/fsutil"
	"github.com/fleetwatch/dms/internal/monitoring"
	"github.com/fleetwatch/dms/internal/security"
	"github.com/fleetwatch/dms/internal/timeutil"
)

// yoloEvery mirrors the reference implementation's detector cadence: a
// sampled frame only runs the object detector every yoloEvery-th time,
// reusing an empty detection set in between (spec §4.3 sampling note).
const yoloEvery = 2

// Engine analyzes one trip end to end: segment assembly, per-frame
// signal extraction, debouncing, scoring, and report persistence
// (spec §5).
type Engine struct {
	FS          fsutil.FileSystem
	Clock       timeutil.Clock
	FrameSource FrameSource
	Providers   ProviderFactory
	TargetFPS   float64
	UploadDir   string
	ReportDir   string
}

// NewEngine builds an Engine from cfg, defaulting to the heuristic
// reference providers in l3signal.
func NewEngine(cfg *config.Config, fs fsutil.FileSystem, frameSource FrameSource, clock timeutil.Clock) *Engine {
	return &Engine{
		FS:          fs,
		Clock:       clock,
		FrameSource: frameSource,
		Providers:   DefaultProviderFactory(),
		TargetFPS:   cfg.GetTargetFPS(),
		UploadDir:   cfg.GetUploadDir(),
		ReportDir:   cfg.GetReportDir(),
	}
}

// Analyze runs the full pipeline for tripID and writes its report.json
// under ReportDir, returning the same Report it wrote. A recoverable
// condition (ErrVideoUnreadable for one clip, ErrSignalProviderUnavailable
// for one provider) is recorded in Limitations and does not fail the
// trip; a fatal condition (ErrNoSegments, a malformed trip_id, a
// persistence failure) yields a report with Status==StatusFailed and a
// non-nil error (spec §7).
func (e *Engine) Analyze(tripID string) (Report, error) {
	report := Report{
		TripID:      tripID,
		GeneratedAt: e.Clock.Now().UTC().Format(time.RFC3339),
		Status:      StatusCompleted,
		Limitations: []string{},
	}

	tripRoot, err := security.ResolveTripPath(tripID, e.UploadDir)
	if err != nil {
		return e.fail(report, err)
	}

	meta := loadSidecarMeta(e.FS, tripRoot)
	report.Trip.DriverID = meta.DriverID
	report.Trip.VehicleID = meta.VehicleID
	report.Trip.DayFolder = meta.DayFolder

	front, err := l2segment.OrderedSegments(e.FS, tripRoot, l2segment.StreamFront)
	if err != nil {
		return e.fail(report, fmt.Errorf("listing front segments: %w", err))
	}
	cabin, err := l2segment.OrderedSegments(e.FS, tripRoot, l2segment.StreamCabin)
	if err != nil {
		return e.fail(report, fmt.Errorf("listing cabin segments: %w", err))
	}
	if len(front) == 0 && len(cabin) == 0 {
		return e.fail(report, errs.ErrNoSegments)
	}

	syncOffset := l2segment.EstimateSyncOffset(front, cabin)
	report.Trip.SyncOffsetSeconds = syncOffset

	providers, limitations := e.buildProviders()
	report.Limitations = append(report.Limitations, limitations...)

	interpreter := l4interpret.NewInterpreter(e.TargetFPS)
	debouncer := l5debounce.NewDebouncer(l5debounce.StreamUnknown)
	cabinFallback := len(cabin) == 0

	allSegments := l2segment.Merge(front, cabin)
	var events []l5debounce.Event
	var totalDuration float64

	for _, seg := range allSegments {
		stream, openErr := e.FrameSource.Open(seg.Path)
		if openErr != nil {
			monitoring.Logf("trip %s: skipping unreadable clip %s: %v", tripID, seg.Path, openErr)
			report.Limitations = append(report.Limitations, fmt.Sprintf(
				"clip unreadable, skipped: %s (%v)", filepath.Base(seg.Path), fmt.Errorf("%w: %v", errs.ErrVideoUnreadable, openErr)))
			continue
		}

		totalDuration += e.processSegment(seg, stream, syncOffset, cabinFallback, interpreter, debouncer, providers, &events)
		stream.Close()
	}

	report.Trip.DurationSeconds = round2(totalDuration)
	report.Scores = l6score.Score(events, totalDuration)
	report.Events = toReportEvents(events)

	if err := e.writeReport(report); err != nil {
		return e.fail(report, err)
	}
	return report, nil
}

// processSegment samples frames at TargetFPS, feeds them through the
// signal/interpret/debounce chain, and returns the segment's full
// duration in seconds (spec §4.3: duration uses the segment's total
// frame count, independent of the sampling rate).
func (e *Engine) processSegment(
	seg l2segment.Segment,
	stream FrameStream,
	syncOffset float64,
	cabinFallback bool,
	interpreter *l4interpret.Interpreter,
	debouncer *l5debounce.Debouncer,
	providers ProviderSet,
	events *[]l5debounce.Event,
) float64 {
	fps := stream.FPS()
	if fps < 1.0 {
		fps = 25.0
	}
	duration := float64(stream.FrameCount()) / fps

	sampleStep := int(fps / e.TargetFPS)
	if sampleStep < 1 {
		sampleStep = 1
	}
	deltaMs := int64(1000.0 / e.TargetFPS)

	runCabinBranch := seg.Stream == l2segment.StreamCabin || (seg.Stream == l2segment.StreamFront && cabinFallback)
	runFrontBranch := seg.Stream == l2segment.StreamFront

	eventStream := l5debounce.StreamFront
	if seg.Stream == l2segment.StreamCabin {
		eventStream = l5debounce.StreamCabin
	}

	clipName := filepath.Base(seg.Path)

	var frameIdx int64
	for {
		frame, ok := stream.Next()
		if !ok {
			break
		}
		if frameIdx%int64(sampleStep) != 0 {
			frameIdx++
			continue
		}

		localMs := int64(float64(frameIdx) / fps * 1000.0)
		globalSec := float64(seg.StartSecOfDay) + float64(localMs)/1000.0
		if seg.Stream == l2segment.StreamCabin {
			globalSec -= syncOffset
		}
		nowMs := int64(globalSec * 1000.0)
		localTsSec := float64(localMs) / 1000.0

		var dets []l3signal.ObjectBox
		if frameIdx%int64(sampleStep*yoloEvery) == 0 {
			dets = providers.Object.Process(frame, nowMs)
		}
		var scene l3signal.SceneSignal
		if len(dets) > 0 {
			scene = l3signal.DeriveScene(dets, frame.Width, frame.Height)
		}

		var acts []l4interpret.Activation
		if runCabinBranch {
			face := providers.DriverFace.Process(frame, nowMs)
			seatbelt := providers.Seatbelt.Process(frame, nowMs)
			acts = append(acts, interpreter.ProcessCabin(face, seatbelt, scene, nowMs, deltaMs)...)
		}
		if runFrontBranch {
			lane := providers.Lane.Process(frame, nowMs)
			acts = append(acts, interpreter.ProcessFront(lane, scene)...)
		}

		for _, a := range acts {
			if evt, ok := debouncer.Update(a.Type, a.Active, a.Confidence, nowMs, deltaMs, clipName, localTsSec, a.Metadata); ok {
				evt.Stream = eventStream
				*events = append(*events, evt)
			}
		}

		frameIdx++
	}

	return duration
}

func (e *Engine) buildProviders() (ProviderSet, []string) {
	var ps ProviderSet
	var limitations []string

	if face, err := e.Providers.NewDriverFace(e.TargetFPS); err != nil {
		limitations = append(limitations, fmt.Sprintf("driver face signal disabled: %v", fmt.Errorf("%w: %v", errs.ErrSignalProviderUnavailable, err)))
		ps.DriverFace = noopDriverFace{}
	} else {
		ps.DriverFace = face
	}

	if lane, err := e.Providers.NewLane(e.TargetFPS); err != nil {
		limitations = append(limitations, fmt.Sprintf("lane deviation signal disabled: %v", fmt.Errorf("%w: %v", errs.ErrSignalProviderUnavailable, err)))
		ps.Lane = noopLane{}
	} else {
		ps.Lane = lane
	}

	if seatbelt, err := e.Providers.NewSeatbelt(); err != nil {
		limitations = append(limitations, fmt.Sprintf("seatbelt signal disabled: %v", fmt.Errorf("%w: %v", errs.ErrSignalProviderUnavailable, err)))
		ps.Seatbelt = noopSeatbelt{}
	} else {
		ps.Seatbelt = seatbelt
	}

	if obj, err := e.Providers.NewObject(); err != nil {
		limitations = append(limitations, fmt.Sprintf("object/scene signal disabled: %v", fmt.Errorf("%w: %v", errs.ErrSignalProviderUnavailable, err)))
		ps.Object = noopObject{}
	} else {
		ps.Object = obj
	}

	return ps, limitations
}

func (e *Engine) fail(report Report, cause error) (Report, error) {
	report.Status = StatusFailed
	report.Error = cause.Error()
	if err := e.writeReport(report); err != nil {
		monitoring.Logf("trip %s: failed to persist failure report: %v", report.TripID, err)
	}
	return report, cause
}

func (e *Engine) writeReport(report Report) error {
	reportRoot, err := security.ResolveTripPath(report.TripID, e.ReportDir)
	if err != nil {
		return fmt.Errorf("%w: resolving report path: %v", errs.ErrPersistence, err)
	}
	if err := e.FS.MkdirAll(reportRoot, 0o755); err != nil {
		return fmt.Errorf("%w: creating report directory: %v", errs.ErrPersistence, err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling report.json: %v", errs.ErrPersistence, err)
	}
	if err := e.FS.WriteFile(filepath.Join(reportRoot, "report.json"), data, 0o644); err != nil {
		return fmt.Errorf("%w: writing report.json: %v", errs.ErrPersistence, err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
