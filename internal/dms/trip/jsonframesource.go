package trip

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fleetwatch/dms/internal/dms/l3signal"
	"github.com/fleetwatch/dms/internal/errs"
	"github.com/fleetwatch/dms/internal/fsutil"
)

// JSONFrameSource is one compliant realization of the FrameSource/
// FrameStream contract (spec §1: "the concrete vision detectors...
// are specified only by the signal contract"). Beside every clip
// `<name>.mp4` it expects a sidecar `<name>.frames.json` recording the
// fps and the pre-extracted per-frame measurements a real decode +
// model-inference pipeline would have produced; it replays them
// in order. This mirrors the `trip.json` sidecar idiom meta.go already
// uses for driver/vehicle identity (spec §7 ErrVideoUnreadable: a
// missing or malformed sidecar is a per-clip recoverable condition,
// not a fatal one).
type JSONFrameSource struct {
	FS fsutil.FileSystem
}

// NewJSONFrameSource creates a JSONFrameSource backed by fs.
func NewJSONFrameSource(fs fsutil.FileSystem) *JSONFrameSource {
	return &JSONFrameSource{FS: fs}
}

type jsonObjectBox struct {
	ClassID    int     `json:"class_id"`
	Confidence float64 `json:"confidence"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
}

type jsonFace struct {
	Detected bool    `json:"detected"`
	EAR      float64 `json:"ear"`
	MAR      float64 `json:"mar"`
	YawRatio float64 `json:"yaw_ratio"`
}

type jsonLane struct {
	LinesFound  bool    `json:"lines_found"`
	OffsetRatio float64 `json:"offset_ratio"`
}

type jsonSeatbelt struct {
	LinesFound    bool `json:"lines_found"`
	DiagonalCount int  `json:"diagonal_count"`
}

type jsonFrame struct {
	Face     jsonFace        `json:"face"`
	Lane     jsonLane        `json:"lane"`
	Seatbelt jsonSeatbelt    `json:"seatbelt"`
	Objects  []jsonObjectBox `json:"objects"`
}

type jsonClipSidecar struct {
	FPS         float64     `json:"fps"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Frames      []jsonFrame `json:"frames"`
}

func sidecarPath(clipPath string) string {
	ext := filepath.Ext(clipPath)
	return strings.TrimSuffix(clipPath, ext) + ".frames.json"
}

// Open loads and parses path's `.frames.json` sidecar. A missing or
// malformed sidecar yields errs.ErrVideoUnreadable so Engine.Analyze
// skips just this clip (spec §7).
func (s *JSONFrameSource) Open(path string) (FrameStream, error) {
	sc := sidecarPath(path)
	if !s.FS.Exists(sc) {
		return nil, fmt.Errorf("%w: no sidecar %s", errs.ErrVideoUnreadable, sc)
	}
	data, err := s.FS.ReadFile(sc)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sidecar %s: %v", errs.ErrVideoUnreadable, sc, err)
	}
	var payload jsonClipSidecar
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: parsing sidecar %s: %v", errs.ErrVideoUnreadable, sc, err)
	}
	if payload.FPS <= 0 {
		return nil, fmt.Errorf("%w: sidecar %s has non-positive fps", errs.ErrVideoUnreadable, sc)
	}

	frames := make([]l3signal.Frame, 0, len(payload.Frames))
	for _, jf := range payload.Frames {
		objs := make([]l3signal.ObjectBox, 0, len(jf.Objects))
		for _, o := range jf.Objects {
			objs = append(objs, l3signal.ObjectBox{
				ClassID:    o.ClassID,
				Confidence: o.Confidence,
				X1:         o.X1,
				Y1:         o.Y1,
				X2:         o.X2,
				Y2:         o.Y2,
			})
		}
		frames = append(frames, l3signal.Frame{
			Width:  payload.Width,
			Height: payload.Height,
			Face: l3signal.FaceMeasurement{
				Detected: jf.Face.Detected,
				EAR:      jf.Face.EAR,
				MAR:      jf.Face.MAR,
				YawRatio: jf.Face.YawRatio,
			},
			Lane: l3signal.LaneMeasurement{
				LinesFound:  jf.Lane.LinesFound,
				OffsetRatio: jf.Lane.OffsetRatio,
			},
			Seatbelt: l3signal.SeatbeltMeasurement{
				LinesFound:    jf.Seatbelt.LinesFound,
				DiagonalCount: jf.Seatbelt.DiagonalCount,
			},
			Objects: objs,
		})
	}

	return NewSliceFrameStream(payload.FPS, frames), nil
}
