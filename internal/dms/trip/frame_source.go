package trip

import "github.com/fleetwatch/dms/internal/dms/l3signal"

// FrameSource opens a clip file for per-frame signal extraction. It
// stands in for the external video-decode/vision-model boundary (spec
// §1): a concrete binding would open the file, run its face/lane/
// object/seatbelt models per frame, and yield the resulting
// l3signal.Frame. Engine treats decode failures as a per-clip
// recoverable condition (internal/errs.ErrVideoUnreadable), never a
// fatal one.
type FrameSource interface {
	Open(path string) (FrameStream, error)
}

// FrameStream iterates one clip's frames in order.
type FrameStream interface {
	// FPS returns the clip's frame rate.
	FPS() float64
	// FrameCount returns the clip's total frame count, independent of
	// any later sampling decision.
	FrameCount() int64
	// Next returns the next frame, or ok=false once the stream is
	// exhausted.
	Next() (l3signal.Frame, bool)
	// Close releases the stream.
	Close() error
}

// SliceFrameStream is a FrameStream backed by an in-memory slice of
// pre-extracted frames, used by tests and by any caller that has
// already materialized a clip's measurements.
type SliceFrameStream struct {
	fps    float64
	frames []l3signal.Frame
	pos    int
}

// NewSliceFrameStream creates a FrameStream over frames at the given fps.
func NewSliceFrameStream(fps float64, frames []l3signal.Frame) *SliceFrameStream {
	return &SliceFrameStream{fps: fps, frames: frames}
}

func (s *SliceFrameStream) FPS() float64     { return s.fps }
func (s *SliceFrameStream) FrameCount() int64 { return int64(len(s.frames)) }
func (s *SliceFrameStream) Close() error      { return nil }

func (s *SliceFrameStream) Next() (l3signal.Frame, bool) {
	if s.pos >= len(s.frames) {
		return l3signal.Frame{}, false
	}
	f := s.frames[s.pos]
	s.pos++
	return f, true
}
