package l5debounce

import (
	"github.com/fleetwatch/dms/internal/dms/l4interpret"
)

// cell is one event type's state (spec §3 DebounceState).
type cell struct {
	activeMs   float64
	lastEmitMs int64
	ema        float64
	startMs    int64
}

// Debouncer holds eight homogeneous state cells, one per event type, in
// a fixed array indexed by l4interpret.EventType (spec §9 Design Notes:
// avoids dynamic dispatch, cache-friendly contiguous state).
type Debouncer struct {
	cells  [8]cell
	stream Stream
}

// NewDebouncer creates a debouncer for one trip's events on the given
// stream. last_emit_ms starts at a very negative sentinel so the first
// bout's cooldown check always passes.
func NewDebouncer(stream Stream) *Debouncer {
	d := &Debouncer{stream: stream}
	for i := range d.cells {
		d.cells[i].lastEmitMs = -1 << 62
	}
	return d
}

// Update advances one event type's state cell by one frame and returns
// the emitted Event, if the frame's update crosses the emission gate.
//
// clipName and localTsSec are attached to the emitted Event as-is; they
// are caller-supplied because the Debouncer has no notion of which clip
// a given now_ms falls within.
func (d *Debouncer) Update(et l4interpret.EventType, active bool, conf float64, nowMs, deltaMs int64, clipName string, localTsSec float64, metadata map[string]interface{}) (Event, bool) {
	r := rules[et]
	c := &d.cells[et]

	if active {
		if c.activeMs <= 0 {
			c.startMs = nowMs - deltaMs
		}
		c.activeMs += float64(deltaMs)
		if c.ema > 0 {
			c.ema = 0.75*c.ema + 0.25*conf
		} else {
			c.ema = conf
		}
	} else {
		c.activeMs -= float64(deltaMs)
		if c.activeMs < 0 {
			c.activeMs = 0
		}
		c.ema *= 0.85
	}

	if c.activeMs >= r.minDurationMs && nowMs-c.lastEmitMs >= r.cooldownMs && c.ema >= emissionEmaThreshold {
		c.lastEmitMs = nowMs
		severity := c.ema
		if severity < 0 {
			severity = 0
		}
		if severity > 1 {
			severity = 1
		}
		evt := Event{
			Type:       et.String(),
			TsMsStart:  c.startMs,
			TsMsEnd:    nowMs,
			Severity:   severity,
			Stream:     d.stream,
			ClipName:   clipName,
			Metadata:   metadata,
			LocalTsSec: localTsSec,
		}
		// state is not reset on emission (spec §4.4 point 4, preserved
		// per the open question: successive emissions of one bout are
		// prevented solely by cooldown).
		return evt, true
	}
	return Event{}, false
}
