package l4interpret

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerclosWindow_EmptyRatioIsZero(t *testing.T) {
	w := newPerclosWindow(10.0)
	assert.Equal(t, 0.0, w.ratio())
}

func TestPerclosWindow_TracksFractionClosed(t *testing.T) {
	w := newPerclosWindow(10.0)
	for i := 0; i < 10; i++ {
		closed := i%10 < 4
		w.push(int64(i)*100, closed)
	}
	assert.InDelta(t, 0.4, w.ratio(), 1e-9)
}

func TestPerclosWindow_EvictsSamplesOlderThan60s(t *testing.T) {
	w := newPerclosWindow(10.0)
	w.push(0, true)
	w.push(61_000, false)
	assert.Equal(t, 1, len(w.samples))
	assert.Equal(t, 0.0, w.ratio())
}

func TestPerclosWindow_EvictionIsByTimestampNotCount(t *testing.T) {
	w := newPerclosWindow(10.0)
	for i := 0; i < 600; i++ {
		w.push(int64(i)*100, true)
	}
	// All within 60s window (last ts=59900), nothing evicted yet.
	assert.Equal(t, 600, len(w.samples))
	w.push(120_000, false)
	assert.Less(t, len(w.samples), 600)
}
