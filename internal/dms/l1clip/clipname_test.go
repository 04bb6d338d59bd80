package l1clip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_WellFormedFront(t *testing.T) {
	c := Parse("143052_001_002_abcXYZ.mp4")
	assert.Equal(t, "143052", c.Timestamp)
	assert.Equal(t, "001_002_abcXYZ", c.Sequence)
	assert.Equal(t, StreamFront, c.StreamHint)
	assert.Equal(t, 14*3600+30*60+52, c.SecondsOfDay())
}

func TestParse_WellFormedRear(t *testing.T) {
	c := Parse("000000_010_020_tagA_rear.mp4")
	assert.Equal(t, StreamRear, c.StreamHint)
	assert.Equal(t, 0, c.SecondsOfDay())
}

func TestParse_CaseInsensitive(t *testing.T) {
	c := Parse("143052_001_002_abcXYZ_REAR.MP4")
	assert.Equal(t, StreamRear, c.StreamHint)
}

func TestParse_Unmatched(t *testing.T) {
	cases := []string{
		"not-a-clip.mp4",
		"12345_001_002_x.mp4",    // 5-digit timestamp
		"143052_001_002_x.mov",   // wrong extension
		"143052_1_2_x.mp4",       // sequence not 3 digits
	}
	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			c := Parse(name)
			assert.Equal(t, 0, c.SecondsOfDay())
			assert.Equal(t, "unknown", c.Sequence)
			assert.Equal(t, StreamFront, c.StreamHint)
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	cases := []struct {
		ts      string
		seq     string
		hint    StreamHint
		wantSec int
	}{
		{"000000", "000_000_a", StreamFront, 0},
		{"235959", "999_999_ZZ9", StreamRear, 23*3600 + 59*60 + 59},
	}
	for _, tc := range cases {
		rendered := Render(tc.ts, tc.seq, tc.hint)
		parsed := Parse(rendered)
		assert.Equal(t, tc.hint, parsed.StreamHint)

		assert.Equal(t, tc.wantSec, parsed.SecondsOfDay())
	}
}

func TestSortKey_OrdersBySecondsThenSequence(t *testing.T) {
	a := Parse("100000_001_001_a.mp4")
	b := Parse("100000_001_002_a.mp4")
	c := Parse("100001_000_000_a.mp4")

	aSec, aSeq := a.SortKey()
	bSec, bSeq := b.SortKey()
	cSec, _ := c.SortKey()

	assert.Equal(t, aSec, bSec)
	assert.Less(t, aSeq, bSeq)
	assert.Less(t, aSec, cSec)
}
