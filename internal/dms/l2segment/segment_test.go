package l2segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetwatch/dms/internal/fsutil"
)

func writeClip(t *testing.T, fs fsutil.FileSystem, path string) {
	t.Helper()
	require.NoError(t, fs.WriteFile(path, []byte("fake-mp4"), 0o644))
}

func TestOrderedSegments_SortsByTimeThenSequence(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	writeClip(t, fs, "trips/T1/front/100000_001_002_a.mp4")
	writeClip(t, fs, "trips/T1/front/100000_001_001_a.mp4")
	writeClip(t, fs, "trips/T1/front/095959_000_000_a.mp4")

	segs, err := OrderedSegments(fs, "trips/T1", StreamFront)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, "trips/T1/front/095959_000_000_a.mp4", segs[0].Path)
	assert.Equal(t, "trips/T1/front/100000_001_001_a.mp4", segs[1].Path)
	assert.Equal(t, "trips/T1/front/100000_001_002_a.mp4", segs[2].Path)
}

func TestOrderedSegments_MissingFolderIsEmptyNotError(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	segs, err := OrderedSegments(fs, "trips/T1", StreamCabin)
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestOrderedSegments_IgnoresNonMp4(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	writeClip(t, fs, "trips/T1/front/100000_001_001_a.mp4")
	writeClip(t, fs, "trips/T1/front/readme.txt")

	segs, err := OrderedSegments(fs, "trips/T1", StreamFront)
	require.NoError(t, err)
	require.Len(t, segs, 1)
}

func TestEstimateSyncOffset(t *testing.T) {
	front := []Segment{{StartSecOfDay: 100}}
	cabin := []Segment{{StartSecOfDay: 130}}
	assert.Equal(t, 30.0, EstimateSyncOffset(front, cabin))
}

func TestEstimateSyncOffset_EmptySideYieldsZero(t *testing.T) {
	assert.Equal(t, 0.0, EstimateSyncOffset(nil, []Segment{{StartSecOfDay: 5}}))
	assert.Equal(t, 0.0, EstimateSyncOffset([]Segment{{StartSecOfDay: 5}}, nil))
}

func TestMerge_FrontPrecedesCabinOnTie(t *testing.T) {
	front := []Segment{{Stream: StreamFront, StartSecOfDay: 100, Path: "f"}}
	cabin := []Segment{{Stream: StreamCabin, StartSecOfDay: 100, Path: "c"}}

	merged := Merge(front, cabin)
	require.Len(t, merged, 2)
	assert.Equal(t, StreamFront, merged[0].Stream)
	assert.Equal(t, StreamCabin, merged[1].Stream)
}

func TestMerge_OrdersByStartSecOfDay(t *testing.T) {
	front := []Segment{{Stream: StreamFront, StartSecOfDay: 200, Path: "f2"}}
	cabin := []Segment{{Stream: StreamCabin, StartSecOfDay: 100, Path: "c1"}}

	merged := Merge(front, cabin)
	require.Len(t, merged, 2)
	assert.Equal(t, "c1", merged[0].Path)
	assert.Equal(t, "f2", merged[1].Path)
}
