package l2segment

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/fleetwatch/dms/internal/dms/l1clip"
	"github.com/fleetwatch/dms/internal/fsutil"
)

// Stream identifies which camera folder a Segment was assembled from.
type Stream string

const (
	StreamFront Stream = "front"
	StreamCabin Stream = "cabin"
)

// Segment is one ordered clip within a stream. Immutable once created.
type Segment struct {
	Path          string
	Stream        Stream
	StartSecOfDay int
}

// OrderedSegments lists the *.mp4 files directly under
// <tripRoot>/<stream's folder name>, sorted by (seconds_of_day,
// sequence). A missing or empty folder yields an empty, non-error
// result — per spec §4.1, a stream without segments is simply skipped.
func OrderedSegments(fs fsutil.FileSystem, tripRoot string, stream Stream) ([]Segment, error) {
	folder := filepath.Join(tripRoot, string(stream))
	entries, err := fs.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	type named struct {
		name   string
		parsed l1clip.ClipName
	}
	var files []named
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), ".mp4") {
			continue
		}
		files = append(files, named{name: e.Name(), parsed: l1clip.Parse(e.Name())})
	}

	sort.Slice(files, func(i, j int) bool {
		si, seqI := files[i].parsed.SortKey()
		sj, seqJ := files[j].parsed.SortKey()
		if si != sj {
			return si < sj
		}
		return seqI < seqJ
	})

	segments := make([]Segment, 0, len(files))
	for _, f := range files {
		segments = append(segments, Segment{
			Path:          filepath.Join(folder, f.name),
			Stream:        stream,
			StartSecOfDay: f.parsed.SecondsOfDay(),
		})
	}
	return segments, nil
}

// EstimateSyncOffset returns cabin[0].StartSecOfDay - front[0].StartSecOfDay,
// or 0 if either stream has no segments (spec §4.1).
func EstimateSyncOffset(front, cabin []Segment) float64 {
	if len(front) == 0 || len(cabin) == 0 {
		return 0
	}
	return float64(cabin[0].StartSecOfDay - front[0].StartSecOfDay)
}

// Merge interleaves front and cabin segments in ascending
// StartSecOfDay order; ties are broken with the front segment first
// (spec §5 ordering guarantee).
func Merge(front, cabin []Segment) []Segment {
	all := make([]Segment, 0, len(front)+len(cabin))
	all = append(all, front...)
	all = append(all, cabin...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].StartSecOfDay != all[j].StartSecOfDay {
			return all[i].StartSecOfDay < all[j].StartSecOfDay
		}
		return all[i].Stream == StreamFront && all[j].Stream != StreamFront
	})
	return all
}
