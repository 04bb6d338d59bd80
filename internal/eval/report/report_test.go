package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetwatch/dms/internal/eval/evrecord"
	"github.com/fleetwatch/dms/internal/eval/metrics"
	"github.com/fleetwatch/dms/internal/fsutil"
	"github.com/fleetwatch/dms/internal/timeutil"
)

func sampleReport() metrics.Report {
	gt := []evrecord.EventRecord{
		{TripID: "t1", EventType: "drowsy", SourceID: "t1:1", TsMsStart: 0, TsMsEnd: 1000, Stream: evrecord.StreamCabin, Scenario: evrecord.ScenarioDay},
	}
	pred := []evrecord.EventRecord{
		{TripID: "t1", EventType: "drowsy", SourceID: "t1:1", TsMsStart: 0, TsMsEnd: 1000, Stream: evrecord.StreamCabin, Scenario: evrecord.ScenarioDay, Confidence: 0.9},
	}
	return metrics.Evaluate(gt, pred, 0.3, 1200, 10)
}

func TestWrite_CreatesDirectoryNamedWithUTCTimestamp(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	clock := timeutil.NewMockClock(time.Date(2026, 3, 5, 12, 30, 45, 0, time.UTC))

	outDir, summary, err := Write(fs, clock, "reports", "eval", sampleReport(), nil)
	require.NoError(t, err)
	assert.Equal(t, "reports/eval_20260305_123045", outDir)
	assert.Equal(t, outDir, summary.OutputDir)
	assert.Nil(t, summary.SelectedTripCount)
}

func TestWrite_WritesEvaluationAndSummaryJSON(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	clock := timeutil.NewMockClock(time.Date(2026, 3, 5, 12, 30, 45, 0, time.UTC))

	outDir, _, err := Write(fs, clock, "reports", "eval", sampleReport(), nil)
	require.NoError(t, err)

	assert.True(t, fs.Exists(outDir+"/evaluation.json"))
	assert.True(t, fs.Exists(outDir+"/summary.json"))
	assert.True(t, fs.Exists(outDir+"/metrics_by_event.csv"))
	assert.True(t, fs.Exists(outDir+"/metrics_by_stream.csv"))
	assert.True(t, fs.Exists(outDir+"/metrics_by_scenario.csv"))
	assert.True(t, fs.Exists(outDir+"/threshold_sweep.csv"))
}

func TestWrite_SelectedTripIDsPopulatesCount(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	clock := timeutil.NewMockClock(time.Date(2026, 3, 5, 12, 30, 45, 0, time.UTC))

	_, summary, err := Write(fs, clock, "reports", "eval_range", sampleReport(), []string{"t1", "t2"})
	require.NoError(t, err)
	require.NotNil(t, summary.SelectedTripCount)
	assert.Equal(t, 2, *summary.SelectedTripCount)
}

func TestWrite_ThresholdSweepCSVHasPerEventColumns(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	clock := timeutil.NewMockClock(time.Date(2026, 3, 5, 12, 30, 45, 0, time.UTC))

	outDir, _, err := Write(fs, clock, "reports", "eval", sampleReport(), nil)
	require.NoError(t, err)

	data, err := fs.ReadFile(outDir + "/threshold_sweep.csv")
	require.NoError(t, err)
	header := strings.Split(strings.SplitN(string(data), "\n", 2)[0], ",")
	assert.Contains(t, header, "drowsy_f1")
	assert.Contains(t, header, "threshold")
}
