package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetwatch/dms/internal/timeutil"
)

func waitForTerminal(t *testing.T, r *Registry, id string) Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := r.Get(id)
		require.True(t, ok)
		if job.Status == StatusCompleted || job.Status == StatusFailed || job.Status == StatusCancelled {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach a terminal status in time", id)
	return Job{}
}

func TestRegistry_RunToCompletion(t *testing.T) {
	r := NewRegistry(timeutil.RealClock{})
	job := r.Run(context.Background(), Spec{Command: "true"})
	assert.Equal(t, StatusQueued, job.Status)

	final := waitForTerminal(t, r, job.ID)
	assert.Equal(t, StatusCompleted, final.Status)
	assert.Empty(t, final.Error)
}

func TestRegistry_RunFailure(t *testing.T) {
	r := NewRegistry(timeutil.RealClock{})
	job := r.Run(context.Background(), Spec{Command: "false"})

	final := waitForTerminal(t, r, job.ID)
	assert.Equal(t, StatusFailed, final.Status)
	assert.NotEmpty(t, final.Error)
}

func TestRegistry_CancelRunningJob(t *testing.T) {
	r := NewRegistry(timeutil.RealClock{})
	job := r.Run(context.Background(), Spec{Command: "sleep", Args: []string{"30"}})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if j, _ := r.Get(job.ID); j.Status == StatusRunning {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancelled, ok := r.Cancel(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	final := waitForTerminal(t, r, job.ID)
	assert.Equal(t, StatusCancelled, final.Status)
}

func TestRegistry_CancelAlreadyTerminalIsNoop(t *testing.T) {
	r := NewRegistry(timeutil.RealClock{})
	job := r.Run(context.Background(), Spec{Command: "true"})
	waitForTerminal(t, r, job.ID)

	cancelled, ok := r.Cancel(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, cancelled.Status)
}

func TestRegistry_CancelUnknownJob(t *testing.T) {
	r := NewRegistry(timeutil.RealClock{})
	_, ok := r.Cancel("does-not-exist")
	assert.False(t, ok)
}

func TestRegistry_RetryAllocatesNewJobLeavingOriginalUntouched(t *testing.T) {
	r := NewRegistry(timeutil.RealClock{})
	job := r.Run(context.Background(), Spec{Command: "false"})
	original := waitForTerminal(t, r, job.ID)
	require.Equal(t, StatusFailed, original.Status)

	retried, err := r.Retry(context.Background(), job.ID)
	require.NoError(t, err)
	assert.NotEqual(t, job.ID, retried.ID)

	waitForTerminal(t, r, retried.ID)

	stillOriginal, ok := r.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, stillOriginal.Status)
	assert.Equal(t, original.FinishedAt, stillOriginal.FinishedAt)
}

func TestRegistry_RetryNonTerminalJobErrors(t *testing.T) {
	r := NewRegistry(timeutil.RealClock{})
	job := r.Run(context.Background(), Spec{Command: "sleep", Args: []string{"30"}})
	defer r.Cancel(job.ID)

	_, err := r.Retry(context.Background(), job.ID)
	require.Error(t, err)
}

func TestRegistry_RetryUnknownJobErrors(t *testing.T) {
	r := NewRegistry(timeutil.RealClock{})
	_, err := r.Retry(context.Background(), "does-not-exist")
	require.Error(t, err)
}

func TestRegistry_ListOrdersMostRecentFirst(t *testing.T) {
	r := NewRegistry(timeutil.RealClock{})
	first := r.Run(context.Background(), Spec{Command: "true"})
	time.Sleep(5 * time.Millisecond)
	second := r.Run(context.Background(), Spec{Command: "true"})

	waitForTerminal(t, r, first.ID)
	waitForTerminal(t, r, second.ID)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestRegistry_GetUnknownJob(t *testing.T) {
	r := NewRegistry(timeutil.RealClock{})
	_, ok := r.Get("does-not-exist")
	assert.False(t, ok)
}
