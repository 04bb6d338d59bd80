// Package jobs is a background job registry for long-running external
// pipeline runs (spec §5), e.g. a model training/retraining pipeline
// kicked off as a child process. It tracks each job through
// queued -> running -> {completed|failed|cancelled}, lets a caller
// request cancellation of a running job, and lets a caller retry a
// terminal job by starting a fresh one with the same parameters.
package jobs

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetwatch/dms/internal/monitoring"
	"github.com/fleetwatch/dms/internal/timeutil"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Spec describes one pipeline invocation: the command to run and the
// arguments to pass it. Command is resolved via exec.LookPath semantics,
// same as exec.Command.
type Spec struct {
	Command string
	Args    []string
}

// Job is a snapshot of one registry entry. Callers get copies from
// Registry methods, never the internal mutable record, so a caller
// cannot sidestep the registry's locking by mutating a returned Job.
type Job struct {
	ID         string
	Status     Status
	Message    string
	Error      string
	Spec       Spec
	StartedAt  time.Time
	FinishedAt time.Time
}

type record struct {
	job  Job
	proc *exec.Cmd
}

// Registry tracks the lifecycle of background pipeline jobs. The zero
// value is not usable; construct with NewRegistry.
type Registry struct {
	mu    sync.Mutex
	clock timeutil.Clock
	jobs  map[string]*record
}

// NewRegistry returns an empty job registry whose timestamps are
// drawn from clock.
func NewRegistry(clock timeutil.Clock) *Registry {
	return &Registry{clock: clock, jobs: make(map[string]*record)}
}

// Run starts spec as a new queued job and returns its initial
// snapshot immediately; the job transitions to running and then to a
// terminal status asynchronously. ctx governs the whole run: cancelling
// it is equivalent to calling Cancel on the returned job id.
func (r *Registry) Run(ctx context.Context, spec Spec) Job {
	id := uuid.NewString()
	now := r.clock.Now().UTC()
	rec := &record{job: Job{
		ID:        id,
		Status:    StatusQueued,
		Message:   "queued",
		Spec:      spec,
		StartedAt: now,
	}}

	r.mu.Lock()
	r.jobs[id] = rec
	snapshot := rec.job
	r.mu.Unlock()

	go r.run(ctx, id)

	return snapshot
}

func (r *Registry) run(ctx context.Context, id string) {
	r.mu.Lock()
	rec, ok := r.jobs[id]
	if !ok || rec.job.Status == StatusCancelled {
		// Cancelled before it had a chance to start; never spawn the process.
		r.mu.Unlock()
		return
	}
	rec.job.Status = StatusRunning
	rec.job.Message = "running"
	cmd := exec.CommandContext(ctx, rec.job.Spec.Command, rec.job.Spec.Args...)
	rec.proc = cmd
	r.mu.Unlock()

	err := cmd.Run()

	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok = r.jobs[id]
	if !ok {
		return
	}
	rec.job.FinishedAt = r.clock.Now().UTC()
	rec.proc = nil

	switch {
	case rec.job.Status == StatusCancelled:
		rec.job.Message = "cancelled"
	case ctx.Err() != nil:
		rec.job.Status = StatusCancelled
		rec.job.Message = "cancelled"
	case err != nil:
		rec.job.Status = StatusFailed
		rec.job.Message = "pipeline failed"
		rec.job.Error = err.Error()
		monitoring.Logf("job %s: pipeline failed: %v", id, err)
	default:
		rec.job.Status = StatusCompleted
		rec.job.Message = "completed"
	}
}

// Get returns a snapshot of job id, or false if no such job exists.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return rec.job, true
}

// List returns a snapshot of every job, most recently started first.
func (r *Registry) List() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Job, 0, len(r.jobs))
	for _, rec := range r.jobs {
		out = append(out, rec.job)
	}
	sortJobsByStartedAtDesc(out)
	return out
}

func sortJobsByStartedAtDesc(jobs []Job) {
	for i := 1; i < len(jobs); i++ {
		for j := i; j > 0 && jobs[j].StartedAt.After(jobs[j-1].StartedAt); j-- {
			jobs[j], jobs[j-1] = jobs[j-1], jobs[j]
		}
	}
}

// Cancel requests termination of job id. It is a no-op returning the
// job's current (terminal) snapshot if the job is already finished.
// Cancellation is cooperative and one-shot: it signals the child
// process once and marks the job cancelled; it does not guarantee the
// process has exited by the time Cancel returns.
func (r *Registry) Cancel(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	if rec.job.Status.terminal() {
		return rec.job, true
	}

	if rec.proc != nil && rec.proc.Process != nil {
		if err := rec.proc.Process.Kill(); err != nil {
			monitoring.Logf("job %s: failed to terminate process: %v", id, err)
		}
	}

	rec.job.Status = StatusCancelled
	rec.job.Message = "cancellation requested"
	rec.job.FinishedAt = r.clock.Now().UTC()
	return rec.job, true
}

// Retry starts a fresh job using the original's Spec, leaving the
// original job's terminal record untouched. It returns an error if id
// does not exist or has not yet reached a terminal status.
func (r *Registry) Retry(ctx context.Context, id string) (Job, error) {
	r.mu.Lock()
	rec, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("jobs: no such job %q", id)
	}
	if !rec.job.Status.terminal() {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("jobs: job %q is not in a terminal state (status=%s)", id, rec.job.Status)
	}
	spec := rec.job.Spec
	r.mu.Unlock()

	return r.Run(ctx, spec), nil
}
