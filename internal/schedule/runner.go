package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aatumaykin/hive/internal/logger"
)

// defaultTick is the polling period when none is configured.
const defaultTick = 30 * time.Second

// ExecuteFunc is invoked for every due job. The firingID is the
// deduplication id for this specific occurrence (see Job.FiringID); the
// callback routes the job's task back into the owning agent's message path
// with it so redelivery after a restart is idempotent.
type ExecuteFunc func(ctx context.Context, job Job, firingID string)

// Runner polls the store and fires due jobs.
// Each tick loads the full job collection; every job whose next run is at
// or before now is executed, then its next run is recomputed and persisted
// before the next job is considered. Jobs never overlap themselves: the
// loop waits for each callback to return before moving on, and the next
// tick only starts after the previous one drained.
type Runner struct {
	store   *Store
	execute ExecuteFunc
	tick    time.Duration
	logger  *logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewRunner creates a new Runner. A non-positive tick falls back to the
// default 30 seconds.
func NewRunner(store *Store, execute ExecuteFunc, tick time.Duration, log *logger.Logger) *Runner {
	if tick <= 0 {
		tick = defaultTick
	}
	return &Runner{
		store:   store,
		execute: execute,
		tick:    tick,
		logger:  log,
	}
}

// Start launches the polling loop. It returns immediately; the loop runs
// until Stop is called or the context is cancelled.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("schedule runner already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.started = true

	go r.loop(runCtx)

	r.logger.Info("schedule runner started",
		logger.Field{Key: "tick", Value: r.tick.String()})
	return nil
}

// Stop requests a cooperative stop and waits for the loop to finish its
// current tick.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	done := r.done
	r.started = false
	r.mu.Unlock()

	cancel()
	<-done
	r.logger.Info("schedule runner stopped")
}

// loop is the polling loop. Cancellation is only honored between ticks so
// a job firing is never abandoned halfway.
func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runDue(ctx, time.Now())
		}
	}
}

// runDue fires every job due at now, sequentially.
func (r *Runner) runDue(ctx context.Context, now time.Time) {
	jobs, err := r.store.Load()
	if err != nil {
		r.logger.Error("failed to load jobs for tick", err)
		return
	}

	for _, job := range jobs {
		if job.NextRun.After(now) {
			continue
		}

		firingID := job.FiringID()
		r.logger.Info("firing scheduled job",
			logger.Field{Key: "job_id", Value: job.ID},
			logger.Field{Key: "agent", Value: job.AgentName},
			logger.Field{Key: "firing_id", Value: firingID})

		r.execute(ctx, job, firingID)

		job.NextRun = job.NextRunAfter(now)
		if err := r.store.Update(job); err != nil {
			r.logger.Error("failed to persist recomputed next run", err,
				logger.Field{Key: "job_id", Value: job.ID})
		}
	}
}
