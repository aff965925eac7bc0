package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Job is one stateless batch pass. Implementations must be safe to invoke
// again before a previous invocation finishes; the repositories' claiming
// semantics make overlap harmless.
type Job interface {
	Name() string
	RunOnce(ctx context.Context) error
}

// JobFunc adapts a named function to the Job interface.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (j JobFunc) Name() string                      { return j.JobName }
func (j JobFunc) RunOnce(ctx context.Context) error { return j.Fn(ctx) }

// Scheduler invokes the pipeline jobs on a fixed interval, standing in for
// an external cron. Each tick gets its own bounded context.
type Scheduler struct {
	jobs       []Job
	interval   time.Duration
	runTimeout time.Duration
	log        zerolog.Logger
}

func New(interval, runTimeout time.Duration, log zerolog.Logger, jobs ...Job) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Scheduler{
		jobs:       jobs,
		interval:   interval,
		runTimeout: runTimeout,
		log:        log.With().Str("component", "scheduler").Logger(),
	}
}

// Run ticks until the context is cancelled. Job errors are logged, never
// fatal: the next tick retries eligible rows by re-polling.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("pipeline scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("pipeline scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	for _, job := range s.jobs {
		runCtx := ctx
		var cancel context.CancelFunc
		if s.runTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, s.runTimeout)
		}
		if err := job.RunOnce(runCtx); err != nil {
			s.log.Error().Err(err).Str("job", job.Name()).Msg("pipeline job run failed")
		}
		if cancel != nil {
			cancel()
		}
	}
}
