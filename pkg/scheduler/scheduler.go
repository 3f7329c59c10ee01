// Package scheduler runs pipeline passes on fixed intervals. It owns no
// signal handling: the caller cancels the context it passes to Start, and
// Stop waits for in-flight runs to finish.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dd0wney/cluso-graph-analytics/pkg/logging"
	"github.com/dd0wney/cluso-graph-analytics/pkg/metrics"
	"github.com/dd0wney/cluso-graph-analytics/pkg/pipeline"
)

// Job is one scheduled pipeline pass.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) (*pipeline.RunReport, error)
}

// Scheduler drives a set of jobs, each on its own ticker.
type Scheduler struct {
	jobs    []Job
	logger  logging.Logger
	metrics *metrics.Registry

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates a scheduler. Jobs with a non-positive interval are skipped at
// Start. A nil logger disables logging.
func New(jobs []Job, logger logging.Logger, m *metrics.Registry) *Scheduler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Scheduler{
		jobs:    jobs,
		logger:  logger.With(logging.Component("scheduler")),
		metrics: m,
	}
}

// Start launches one goroutine per job. The first pass of each job fires
// after its interval elapses, not immediately. Start is idempotent until
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)

	for _, job := range s.jobs {
		if job.Interval <= 0 {
			s.logger.Warn("skipping job with no interval", logging.String("job", job.Name))
			continue
		}
		s.wg.Add(1)
		go s.runJob(ctx, job)
	}
}

// Stop cancels all jobs and blocks until in-flight runs return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer s.wg.Done()

	s.logger.Info("job scheduled",
		logging.String("job", job.Name),
		logging.Duration("interval", job.Interval),
	)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("job stopped", logging.String("job", job.Name))
			return
		case <-ticker.C:
			s.fire(ctx, job)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, job Job) {
	report, err := job.Run(ctx)
	if err != nil {
		s.record(job.Name, "error")
		s.logger.Error("scheduled run failed",
			logging.String("job", job.Name),
			logging.Error(err),
		)
		return
	}

	s.record(job.Name, "ok")
	s.logger.Info("scheduled run finished",
		logging.String("job", job.Name),
		logging.RunID(report.RunID),
		logging.Duration("duration", report.Duration),
	)
}

func (s *Scheduler) record(job, status string) {
	if s.metrics != nil {
		s.metrics.RecordScheduledRun(job, status)
	}
}
