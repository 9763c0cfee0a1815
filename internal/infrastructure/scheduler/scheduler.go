// Package scheduler implements background job scheduling: the daily
// reminder and the monthly report cut. Jobs are wall-clock driven and
// re-armed after every firing.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job defines the interface that all scheduled jobs must implement.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job. The context is cancelled when the scheduler
	// is stopping.
	Run(ctx context.Context) error

	// Description returns a human-readable description of the job.
	Description() string
}

// Schedule defines when a job should run.
type Schedule interface {
	// Next returns the next firing strictly after the given time.
	Next(t time.Time) time.Time

	// String returns a human-readable representation of the schedule.
	String() string
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// tickInterval bounds how late a firing can be observed. Schedules here
// are minute-grained, so one-second polling is ample.
const tickInterval = time.Second

// scheduledJob wraps a Job with its schedule state.
type scheduledJob struct {
	job      Job
	schedule Schedule
	nextRun  time.Time
	runCount int64
}

// Scheduler manages and executes scheduled jobs.
type Scheduler struct {
	mu     sync.Mutex
	logger *slog.Logger
	clock  func() time.Time

	jobs    map[string]*scheduledJob
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		logger: logger.With("component", "scheduler"),
		clock:  time.Now,
		jobs:   make(map[string]*scheduledJob),
	}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler: cannot register %q while running", job.Name())
	}
	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("scheduler: job %q already registered", job.Name())
	}

	s.jobs[job.Name()] = &scheduledJob{job: job, schedule: schedule}
	return nil
}

// Start arms every job and begins the tick loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler: already running")
	}
	s.running = true

	now := s.clock()
	for _, sj := range s.jobs {
		sj.nextRun = sj.schedule.Next(now)
		s.logger.Info("job armed",
			"job", sj.job.Name(),
			"schedule", sj.schedule.String(),
			"next_run", sj.nextRun)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runLoop(loopCtx)
	return nil
}

// Stop cancels the loop and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

// RunNow executes a registered job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, jobName string) error {
	s.mu.Lock()
	sj, ok := s.jobs[jobName]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: unknown job %q", jobName)
	}
	return s.execute(ctx, sj)
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fireDue(ctx)
		}
	}
}

// fireDue runs every job whose nextRun has passed, then re-arms it. The
// re-arm uses the current time, so a firing missed during downtime runs
// once on catch-up, never once per missed day.
func (s *Scheduler) fireDue(ctx context.Context) {
	now := s.clock()

	s.mu.Lock()
	var due []*scheduledJob
	for _, sj := range s.jobs {
		if !sj.nextRun.After(now) {
			sj.nextRun = sj.schedule.Next(now)
			due = append(due, sj)
		}
	}
	s.mu.Unlock()

	for _, sj := range due {
		if err := s.execute(ctx, sj); err != nil {
			s.logger.Error("job failed", "job", sj.job.Name(), "error", err)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, sj *scheduledJob) error {
	start := s.clock()
	s.logger.Info("job starting", "job", sj.job.Name())

	err := sj.job.Run(ctx)

	s.mu.Lock()
	sj.runCount++
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.logger.Info("job completed", "job", sj.job.Name(), "duration", s.clock().Sub(start))
	return nil
}
