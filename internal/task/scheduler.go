package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ErrUnknownTask is returned by RunNow for a name that was never registered.
var ErrUnknownTask = errors.New("unknown task")

// Scheduler runs registered tasks on cron schedules.
type Scheduler struct {
	cron    gocron.Scheduler
	jobs    map[string]gocron.Job
	timeout time.Duration
	logger  *slog.Logger
}

// SchedulerConfig holds scheduler settings.
type SchedulerConfig struct {
	// Location is the time zone cron expressions are evaluated in.
	// Defaults to UTC.
	Location *time.Location

	// TaskTimeout bounds a single run. Zero means no bound.
	TaskTimeout time.Duration
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(cfg SchedulerConfig, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	log := logger.With(slog.String("component", "scheduler"))

	cron, err := gocron.NewScheduler(
		gocron.WithLocation(cfg.Location),
		gocron.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		cron:    cron,
		jobs:    make(map[string]gocron.Job),
		timeout: cfg.TaskTimeout,
		logger:  log,
	}, nil
}

// Register schedules t with a standard five-field cron expression. Runs of
// the same task never overlap; a run due while the previous one is still
// going is skipped.
func (s *Scheduler) Register(expression string, t Task) error {
	if t == nil {
		return errors.New("task cannot be nil")
	}
	if _, exists := s.jobs[t.Name()]; exists {
		return fmt.Errorf("task %q already registered", t.Name())
	}

	job, err := s.cron.NewJob(
		gocron.CronJob(expression, false),
		gocron.NewTask(s.execute, t),
		gocron.WithName(t.Name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule task %q with %q: %w", t.Name(), expression, err)
	}
	s.jobs[t.Name()] = job

	s.logger.Info("task registered",
		slog.String("task", t.Name()),
		slog.String("schedule", expression))
	return nil
}

// execute runs one pass of t. gocron supplies ctx, which is cancelled on
// shutdown.
func (s *Scheduler) execute(ctx context.Context, t Task) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := s.logger.With(slog.String("task", t.Name()))
	log.Debug("task started")

	if err := t.Run(ctx); err != nil {
		log.Error("task failed", slog.String("error", err.Error()))
		return
	}
	log.Debug("task finished")
}

// RunNow triggers the named task immediately, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return job.RunNow()
}

// NextRun reports when the named task is next due.
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	job, ok := s.jobs[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return job.NextRun()
}

// Start begins executing scheduled tasks.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("tasks", len(s.jobs)))
}

// Shutdown stops the scheduler and waits for running tasks to return.
func (s *Scheduler) Shutdown() error {
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}
	s.logger.Info("scheduler stopped")
	return nil
}

// Run starts the scheduler and blocks until ctx is done, then shuts it down.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	return s.Shutdown()
}
