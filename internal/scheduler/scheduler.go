package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const maxTaskTimeout = 10 * time.Minute

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule accepts five or six field cron expressions and descriptors
// such as "@daily".
func ParseSchedule(expr string) (cron.Schedule, error) {
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSchedule, expr, err)
	}
	return schedule, nil
}

// Scheduler fires a single task whenever its schedule comes due.
type Scheduler struct {
	name      string
	logger    *zap.Logger
	schedule  cron.Schedule
	taskFunc  func(context.Context) error
	now       func() time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
	isRunning bool
	mu        sync.RWMutex
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(logger *zap.Logger, name string, schedule cron.Schedule, taskFunc func(context.Context) error) *Scheduler {
	return &Scheduler{
		name:     name,
		logger:   logger.With(zap.String("task", name)),
		schedule: schedule,
		taskFunc: taskFunc,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrSchedulerAlreadyRunning
	}

	s.isRunning = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run(ctx)

	s.logger.Info("Scheduler started", zap.Time("next_run", s.schedule.Next(s.now())))
	return nil
}

// Stop halts the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh

	s.mu.Lock()
	s.isRunning = false
	s.mu.Unlock()

	s.logger.Info("Scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// RunNow executes the task once, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.executeTask(ctx, maxTaskTimeout)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)
	defer func() {
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	}()

	for {
		now := s.now()
		next := s.schedule.Next(now)
		if next.IsZero() {
			s.logger.Warn("Schedule has no further activations")
			return
		}

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Scheduler context canceled")
			return
		case <-s.stopCh:
			timer.Stop()
			s.logger.Info("Scheduler stop signal received")
			return
		case <-timer.C:
			// the task may run until the following activation
			budget := s.schedule.Next(next).Sub(next)
			if err := s.executeTask(ctx, budget); err != nil {
				s.logger.Error("Failed to execute scheduled task", zap.Error(err))
			}
		}
	}
}

func (s *Scheduler) executeTask(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 || timeout > maxTaskTimeout {
		timeout = maxTaskTimeout
	}

	s.logger.Info("Executing scheduled task")

	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.taskFunc(taskCtx)
	if err != nil {
		s.logger.Error("Task execution failed", zap.Error(err))
	} else {
		s.logger.Info("Task execution completed successfully")
	}
	return err
}
