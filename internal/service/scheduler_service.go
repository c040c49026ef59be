package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/config"
	"github.com/popeskul/crm-inbox/internal/scheduler"
)

// schedulerService runs the audit retention sweep on its cron schedule.
type schedulerService struct {
	scheduler *scheduler.Scheduler
	audit     AuditService
	logger    *zap.Logger
}

func NewSchedulerService(
	cfg *config.Config,
	audit AuditService,
	logger *zap.Logger,
) (SchedulerService, error) {
	schedule, err := scheduler.ParseSchedule(cfg.Audit.CleanupCron)
	if err != nil {
		return nil, err
	}

	svc := &schedulerService{
		audit:  audit,
		logger: logger,
	}

	svc.scheduler = scheduler.NewScheduler(logger, "audit-retention", schedule, svc.executeSweepTask)
	return svc, nil
}

func (s *schedulerService) Start() error {
	ctx := context.Background()
	return s.scheduler.Start(ctx)
}

func (s *schedulerService) Stop() error {
	return s.scheduler.Stop()
}

func (s *schedulerService) IsRunning() bool {
	return s.scheduler.IsRunning()
}

func (s *schedulerService) RunNow(ctx context.Context) error {
	return s.scheduler.RunNow(ctx)
}

func (s *schedulerService) executeSweepTask(ctx context.Context) error {
	_, err := s.audit.Sweep(ctx)
	return err
}
