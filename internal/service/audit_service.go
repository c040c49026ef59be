package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/config"
	"github.com/popeskul/crm-inbox/internal/models"
	"github.com/popeskul/crm-inbox/internal/observability"
	"github.com/popeskul/crm-inbox/internal/repository"
)

const auditWriteTimeout = 2 * time.Second

type auditService struct {
	cfg    config.AuditConfig
	repo   repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewAuditService(cfg config.AuditConfig, repo repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Record writes a debug row. Failures are logged and counted, never returned,
// and a cancelled request does not abort the write.
func (s *auditService) Record(ctx context.Context, rec *models.DebugRecord) {
	if !s.cfg.PersistRaw || rec == nil {
		return
	}

	if !json.Valid(rec.RawPayload) {
		// keep undecodable bodies as a JSON string so the jsonb column accepts them
		quoted, err := json.Marshal(string(rec.RawPayload))
		if err != nil {
			quoted = []byte(`""`)
		}
		rec.RawPayload = quoted
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = s.now().UTC()
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	if err := s.repo.Debug().Insert(writeCtx, rec); err != nil {
		observability.AuditWrites.WithLabelValues("failure").Inc()
		s.logger.Warn("Audit write failed",
			zap.String("instance_id", rec.InstanceID.String),
			zap.Error(err))
		return
	}
	observability.AuditWrites.WithLabelValues("success").Inc()
}

// Sweep deletes rows older than the retention window. A non-positive
// retention keeps everything.
func (s *auditService) Sweep(ctx context.Context) (int64, error) {
	if s.cfg.RetentionDays <= 0 {
		return 0, nil
	}

	cutoff := s.now().UTC().AddDate(0, 0, -s.cfg.RetentionDays)
	deleted, err := s.repo.Debug().DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep audit log: %w", err)
	}

	s.logger.Info("Audit log swept",
		zap.Time("cutoff", cutoff),
		zap.Int64("deleted", deleted))
	return deleted, nil
}

func (s *auditService) Latest(ctx context.Context, limit int) ([]*models.DebugRecord, error) {
	if limit <= 0 {
		limit = s.cfg.DebugLimit
	}
	if limit <= 0 {
		limit = 5
	}

	records, err := s.repo.Debug().Latest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return records, nil
}
