package service

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/config"
	"github.com/popeskul/crm-inbox/internal/provider"
	"github.com/popeskul/crm-inbox/internal/qr"
	"github.com/popeskul/crm-inbox/internal/realtime"
	"github.com/popeskul/crm-inbox/internal/repository"
)

type Service struct {
	Credentials CredentialStore
	Ingestion   IngestionService
	Outbound    OutboundService
	Audit       AuditService
	QR          QRService
	Scheduler   SchedulerService
	Health      HealthService
	Breaker     *CircuitBreaker
}

func NewService(
	cfg *config.Config,
	repo repository.Repository,
	redisClient *redis.Client,
	hub *realtime.Hub,
	providerClient *provider.Client,
	logger *zap.Logger,
) (*Service, error) {
	breaker := NewCircuitBreaker(&cfg.Provider.CircuitBreaker, logger)
	tenants := NewTenantResolver(repo, redisClient, cfg.Tenant.CacheTTL(), logger)
	credentials := NewCredentialStore(repo)

	auditService := NewAuditService(cfg.Audit, repo, logger)
	ingestionService := NewIngestionService(repo, tenants, hub, auditService, logger)

	resolver := qr.NewResolver(providerClient, breaker, cfg.Provider.AttemptTimeoutDuration(), logger)
	qrService := NewQRService(credentials, resolver, cfg.Provider.BaseURL)
	outboundService := NewOutboundService(repo, credentials, providerClient, breaker, hub, cfg.Provider.BaseURL, logger)

	schedulerService, err := NewSchedulerService(cfg, auditService, logger)
	if err != nil {
		return nil, err
	}
	healthService := NewHealthService(repo, redisClient, schedulerService, breaker, hub)

	return &Service{
		Credentials: credentials,
		Ingestion:   ingestionService,
		Outbound:    outboundService,
		Audit:       auditService,
		QR:          qrService,
		Scheduler:   schedulerService,
		Health:      healthService,
		Breaker:     breaker,
	}, nil
}
