package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"

	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/models"
)

// TenantResolver maps a provider instance id to the owning tenant.
type TenantResolver interface {
	ResolveTenantByInstanceID(ctx context.Context, instanceID string) (string, error)
}

// CredentialStore returns the provider credentials of a tenant.
type CredentialStore interface {
	InstanceConfig(ctx context.Context, tenantID string) (*models.InstanceConfig, error)
}

type IngestionService interface {
	Ingest(ctx context.Context, req IngestRequest) (*models.Message, error)
	ListConversations(ctx context.Context, tenantID string) ([]*models.Conversation, error)
	ListMessages(ctx context.Context, tenantID, contactID string) ([]*models.Message, error)
	ListContacts(ctx context.Context, tenantID string) ([]*models.Contact, error)
	UpsertContact(ctx context.Context, tenantID, phone, name string) (*models.Contact, error)
	BackfillMissingTenant(ctx context.Context, contactID string) (int64, error)
}

// AuditService keeps raw provider callbacks. Record never fails the caller.
type AuditService interface {
	Record(ctx context.Context, rec *models.DebugRecord)
	Sweep(ctx context.Context) (int64, error)
	Latest(ctx context.Context, limit int) ([]*models.DebugRecord, error)
}

type QRService interface {
	FetchImage(ctx context.Context, tenantID string) ([]byte, error)
	DataURL(ctx context.Context, tenantID string) (string, error)
}

type OutboundService interface {
	SendText(ctx context.Context, tenantID, to, text string) (*models.Message, error)
}

type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool
	RunNow(ctx context.Context) error
}

type HealthService interface {
	GetHealth(ctx context.Context) *HealthStatus
}

// Publisher is the part of the realtime hub the services publish through.
type Publisher interface {
	Publish(key, name string, data any) int
}

// BreakerStatus exposes circuit breaker state for health reporting.
type BreakerStatus interface {
	GetState() api.HealthResponseCircuitBreakerState
	GetCounts() (requests, failures uint32)
}

// SubscriberCounter reports open realtime subscriptions.
type SubscriberCounter interface {
	Total() int
}
