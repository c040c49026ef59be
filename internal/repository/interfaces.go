package repository

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"github.com/popeskul/crm-inbox/internal/models"
)

var ErrNotFound = errors.New("record not found")

// Repository interface defines all repository operations.
type Repository interface {
	// Ping checks database connectivity
	Ping(ctx context.Context) error

	Message() MessageRepository
	Contact() ContactRepository
	Debug() DebugRepository
	Instance() InstanceRepository
}

// MessageRepository stores normalized messages. Rows are never updated except
// by the tenant backfill.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByTenant(ctx context.Context, tenantID string) ([]*models.Message, error)
	ListByContact(ctx context.Context, tenantID, contactID string) ([]*models.Message, error)
	// BackfillTenant copies contacts.tenant_id onto messages that have none.
	// An empty contactID repairs every contact.
	BackfillTenant(ctx context.Context, contactID string) (int64, error)
}

type ContactRepository interface {
	// Upsert inserts the contact or refreshes it. Blank name or tenant never
	// overwrite stored values.
	Upsert(ctx context.Context, contact *models.Contact) error
	Get(ctx context.Context, contactID string) (*models.Contact, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*models.Contact, error)
}

type DebugRepository interface {
	Insert(ctx context.Context, rec *models.DebugRecord) error
	Latest(ctx context.Context, limit int) ([]*models.DebugRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// InstanceRepository reads provider instance credentials.
type InstanceRepository interface {
	GetByInstanceID(ctx context.Context, instanceID string) (*models.InstanceConfig, error)
	GetByTenant(ctx context.Context, tenantID string) (*models.InstanceConfig, error)
}
