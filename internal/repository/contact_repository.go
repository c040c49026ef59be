package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/crm-inbox/internal/models"
)

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) ContactRepository {
	return &contactRepository{
		db: db,
	}
}

func (r *contactRepository) Upsert(ctx context.Context, contact *models.Contact) error {
	query := `
		INSERT INTO contacts (contact_id, display_name, tenant_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (contact_id) DO UPDATE
		SET display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), contacts.display_name),
		    tenant_id    = COALESCE(NULLIF(EXCLUDED.tenant_id, ''), contacts.tenant_id),
		    updated_at   = NOW()
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, contact.ContactID, contact.DisplayName, contact.TenantID).
		Scan(&contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Get(ctx context.Context, contactID string) (*models.Contact, error) {
	query := `
		SELECT contact_id, display_name, tenant_id, created_at, updated_at
		FROM contacts
		WHERE contact_id = $1
	`

	var contact models.Contact
	if err := r.db.GetContext(ctx, &contact, query, contactID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.Contact, error) {
	query := `
		SELECT contact_id, display_name, tenant_id, created_at, updated_at
		FROM contacts
		WHERE tenant_id = $1
		ORDER BY updated_at DESC
	`

	contacts := []*models.Contact{}
	if err := r.db.SelectContext(ctx, &contacts, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}
