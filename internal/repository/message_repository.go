package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/crm-inbox/internal/models"
)

const messageColumns = `id, external_message_id, tenant_id, contact_id, content, sent_at, direction, kind, delivery_status, created_at`

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// Create inserts a message and fills in its generated id and created_at.
func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (external_message_id, tenant_id, contact_id, content, sent_at, direction, kind, delivery_status)
		VALUES (:external_message_id, :tenant_id, :contact_id, :content, :sent_at, :direction, :kind, :delivery_status)
		RETURNING id, created_at
	`

	rows, err := r.db.NamedQueryContext(ctx, query, msg)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&msg.ID, &msg.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan created message: %w", err)
		}
	}
	return rows.Err()
}

// ListByTenant returns every message of the tenant, oldest first.
func (r *messageRepository) ListByTenant(ctx context.Context, tenantID string) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE tenant_id = $1
		ORDER BY sent_at ASC, id ASC
	`

	messages := []*models.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list tenant messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) ListByContact(ctx context.Context, tenantID, contactID string) ([]*models.Message, error) {
	query := `SELECT ` + messageColumns + `
		FROM messages
		WHERE tenant_id = $1 AND contact_id = $2
		ORDER BY sent_at ASC, id ASC
	`

	messages := []*models.Message{}
	if err := r.db.SelectContext(ctx, &messages, query, tenantID, contactID); err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) BackfillTenant(ctx context.Context, contactID string) (int64, error) {
	query := `
		UPDATE messages AS m
		SET tenant_id = c.tenant_id
		FROM contacts AS c
		WHERE m.contact_id = c.contact_id
		  AND m.tenant_id IS NULL
		  AND c.tenant_id IS NOT NULL
		  AND ($1::text = '' OR m.contact_id = $1::text)
	`

	res, err := r.db.ExecContext(ctx, query, contactID)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill message tenants: %w", err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read backfill result: %w", err)
	}
	return updated, nil
}
