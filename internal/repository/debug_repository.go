package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/popeskul/crm-inbox/internal/models"
)

type debugRepository struct {
	db *sqlx.DB
}

func NewDebugRepository(db *sqlx.DB) DebugRepository {
	return &debugRepository{
		db: db,
	}
}

// Insert appends a raw payload row. A zero ID is replaced with a fresh UUID.
func (r *debugRepository) Insert(ctx context.Context, rec *models.DebugRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO webhook_debug (id, received_at, raw_payload, instance_id, external_message_id, raw_phone)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.ReceivedAt, string(rec.RawPayload), rec.InstanceID, rec.ExternalMessageID, rec.RawPhone)
	if err != nil {
		return fmt.Errorf("failed to insert debug record: %w", err)
	}
	return nil
}

// Latest returns the newest rows without their payloads.
func (r *debugRepository) Latest(ctx context.Context, limit int) ([]*models.DebugRecord, error) {
	query := `
		SELECT id, received_at, instance_id, external_message_id, raw_phone
		FROM webhook_debug
		ORDER BY received_at DESC
		LIMIT $1
	`

	records := []*models.DebugRecord{}
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list debug records: %w", err)
	}
	return records, nil
}

func (r *debugRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM webhook_debug WHERE received_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete debug records: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}
	return deleted, nil
}
