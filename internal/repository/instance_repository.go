package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/popeskul/crm-inbox/internal/models"
)

const instanceColumns = `id, tenant_id, instance_id, base_url, instance_token, api_key, webhook_url, connected, created_at, updated_at`

type instanceRepository struct {
	db *sqlx.DB
}

func NewInstanceRepository(db *sqlx.DB) InstanceRepository {
	return &instanceRepository{
		db: db,
	}
}

func (r *instanceRepository) GetByInstanceID(ctx context.Context, instanceID string) (*models.InstanceConfig, error) {
	return r.getOne(ctx, `SELECT `+instanceColumns+` FROM provider_instances WHERE instance_id = $1`, instanceID)
}

func (r *instanceRepository) GetByTenant(ctx context.Context, tenantID string) (*models.InstanceConfig, error) {
	return r.getOne(ctx, `SELECT `+instanceColumns+` FROM provider_instances WHERE tenant_id = $1`, tenantID)
}

func (r *instanceRepository) getOne(ctx context.Context, query, arg string) (*models.InstanceConfig, error) {
	var inst models.InstanceConfig
	if err := r.db.GetContext(ctx, &inst, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get provider instance: %w", err)
	}
	return &inst, nil
}
