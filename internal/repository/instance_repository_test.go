package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/crm-inbox/internal/repository"
)

func TestInstanceRepository_Lookup(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewInstanceRepository(db)
	ctx := context.Background()
	cleanupTestData(t, db)
	insertInstance(t, db, "t1", "3C01")

	byInstance, err := repo.GetByInstanceID(ctx, "3C01")
	require.NoError(t, err)
	assert.Equal(t, "t1", byInstance.TenantID)
	assert.Equal(t, "token-3C01", byInstance.InstanceToken)
	assert.Equal(t, "key-3C01", byInstance.APIKey)

	byTenant, err := repo.GetByTenant(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, byInstance.ID, byTenant.ID)

	_, err = repo.GetByInstanceID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
