package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/models"
	"github.com/popeskul/crm-inbox/internal/repository"
	"github.com/popeskul/crm-inbox/internal/repository/mocks"
	"github.com/popeskul/crm-inbox/internal/service"
)

func TestTenantResolver_ResolveTenantByInstanceID(t *testing.T) {
	tests := []struct {
		name       string
		instanceID string
		setup      func(*mocks.MockInstanceRepository)
		want       string
		wantErr    error
	}{
		{
			name:       "mapped instance",
			instanceID: " inst-1 ",
			setup: func(r *mocks.MockInstanceRepository) {
				r.EXPECT().GetByInstanceID(gomock.Any(), "inst-1").
					Return(&models.InstanceConfig{InstanceID: "inst-1", TenantID: "tenant-a"}, nil)
			},
			want: "tenant-a",
		},
		{
			name:       "blank instance id",
			instanceID: "  ",
			setup:      func(*mocks.MockInstanceRepository) {},
			wantErr:    service.ErrUnknownInstance,
		},
		{
			name:       "not registered",
			instanceID: "ghost",
			setup: func(r *mocks.MockInstanceRepository) {
				r.EXPECT().GetByInstanceID(gomock.Any(), "ghost").Return(nil, repository.ErrNotFound)
			},
			wantErr: service.ErrUnknownInstance,
		},
		{
			name:       "registered without tenant",
			instanceID: "orphan",
			setup: func(r *mocks.MockInstanceRepository) {
				r.EXPECT().GetByInstanceID(gomock.Any(), "orphan").
					Return(&models.InstanceConfig{InstanceID: "orphan"}, nil)
			},
			wantErr: service.ErrUnknownInstance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockRepository(ctrl)
			instances := mocks.NewMockInstanceRepository(ctrl)
			repo.EXPECT().Instance().Return(instances).AnyTimes()
			tt.setup(instances)

			resolver := service.NewTenantResolver(repo, nil, time.Minute, zap.NewNop())
			got, err := resolver.ResolveTenantByInstanceID(context.Background(), tt.instanceID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTenantResolver_StorageFailureIsNotUnknown(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	instances := mocks.NewMockInstanceRepository(ctrl)
	repo.EXPECT().Instance().Return(instances)
	instances.EXPECT().GetByInstanceID(gomock.Any(), "inst-1").Return(nil, errors.New("too many connections"))

	resolver := service.NewTenantResolver(repo, nil, time.Minute, zap.NewNop())
	_, err := resolver.ResolveTenantByInstanceID(context.Background(), "inst-1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrUnknownInstance)
}

func TestTenantResolver_FallsBackWhenCacheIsDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	instances := mocks.NewMockInstanceRepository(ctrl)
	repo.EXPECT().Instance().Return(instances)
	instances.EXPECT().GetByInstanceID(gomock.Any(), "inst-1").
		Return(&models.InstanceConfig{InstanceID: "inst-1", TenantID: "tenant-a"}, nil)

	redisClient := redis.NewClient(&redis.Options{
		Addr:       "localhost:9999",
		MaxRetries: -1,
	})
	defer redisClient.Close()

	resolver := service.NewTenantResolver(repo, redisClient, time.Minute, zap.NewNop())
	got, err := resolver.ResolveTenantByInstanceID(context.Background(), "inst-1")

	require.NoError(t, err)
	assert.Equal(t, "tenant-a", got)
}

func TestCredentialStore_InstanceConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	instances := mocks.NewMockInstanceRepository(ctrl)
	repo.EXPECT().Instance().Return(instances).AnyTimes()

	cfg := &models.InstanceConfig{TenantID: "tenant-a", InstanceID: "inst-1", InstanceToken: "tok"}
	instances.EXPECT().GetByTenant(gomock.Any(), "tenant-a").Return(cfg, nil)
	instances.EXPECT().GetByTenant(gomock.Any(), "tenant-b").Return(nil, repository.ErrNotFound)

	store := service.NewCredentialStore(repo)

	got, err := store.InstanceConfig(context.Background(), "tenant-a")
	require.NoError(t, err)
	assert.Same(t, cfg, got)

	_, err = store.InstanceConfig(context.Background(), "tenant-b")
	assert.ErrorIs(t, err, service.ErrInstanceNotConfigured)
}
