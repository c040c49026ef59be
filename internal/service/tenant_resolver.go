package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/models"
	"github.com/popeskul/crm-inbox/internal/repository"
)

const tenantCachePrefix = "tenant:instance:"

// tenantResolver reads instance ownership from the database and caches it in
// Redis. A Redis outage only costs the cache; lookups still hit the database.
type tenantResolver struct {
	repo        repository.Repository
	redisClient *redis.Client
	ttl         time.Duration
	logger      *zap.Logger
}

func NewTenantResolver(repo repository.Repository, redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) TenantResolver {
	return &tenantResolver{
		repo:        repo,
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

func (r *tenantResolver) ResolveTenantByInstanceID(ctx context.Context, instanceID string) (string, error) {
	instanceID = strings.TrimSpace(instanceID)
	if instanceID == "" {
		return "", ErrUnknownInstance
	}

	cacheKey := tenantCachePrefix + instanceID
	if r.redisClient != nil {
		tenant, err := r.redisClient.Get(ctx, cacheKey).Result()
		if err == nil && tenant != "" {
			return tenant, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			r.logger.Warn("Tenant cache lookup failed", zap.String("instance_id", instanceID), zap.Error(err))
		}
	}

	inst, err := r.repo.Instance().GetByInstanceID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnknownInstance
		}
		return "", fmt.Errorf("failed to resolve tenant: %w", err)
	}
	if strings.TrimSpace(inst.TenantID) == "" {
		return "", ErrUnknownInstance
	}

	if r.redisClient != nil && r.ttl > 0 {
		if err := r.redisClient.Set(ctx, cacheKey, inst.TenantID, r.ttl).Err(); err != nil {
			r.logger.Warn("Failed to cache tenant", zap.String("instance_id", instanceID), zap.Error(err))
		}
	}

	return inst.TenantID, nil
}

// credentialStore serves tenant credentials straight from the instance table.
type credentialStore struct {
	repo repository.Repository
}

func NewCredentialStore(repo repository.Repository) CredentialStore {
	return &credentialStore{repo: repo}
}

func (s *credentialStore) InstanceConfig(ctx context.Context, tenantID string) (*models.InstanceConfig, error) {
	inst, err := s.repo.Instance().GetByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInstanceNotConfigured
		}
		return nil, fmt.Errorf("failed to load instance config: %w", err)
	}
	return inst, nil
}
