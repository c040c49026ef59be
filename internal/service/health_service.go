package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/repository"
)

type healthService struct {
	repo             repository.Repository
	redisClient      *redis.Client
	schedulerService SchedulerService
	breaker          BreakerStatus
	subscribers      SubscriberCounter
}

func NewHealthService(
	repo repository.Repository,
	redisClient *redis.Client,
	schedulerService SchedulerService,
	breaker BreakerStatus,
	subscribers SubscriberCounter,
) HealthService {
	return &healthService{
		repo:             repo,
		redisClient:      redisClient,
		schedulerService: schedulerService,
		breaker:          breaker,
		subscribers:      subscribers,
	}
}

func (s *healthService) GetHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status: api.Healthy,
	}

	if s.schedulerService.IsRunning() {
		status.SchedulerStatus = api.HealthResponseSchedulerStatusRunning
	} else {
		status.SchedulerStatus = api.HealthResponseSchedulerStatusStopped
	}

	status.DatabaseStatus = s.checkDatabaseHealth(ctx)

	status.RedisStatus = s.checkRedisHealth(ctx)

	if s.subscribers != nil {
		status.Subscribers = s.subscribers.Total()
	}

	state := api.Closed
	if s.breaker != nil {
		var requests, failures uint32
		state = s.breaker.GetState()
		requests, failures = s.breaker.GetCounts()
		if requests > 0 {
			failureRate := float64(failures) / float64(requests) * 100
			status.CircuitBreakerStatus = fmt.Sprintf("Requests: %d, Failures: %d (%.1f%%)", requests, failures, failureRate)
		} else {
			status.CircuitBreakerStatus = "No requests yet"
		}
	}
	status.CircuitBreakerState = state

	// the inbox cannot store anything without the database; redis only caches
	// tenant lookups and the breaker only guards provider calls
	switch {
	case status.DatabaseStatus != api.HealthResponseDatabaseStatusConnected:
		status.Status = api.Unhealthy
	case status.RedisStatus != api.HealthResponseRedisStatusConnected, state == api.Open:
		status.Status = api.Degraded
	}

	return status
}

func (s *healthService) checkDatabaseHealth(ctx context.Context) api.HealthResponseDatabaseStatus {
	if err := s.repo.Ping(ctx); err != nil {
		return api.HealthResponseDatabaseStatusDisconnected
	}
	return api.HealthResponseDatabaseStatusConnected
}

func (s *healthService) checkRedisHealth(ctx context.Context) api.HealthResponseRedisStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if s.redisClient == nil {
		return api.HealthResponseRedisStatusDisconnected
	}
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return api.HealthResponseRedisStatusDisconnected
	}

	return api.HealthResponseRedisStatusConnected
}
