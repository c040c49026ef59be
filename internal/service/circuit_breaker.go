// Package service implements ingestion, realtime fan-out, QR retrieval and
// the maintenance jobs on top of the repositories and the provider client.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/config"
	"github.com/popeskul/crm-inbox/internal/observability"
)

const providerBreakerName = "zapi-provider"

// CircuitBreaker guards every outbound call to the messaging provider: the QR
// cascade runs inside it as one unit, and so does each outbound send.
type CircuitBreaker struct {
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

func NewCircuitBreaker(cfg *config.CircuitBreakerConfig, logger *zap.Logger) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        providerBreakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.ConsecutiveFails > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFails {
				return true
			}
			if counts.Requests == 0 || counts.Requests < cfg.ConsecutiveFails {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			observability.ProviderBreakerState.Set(float64(to))
			logger.Warn("Provider circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up is not a provider fault
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &CircuitBreaker{
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: logger,
	}
}

// Execute runs fn unless ctx is already done or the breaker rejects the call.
// Rejections surface as ErrCircuitOpen.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	_, err := cb.cb.Execute(func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fn()
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState):
		cb.logger.Debug("Provider call rejected, circuit open")
		return ErrCircuitOpen
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		cb.logger.Debug("Provider call rejected, half-open probe limit reached")
		return fmt.Errorf("%w: too many requests", ErrCircuitOpen)
	default:
		return err
	}
}

func (cb *CircuitBreaker) GetState() api.HealthResponseCircuitBreakerState {
	switch cb.cb.State() {
	case gobreaker.StateHalfOpen:
		return api.HalfOpen
	case gobreaker.StateOpen:
		return api.Open
	default:
		return api.Closed
	}
}

// GetCounts returns the requests and failures of the current interval.
func (cb *CircuitBreaker) GetCounts() (requests, failures uint32) {
	counts := cb.cb.Counts()
	return counts.Requests, counts.TotalFailures
}
