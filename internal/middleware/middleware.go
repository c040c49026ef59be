// Package middleware holds the HTTP middleware shared by every inbox route.
package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config holds middleware configuration. A nil CORS disables CORS handling
// and a zero RequestTimeout disables the timeout. Event streams and provider
// callbacks are never subject to the timeout, and callbacks skip the rate
// limiter as well.
type Config struct {
	Logger *zap.Logger

	CORS *CORSConfig

	RateLimit      rate.Limit
	RateLimitBurst int

	RequestTimeout time.Duration
}

// Chain composes the middleware stack, outermost first: request id, tenant,
// logging, panic recovery, CORS, rate limiting, timeout. The rate limiter
// sees the tenant, and the logger records the final status of every request,
// recovered panics included.
func Chain(config *Config) func(http.Handler) http.Handler {
	rateLimiter := NewRateLimiter(config.RateLimit, config.RateLimitBurst)

	stack := []func(http.Handler) http.Handler{
		RequestID,
		Tenant,
		Logger(config.Logger),
		Recovery(config.Logger),
	}
	if config.CORS != nil {
		stack = append(stack, CORS(config.CORS))
	}
	stack = append(stack,
		rateLimiter.Middleware(),
		Timeout(config.RequestTimeout),
	)

	return func(handler http.Handler) http.Handler {
		h := handler
		for i := len(stack) - 1; i >= 0; i-- {
			h = stack[i](h)
		}
		return h
	}
}
