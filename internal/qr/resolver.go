// Package qr resolves the pairing-code image of a provider instance.
//
// The provider answers equivalent calls with raw PNG bytes, JSON-wrapped
// base64, or bare base64 text carrying provider artifacts. The resolver walks
// an ordered list of strategies and returns the first one that yields bytes.
package qr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/observability"
	"github.com/popeskul/crm-inbox/internal/provider"
)

const (
	imagePath     = "qr-code/image"
	secondaryPath = "qr-code"
)

var (
	ErrProviderUnavailable = errors.New("qr code provider unavailable")
	ErrEmptyResponse       = errors.New("provider returned no qr payload")

	// candidateKeys lists the JSON keys that may carry the base64 payload, in lookup order.
	candidateKeys = []string{"image", "qrCode", "base64", "qr", "value", "data"}
)

// Getter performs one authenticated GET against a provider instance.
type Getter interface {
	Get(ctx context.Context, inst provider.Instance, path string, auth provider.Auth) (*provider.Response, error)
}

// Executor guards the whole cascade, typically a circuit breaker.
type Executor interface {
	Execute(ctx context.Context, fn func() error) error
}

// Strategy is one way of obtaining the QR image. Skip, when set, is consulted
// with the previous strategy's error and may decide the strategy does not apply.
type Strategy struct {
	Name string
	Path string
	Auth provider.Auth
	Skip func(prev error) bool
}

// DefaultStrategies returns the cascade in precedence order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "image-with-api-key", Path: imagePath, Auth: provider.AuthRequireAPIKey},
		{Name: "image-bearer-only", Path: imagePath, Auth: provider.AuthBearerOnly, Skip: notAPIKeyRejection},
		{Name: "secondary-endpoint", Path: secondaryPath, Auth: provider.AuthBestEffort},
	}
}

// notAPIKeyRejection skips the bearer-only retry unless the API key header was
// the reason the previous attempt failed.
func notAPIKeyRejection(prev error) bool {
	if errors.Is(prev, provider.ErrMissingAPIKey) {
		return false
	}
	var statusErr *provider.StatusError
	if errors.As(prev, &statusErr) && statusErr.StatusCode == http.StatusForbidden {
		return !strings.Contains(strings.ToLower(statusErr.Body), strings.ToLower(provider.HeaderClientToken))
	}
	return true
}

type Resolver struct {
	client         Getter
	breaker        Executor
	strategies     []Strategy
	attemptTimeout time.Duration
	logger         *zap.Logger
}

func NewResolver(client Getter, breaker Executor, attemptTimeout time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		client:         client,
		breaker:        breaker,
		strategies:     DefaultStrategies(),
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// WithStrategies replaces the cascade, for gateways that only expose a subset
// of the endpoints.
func (r *Resolver) WithStrategies(strategies []Strategy) *Resolver {
	r.strategies = strategies
	return r
}

// Fetch returns raw image bytes. Missing instance credentials fail before any
// request is sent; otherwise exhaustion of every strategy yields
// ErrProviderUnavailable.
func (r *Resolver) Fetch(ctx context.Context, inst provider.Instance) ([]byte, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}

	var image []byte
	run := func() error {
		var err error
		image, err = r.cascade(ctx, inst)
		return err
	}

	var err error
	if r.breaker != nil {
		err = r.breaker.Execute(ctx, run)
	} else {
		err = run()
	}
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return image, nil
}

func (r *Resolver) cascade(ctx context.Context, inst provider.Instance) ([]byte, error) {
	var lastErr error
	for _, s := range r.strategies {
		if s.Skip != nil && s.Skip(lastErr) {
			observability.QRAttempts.WithLabelValues(s.Name, "skipped").Inc()
			continue
		}

		image, err := r.attempt(ctx, inst, s)
		if err == nil {
			observability.QRAttempts.WithLabelValues(s.Name, "success").Inc()
			return image, nil
		}

		observability.QRAttempts.WithLabelValues(s.Name, "failure").Inc()
		r.logger.Warn("QR strategy failed",
			zap.String("strategy", s.Name),
			zap.String("instance_id", inst.InstanceID),
			zap.Error(err),
		)
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}
	if lastErr == nil {
		lastErr = ErrEmptyResponse
	}
	return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, lastErr)
}

func (r *Resolver) attempt(ctx context.Context, inst provider.Instance, s Strategy) ([]byte, error) {
	attemptCtx := ctx
	if r.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.attemptTimeout)
		defer cancel()
	}

	resp, err := r.client.Get(attemptCtx, inst, s.Path, s.Auth)
	if err != nil {
		return nil, err
	}
	return DecodeResponse(resp)
}

// DecodeResponse extracts image bytes from a provider response, whatever
// encoding it arrived in.
func DecodeResponse(resp *provider.Response) ([]byte, error) {
	if len(resp.Body) == 0 {
		return nil, ErrEmptyResponse
	}
	if IsPNG(resp.Body) || isBinary(resp.ContentType) {
		return resp.Body, nil
	}

	candidate := string(resp.Body)
	var doc map[string]any
	if err := json.Unmarshal(resp.Body, &doc); err == nil {
		candidate = lookupCandidate(doc)
		if candidate == "" {
			return nil, ErrEmptyResponse
		}
	}

	image, err := DecodeCandidate(candidate)
	if err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, ErrEmptyResponse
	}
	return image, nil
}

func lookupCandidate(doc map[string]any) string {
	for _, key := range candidateKeys {
		if v, ok := doc[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func isBinary(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "application/octet-stream")
}

// DataURL renders image bytes as a PNG data URL.
func DataURL(image []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
}
