package service

import (
	"context"
	"strings"

	"github.com/popeskul/crm-inbox/internal/models"
	"github.com/popeskul/crm-inbox/internal/provider"
	"github.com/popeskul/crm-inbox/internal/qr"
)

// ImageResolver fetches the raw QR image of an instance.
type ImageResolver interface {
	Fetch(ctx context.Context, inst provider.Instance) ([]byte, error)
}

type qrService struct {
	credentials    CredentialStore
	resolver       ImageResolver
	defaultBaseURL string
}

func NewQRService(credentials CredentialStore, resolver ImageResolver, defaultBaseURL string) QRService {
	return &qrService{
		credentials:    credentials,
		resolver:       resolver,
		defaultBaseURL: defaultBaseURL,
	}
}

func (s *qrService) FetchImage(ctx context.Context, tenantID string) ([]byte, error) {
	cfg, err := s.credentials.InstanceConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.resolver.Fetch(ctx, providerInstance(cfg, s.defaultBaseURL))
}

func (s *qrService) DataURL(ctx context.Context, tenantID string) (string, error) {
	image, err := s.FetchImage(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return qr.DataURL(image), nil
}

func providerInstance(cfg *models.InstanceConfig, defaultBaseURL string) provider.Instance {
	baseURL := cfg.BaseURL
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	return provider.Instance{
		BaseURL:    baseURL,
		InstanceID: cfg.InstanceID,
		Token:      cfg.InstanceToken,
		APIKey:     cfg.APIKey,
	}
}
