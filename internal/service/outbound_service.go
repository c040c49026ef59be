package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/adapter"
	"github.com/popeskul/crm-inbox/internal/models"
	"github.com/popeskul/crm-inbox/internal/observability"
	"github.com/popeskul/crm-inbox/internal/provider"
	"github.com/popeskul/crm-inbox/internal/realtime"
	"github.com/popeskul/crm-inbox/internal/repository"
)

// TextSender delivers a text message through the provider.
type TextSender interface {
	SendText(ctx context.Context, inst provider.Instance, phone, text string) (*provider.SendResult, error)
}

// Executor runs a provider call under the circuit breaker.
type Executor interface {
	Execute(ctx context.Context, fn func() error) error
}

type outboundService struct {
	repo           repository.Repository
	credentials    CredentialStore
	sender         TextSender
	breaker        Executor
	publisher      Publisher
	defaultBaseURL string
	logger         *zap.Logger
	now            func() time.Time
}

func NewOutboundService(
	repo repository.Repository,
	credentials CredentialStore,
	sender TextSender,
	breaker Executor,
	publisher Publisher,
	defaultBaseURL string,
	logger *zap.Logger,
) OutboundService {
	return &outboundService{
		repo:           repo,
		credentials:    credentials,
		sender:         sender,
		breaker:        breaker,
		publisher:      publisher,
		defaultBaseURL: defaultBaseURL,
		logger:         logger,
		now:            time.Now,
	}
}

// SendText makes exactly one delivery attempt. On success the message is
// stored as outbound and published like an ingested one.
func (s *outboundService) SendText(ctx context.Context, tenantID, to, text string) (*models.Message, error) {
	contactID := adapter.NormalizeContactID(to)
	if contactID == "" {
		return nil, ErrInvalidContact
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	cfg, err := s.credentials.InstanceConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	inst := providerInstance(cfg, s.defaultBaseURL)

	var result *provider.SendResult
	err = s.breaker.Execute(ctx, func() error {
		var sendErr error
		result, sendErr = s.sender.SendText(ctx, inst, contactID, text)
		return sendErr
	})
	if err != nil {
		observability.OutboundSends.WithLabelValues("failure").Inc()
		s.logger.Error("Failed to send message",
			zap.String("tenant_id", tenantID),
			zap.String("contact_id", contactID),
			zap.Error(err))
		if errors.Is(err, ErrCircuitOpen) || errors.Is(err, provider.ErrMissingToken) || errors.Is(err, provider.ErrMissingInstance) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderSend, err)
	}
	observability.OutboundSends.WithLabelValues("success").Inc()

	msg := models.NewMessage(&models.IncomingMessage{
		ExternalID: result.ExternalID(),
		TenantID:   tenantID,
		ContactID:  contactID,
		Content:    text,
		Timestamp:  s.now().UTC(),
		Direction:  models.DirectionOutbound,
		Kind:       models.KindText,
	})
	if err := s.repo.Message().Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist outbound message: %w", err)
	}

	contact := &models.Contact{ContactID: contactID, TenantID: models.NullString(tenantID)}
	if err := s.repo.Contact().Upsert(ctx, contact); err != nil {
		s.logger.Error("Failed to upsert contact", zap.String("contact_id", contactID), zap.Error(err))
	}

	s.publisher.Publish(realtime.ChannelKey(cfg.InstanceID), realtime.EventMessage, newMessageEvent(msg))

	s.logger.Info("Message sent",
		zap.String("tenant_id", tenantID),
		zap.String("contact_id", contactID),
		zap.String("external_id", msg.ExternalMessageID))
	return msg, nil
}
