package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/adapter"
	"github.com/popeskul/crm-inbox/internal/models"
	"github.com/popeskul/crm-inbox/internal/observability"
	"github.com/popeskul/crm-inbox/internal/realtime"
	"github.com/popeskul/crm-inbox/internal/repository"
)

type ingestionService struct {
	repo      repository.Repository
	tenants   TenantResolver
	publisher Publisher
	audit     AuditService
	logger    *zap.Logger
}

func NewIngestionService(
	repo repository.Repository,
	tenants TenantResolver,
	publisher Publisher,
	audit AuditService,
	logger *zap.Logger,
) IngestionService {
	return &ingestionService{
		repo:      repo,
		tenants:   tenants,
		publisher: publisher,
		audit:     audit,
		logger:    logger,
	}
}

// Ingest stores one adapted message. The tenant always comes from the
// instance id; whatever the payload claims is ignored. Duplicate deliveries
// are stored again.
func (s *ingestionService) Ingest(ctx context.Context, req IngestRequest) (*models.Message, error) {
	if req.Message == nil {
		return nil, errors.New("ingest request without message")
	}

	tenantID, err := s.tenants.ResolveTenantByInstanceID(ctx, req.InstanceID)
	if err != nil {
		return nil, err
	}

	in := *req.Message
	in.TenantID = tenantID
	msg := models.NewMessage(&in)

	if err := s.repo.Message().Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}
	observability.IngestedMessages.WithLabelValues(string(msg.Kind), string(msg.Direction)).Inc()

	if msg.ContactID != "" {
		contact := &models.Contact{ContactID: msg.ContactID, TenantID: models.NullString(tenantID)}
		if err := s.repo.Contact().Upsert(ctx, contact); err != nil {
			// the message is already stored; failing here would only make the provider redeliver it
			s.logger.Error("Failed to upsert contact",
				zap.String("contact_id", msg.ContactID),
				zap.String("tenant_id", tenantID),
				zap.Error(err))
		}
	}

	delivered := s.publisher.Publish(realtime.ChannelKey(req.InstanceID), realtime.EventMessage, newMessageEvent(msg))

	s.audit.Record(ctx, &models.DebugRecord{
		RawPayload:        req.Raw,
		InstanceID:        models.NullString(req.InstanceID),
		ExternalMessageID: models.NullString(msg.ExternalMessageID),
		RawPhone:          models.NullString(req.RawPhone),
	})

	s.logger.Info("Message ingested",
		zap.Int64("id", msg.ID),
		zap.String("tenant_id", tenantID),
		zap.String("contact_id", msg.ContactID),
		zap.String("kind", string(msg.Kind)),
		zap.Int("subscribers", delivered))

	return msg, nil
}

// ListConversations groups the tenant's messages by contact. Messages arrive
// oldest first, so conversations keep the order of their first message.
func (s *ingestionService) ListConversations(ctx context.Context, tenantID string) ([]*models.Conversation, error) {
	messages, err := s.repo.Message().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	contacts, err := s.repo.Contact().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		if c.DisplayName.Valid {
			names[c.ContactID] = c.DisplayName.String
		}
	}

	byContact := make(map[string]*models.Conversation)
	conversations := []*models.Conversation{}
	for _, m := range messages {
		conv, ok := byContact[m.ContactID]
		if !ok {
			conv = &models.Conversation{ContactID: m.ContactID, DisplayName: names[m.ContactID]}
			byContact[m.ContactID] = conv
			conversations = append(conversations, conv)
		}
		conv.Messages = append(conv.Messages, m)
		if m.Direction == models.DirectionInbound {
			conv.UnreadCount++
		}
	}

	return conversations, nil
}

func (s *ingestionService) ListMessages(ctx context.Context, tenantID, contactID string) ([]*models.Message, error) {
	contactID = adapter.NormalizeContactID(contactID)
	if contactID == "" {
		return nil, ErrInvalidContact
	}

	messages, err := s.repo.Message().ListByContact(ctx, tenantID, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (s *ingestionService) ListContacts(ctx context.Context, tenantID string) ([]*models.Contact, error) {
	contacts, err := s.repo.Contact().ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (s *ingestionService) UpsertContact(ctx context.Context, tenantID, phone, name string) (*models.Contact, error) {
	contactID := adapter.NormalizeContactID(phone)
	if contactID == "" {
		return nil, ErrInvalidContact
	}

	contact := &models.Contact{
		ContactID:   contactID,
		DisplayName: models.NullString(strings.TrimSpace(name)),
		TenantID:    models.NullString(tenantID),
	}
	if err := s.repo.Contact().Upsert(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to upsert contact: %w", err)
	}

	// read back so blanks that did not overwrite are reported as stored
	stored, err := s.repo.Contact().Get(ctx, contactID)
	if err != nil {
		s.logger.Warn("Failed to read back contact", zap.String("contact_id", contactID), zap.Error(err))
		return contact, nil
	}
	return stored, nil
}

// BackfillMissingTenant assigns tenants to messages stored without one, using
// the tenant recorded on their contact. Safe to run repeatedly.
func (s *ingestionService) BackfillMissingTenant(ctx context.Context, contactID string) (int64, error) {
	if contactID != "" {
		contactID = adapter.NormalizeContactID(contactID)
		if contactID == "" {
			return 0, ErrInvalidContact
		}
	}

	updated, err := s.repo.Message().BackfillTenant(ctx, contactID)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill tenants: %w", err)
	}

	s.logger.Info("Tenant backfill completed",
		zap.String("contact_id", contactID),
		zap.Int64("updated", updated))
	return updated, nil
}
