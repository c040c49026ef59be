package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/popeskul/crm-inbox/internal/api"
)

// Contact is keyed by its normalized phone digits.
type Contact struct {
	ContactID   string         `db:"contact_id" json:"contact_id"`
	DisplayName sql.NullString `db:"display_name" json:"display_name,omitempty"`
	TenantID    sql.NullString `db:"tenant_id" json:"tenant_id,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

func (c *Contact) ToAPI() api.Contact {
	out := api.Contact{
		Id:        c.ContactID,
		UpdatedAt: c.UpdatedAt,
	}
	if c.DisplayName.Valid {
		name := c.DisplayName.String
		out.Name = &name
	}
	if c.TenantID.Valid {
		tenant := c.TenantID.String
		out.TenantId = &tenant
	}
	return out
}

// Conversation groups the messages exchanged with one contact.
type Conversation struct {
	ContactID   string
	DisplayName string
	Messages    []*Message
	UnreadCount int
}

// LastMessage returns the newest message, or nil for an empty conversation.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

func (c *Conversation) ToAPI() api.Conversation {
	out := api.Conversation{
		ContactId:   c.ContactID,
		UnreadCount: c.UnreadCount,
		Messages:    make([]api.Message, 0, len(c.Messages)),
	}
	if c.DisplayName != "" {
		name := c.DisplayName
		out.DisplayName = &name
	}
	for _, m := range c.Messages {
		out.Messages = append(out.Messages, m.ToAPI())
	}
	if last := c.LastMessage(); last != nil {
		lm := last.ToAPI()
		out.LastMessage = &lm
	}
	return out
}

// DebugRecord is one raw provider callback kept for troubleshooting.
type DebugRecord struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	ReceivedAt        time.Time      `db:"received_at" json:"received_at"`
	RawPayload        []byte         `db:"raw_payload" json:"-"`
	InstanceID        sql.NullString `db:"instance_id" json:"instance_id,omitempty"`
	ExternalMessageID sql.NullString `db:"external_message_id" json:"external_message_id,omitempty"`
	RawPhone          sql.NullString `db:"raw_phone" json:"raw_phone,omitempty"`
}

func (d *DebugRecord) ToAPI() api.DebugRecord {
	out := api.DebugRecord{
		Id:         d.ID,
		ReceivedAt: d.ReceivedAt,
	}
	if d.InstanceID.Valid {
		v := d.InstanceID.String
		out.InstanceId = &v
	}
	if d.ExternalMessageID.Valid {
		v := d.ExternalMessageID.String
		out.MessageId = &v
	}
	if d.RawPhone.Valid {
		v := d.RawPhone.String
		out.Phone = &v
	}
	return out
}

// InstanceConfig holds a tenant's provider instance credentials.
type InstanceConfig struct {
	ID            int64     `db:"id" json:"id"`
	TenantID      string    `db:"tenant_id" json:"tenant_id"`
	InstanceID    string    `db:"instance_id" json:"instance_id"`
	BaseURL       string    `db:"base_url" json:"base_url"`
	InstanceToken string    `db:"instance_token" json:"-"`
	APIKey        string    `db:"api_key" json:"-"`
	WebhookURL    string    `db:"webhook_url" json:"webhook_url"`
	Connected     bool      `db:"connected" json:"connected"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// NullString wraps s, treating blank as NULL.
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
