// Package models defines data structures used throughout the application.
package models

import (
	"database/sql"
	"time"

	"github.com/popeskul/crm-inbox/internal/api"
)

type MessageKind = api.MessageKind

const (
	KindText     = api.MessageKindText
	KindImage    = api.MessageKindImage
	KindAudio    = api.MessageKindAudio
	KindVideo    = api.MessageKindVideo
	KindDocument = api.MessageKindDocument
	KindSticker  = api.MessageKindSticker
	KindList     = api.MessageKindList
	KindUnknown  = api.MessageKindUnknown
)

type Direction = api.MessageDirection

const (
	DirectionInbound  = api.Inbound
	DirectionOutbound = api.Outbound
)

type DeliveryStatus = api.DeliveryStatus

const (
	StatusSent     = api.DeliveryStatusSent
	StatusReceived = api.DeliveryStatusReceived
)

// StatusFor derives the delivery status implied by a message direction.
func StatusFor(d Direction) DeliveryStatus {
	if d == DirectionOutbound {
		return StatusSent
	}
	return StatusReceived
}

// IncomingMessage is a provider callback normalized to the canonical model.
// TenantID is always resolved by the service, never read from the payload.
type IncomingMessage struct {
	ExternalID     string
	TenantID       string
	ContactID      string
	Content        string
	Timestamp      time.Time
	Direction      Direction
	Kind           MessageKind
	DeliveryStatus DeliveryStatus
}

// Message represents a message in the database.
type Message struct {
	ID                int64          `db:"id" json:"id"`
	ExternalMessageID string         `db:"external_message_id" json:"external_message_id"`
	TenantID          sql.NullString `db:"tenant_id" json:"tenant_id,omitempty"`
	ContactID         string         `db:"contact_id" json:"contact_id"`
	Content           string         `db:"content" json:"content"`
	SentAt            time.Time      `db:"sent_at" json:"sent_at"`
	Direction         Direction      `db:"direction" json:"direction"`
	Kind              MessageKind    `db:"kind" json:"kind"`
	DeliveryStatus    DeliveryStatus `db:"delivery_status" json:"delivery_status"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
}

// NewMessage builds a storable row from a normalized message.
func NewMessage(in *IncomingMessage) *Message {
	m := &Message{
		ExternalMessageID: in.ExternalID,
		ContactID:         in.ContactID,
		Content:           in.Content,
		SentAt:            in.Timestamp,
		Direction:         in.Direction,
		Kind:              in.Kind,
		DeliveryStatus:    in.DeliveryStatus,
	}
	if in.TenantID != "" {
		m.TenantID = sql.NullString{String: in.TenantID, Valid: true}
	}
	if m.Kind == "" {
		m.Kind = KindText
	}
	if m.DeliveryStatus == "" {
		m.DeliveryStatus = StatusFor(m.Direction)
	}
	return m
}

// ToAPI converts the row into its wire representation.
func (m *Message) ToAPI() api.Message {
	out := api.Message{
		Id:        m.ID,
		ContactId: m.ContactID,
		Content:   m.Content,
		Timestamp: m.SentAt,
		Direction: m.Direction,
		Kind:      m.Kind,
		Status:    m.DeliveryStatus,
	}
	if m.ExternalMessageID != "" {
		ext := m.ExternalMessageID
		out.ExternalId = &ext
	}
	if m.TenantID.Valid {
		tenant := m.TenantID.String
		out.TenantId = &tenant
	}
	return out
}
