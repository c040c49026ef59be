package service

import (
	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/models"
)

type HealthStatus struct {
	Status               api.HealthResponseStatus              `json:"status"`
	SchedulerStatus      api.HealthResponseSchedulerStatus     `json:"scheduler_status"`
	DatabaseStatus       api.HealthResponseDatabaseStatus      `json:"database_status"`
	RedisStatus          api.HealthResponseRedisStatus         `json:"redis_status"`
	CircuitBreakerStatus string                                `json:"circuit_breaker_status,omitempty"`
	CircuitBreakerState  api.HealthResponseCircuitBreakerState `json:"circuit_breaker_state,omitempty"`
	Subscribers          int                                   `json:"subscribers"`
}

// IngestRequest is one adapted webhook callback.
type IngestRequest struct {
	InstanceID string
	Message    *models.IncomingMessage
	// Raw is the callback body as received, kept in the audit log.
	Raw      []byte
	RawPhone string
}

// MessageEvent is the realtime payload published for every stored message.
type MessageEvent struct {
	Type    string      `json:"type"`
	Payload api.Message `json:"payload"`
}

func newMessageEvent(m *models.Message) MessageEvent {
	return MessageEvent{Type: "message", Payload: m.ToAPI()}
}
