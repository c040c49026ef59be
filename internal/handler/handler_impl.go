// Package handler provides HTTP request handlers for the application.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/adapter"
	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/config"
	"github.com/popeskul/crm-inbox/internal/middleware"
	"github.com/popeskul/crm-inbox/internal/realtime"
	"github.com/popeskul/crm-inbox/internal/service"
)

const (
	errorCodeInvalidRequest        = "INVALID_REQUEST"
	errorCodeInvalidContact        = "INVALID_CONTACT"
	errorCodeEmptyMessage          = "EMPTY_MESSAGE"
	errorCodeInstanceNotConfigured = "INSTANCE_NOT_CONFIGURED"
	errorCodeQRUnavailable         = "QR_UNAVAILABLE"
	errorCodeCircuitOpen           = "CIRCUIT_OPEN"
	errorCodeProviderError         = "PROVIDER_ERROR"
	errorCodePayloadTooLarge       = "PAYLOAD_TOO_LARGE"
	errorCodeForbiddenChannel      = "FORBIDDEN_CHANNEL"
)

const (
	errorMessageInvalidBody            = "Request body is not valid JSON"
	errorMessageInvalidContact         = "Contact must contain digits"
	errorMessageEmptyMessage           = "Message text is required"
	errorMessageInstanceNotConfigured  = "No provider instance is configured for this tenant"
	errorMessageQRUnavailable          = "QR code is not available from the provider"
	errorMessageCircuitOpen            = "Provider is temporarily unavailable"
	errorMessageProviderError          = "Provider rejected the request"
	errorMessagePayloadTooLarge        = "Webhook payload exceeds the size limit"
	errorMessageForbiddenChannel       = "Channel does not belong to this tenant"
	errorMessageFailedToListData       = "Failed to retrieve data"
	errorMessageFailedToSaveContact    = "Failed to save contact"
	errorMessageFailedToSendMessage    = "Failed to send message"
	errorMessageFailedToBackfill       = "Failed to backfill messages"
	errorMessageFailedToReadAuditTrail = "Failed to read debug records"
)

// Streamer is the part of the realtime hub the stream endpoint uses.
type Streamer interface {
	Subscribe(key string) *realtime.Subscription
	Unsubscribe(sub *realtime.Subscription)
}

type Handler struct {
	service  *service.Service
	streamer Streamer
	adapter  *adapter.Adapter
	webhook  config.WebhookConfig
	realtime config.RealtimeConfig
	logger   *zap.Logger
}

// NewHandler creates a new handler instance that implements api.ServerInterface.
func NewHandler(
	svc *service.Service,
	streamer Streamer,
	payloadAdapter *adapter.Adapter,
	cfg *config.Config,
	logger *zap.Logger,
) api.ServerInterface {
	return &Handler{
		service:  svc,
		streamer: streamer,
		adapter:  payloadAdapter,
		webhook:  cfg.Webhook,
		realtime: cfg.Realtime,
		logger:   logger,
	}
}

// HealthCheck implements api.ServerInterface.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health.GetHealth(r.Context())

	response := api.HealthResponse{
		Status:    health.Status,
		Timestamp: time.Now(),
	}

	if health.SchedulerStatus != "" {
		status := health.SchedulerStatus
		response.SchedulerStatus = &status
	}

	if health.DatabaseStatus != "" {
		status := health.DatabaseStatus
		response.DatabaseStatus = &status
	}

	if health.RedisStatus != "" {
		status := health.RedisStatus
		response.RedisStatus = &status
	}

	if health.CircuitBreakerStatus != "" {
		response.CircuitBreakerStatus = &health.CircuitBreakerStatus
	}

	if health.CircuitBreakerState != "" {
		state := health.CircuitBreakerState
		response.CircuitBreakerState = &state
	}

	subscribers := health.Subscribers
	response.Subscribers = &subscribers

	switch health.Status {
	case api.Unhealthy:
		render.Status(r, http.StatusServiceUnavailable)
	case api.Degraded:
		// still 200: ingestion keeps working
		response.Status = api.Degraded
	}

	render.JSON(w, r, response)
}

// requireTenant returns the caller's tenant, or writes 401 and returns false.
func (h *Handler) requireTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		h.sendError(w, r, http.StatusUnauthorized, middleware.ErrorCodeTenantRequired, middleware.ErrorMessageTenantRequired)
		return "", false
	}
	return tenantID, true
}

func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	middleware.WriteError(w, r, statusCode, errorCode, message)
}

func (h *Handler) logError(r *http.Request, msg string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("tenant_id", middleware.GetTenantID(r.Context())),
		zap.Error(err))
	h.logger.Error(msg, fields...)
}
