package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/adapter"
	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/models"
	"github.com/popeskul/crm-inbox/internal/observability"
	"github.com/popeskul/crm-inbox/internal/service"
)

const (
	reasonEmptyPayload       = "empty-payload"
	reasonFromMe             = "from-me"
	reasonUnknownInstance    = "unknown-instance"
	reasonStorageUnavailable = "storage-unavailable"

	defaultMaxBodyBytes = 1 << 20
)

// ReceiveWebhook implements api.ServerInterface.
//
// Anything the provider should not redeliver is acknowledged with 200, even
// when nothing was stored. Only an unmapped instance (400) and a storage fault
// (500) are reported as failures.
func (h *Handler) ReceiveWebhook(w http.ResponseWriter, r *http.Request, params api.ReceiveWebhookParams) {
	limit := h.webhook.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			observability.WebhookEvents.WithLabelValues("too-large").Inc()
			h.sendError(w, r, http.StatusRequestEntityTooLarge, errorCodePayloadTooLarge, errorMessagePayloadTooLarge)
			return
		}
	}

	queryInstance := ""
	if params.InstanceId != nil {
		queryInstance = *params.InstanceId
	}

	if err != nil {
		h.logger.Warn("Failed to read webhook body", zap.String("instance_id", queryInstance), zap.Error(err))
		h.acknowledgeIgnored(w, r, raw, queryInstance, "", adapter.ReasonMalformed)
		return
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		observability.WebhookEvents.WithLabelValues(reasonEmptyPayload).Inc()
		h.logger.Warn("Webhook received with empty body", zap.String("instance_id", queryInstance))
		render.JSON(w, r, api.WebhookResponse{Success: false, Reason: strPtr(reasonEmptyPayload)})
		return
	}

	body, err := decodeWebhookBody(raw)
	if err != nil {
		h.acknowledgeIgnored(w, r, raw, queryInstance, "", adapter.ReasonMalformed)
		return
	}

	instanceID := adapter.InstanceID(body)
	if instanceID == "" {
		instanceID = queryInstance
	}
	rawPhone := adapter.RawPhone(body)

	result := h.adapter.Adapt(body)
	if result.Message == nil {
		h.acknowledgeIgnored(w, r, raw, instanceID, rawPhone, result.Reason)
		return
	}
	if h.webhook.IgnoreFromMe && result.Message.Direction == models.DirectionOutbound {
		h.acknowledgeIgnored(w, r, raw, instanceID, rawPhone, reasonFromMe)
		return
	}

	msg, err := h.service.Ingestion.Ingest(r.Context(), service.IngestRequest{
		InstanceID: instanceID,
		Message:    result.Message,
		Raw:        raw,
		RawPhone:   rawPhone,
	})
	if err != nil {
		h.recordRaw(r, raw, instanceID, result.Message.ExternalID, rawPhone)

		if errors.Is(err, service.ErrUnknownInstance) {
			observability.WebhookEvents.WithLabelValues(reasonUnknownInstance).Inc()
			h.logger.Warn("Webhook for unknown instance", zap.String("instance_id", instanceID))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, api.WebhookResponse{Success: false, Reason: strPtr(reasonUnknownInstance)})
			return
		}

		observability.WebhookEvents.WithLabelValues(reasonStorageUnavailable).Inc()
		h.logError(r, "Failed to ingest webhook", err, zap.String("instance_id", instanceID))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, api.WebhookResponse{Success: false, Reason: strPtr(reasonStorageUnavailable)})
		return
	}

	observability.WebhookEvents.WithLabelValues("ingested").Inc()

	adapted := result.Variant == adapter.VariantProvider
	id := msg.ID
	render.JSON(w, r, api.WebhookResponse{
		Success:   true,
		Adapted:   &adapted,
		MessageId: &id,
	})
}

func (h *Handler) acknowledgeIgnored(w http.ResponseWriter, r *http.Request, raw []byte, instanceID, rawPhone, reason string) {
	observability.WebhookEvents.WithLabelValues(reason).Inc()
	h.recordRaw(r, raw, instanceID, "", rawPhone)

	h.logger.Debug("Webhook ignored",
		zap.String("instance_id", instanceID),
		zap.String("reason", reason))

	ignored := true
	render.JSON(w, r, api.WebhookResponse{
		Success: true,
		Ignored: &ignored,
		Reason:  strPtr(reason),
	})
}

func (h *Handler) recordRaw(r *http.Request, raw []byte, instanceID, externalID, rawPhone string) {
	h.service.Audit.Record(r.Context(), &models.DebugRecord{
		RawPayload:        raw,
		InstanceID:        models.NullString(instanceID),
		ExternalMessageID: models.NullString(externalID),
		RawPhone:          models.NullString(rawPhone),
	})
}

// decodeWebhookBody keeps numbers as json.Number so large ids and epoch
// timestamps survive untouched. Anything but a JSON object is malformed.
func decodeWebhookBody(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("webhook body is null")
	}
	return body, nil
}

func strPtr(s string) *string {
	return &s
}
