package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/middleware"
	"github.com/popeskul/crm-inbox/internal/service"
)

// ListConversations implements api.ServerInterface.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	conversations, err := h.service.Ingestion.ListConversations(r.Context(), tenantID)
	if err != nil {
		h.logError(r, "Failed to list conversations", err)
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToListData)
		return
	}

	response := api.ConversationListResponse{Conversations: make([]api.Conversation, 0, len(conversations))}
	for _, c := range conversations {
		response.Conversations = append(response.Conversations, c.ToAPI())
	}
	render.JSON(w, r, response)
}

// ListMessages implements api.ServerInterface.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request, contactId string) {
	tenantID, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	messages, err := h.service.Ingestion.ListMessages(r.Context(), tenantID, contactId)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContact) {
			h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidContact, errorMessageInvalidContact)
			return
		}
		h.logError(r, "Failed to list messages", err, zap.String("contact_id", contactId))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToListData)
		return
	}

	response := api.MessageListResponse{Messages: make([]api.Message, 0, len(messages))}
	for _, m := range messages {
		response.Messages = append(response.Messages, m.ToAPI())
	}
	render.JSON(w, r, response)
}

// ListContacts implements api.ServerInterface.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	contacts, err := h.service.Ingestion.ListContacts(r.Context(), tenantID)
	if err != nil {
		h.logError(r, "Failed to list contacts", err)
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToListData)
		return
	}

	response := api.ContactListResponse{Contacts: make([]api.Contact, 0, len(contacts))}
	for _, c := range contacts {
		response.Contacts = append(response.Contacts, c.ToAPI())
	}
	render.JSON(w, r, response)
}

// UpsertContact implements api.ServerInterface.
func (h *Handler) UpsertContact(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	var req api.UpsertContactRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest, errorMessageInvalidBody)
		return
	}

	phone := deref(req.Phone)
	if phone == "" {
		phone = deref(req.Id)
	}

	contact, err := h.service.Ingestion.UpsertContact(r.Context(), tenantID, phone, deref(req.Name))
	if err != nil {
		if errors.Is(err, service.ErrInvalidContact) {
			h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidContact, errorMessageInvalidContact)
			return
		}
		h.logError(r, "Failed to upsert contact", err)
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToSaveContact)
		return
	}

	render.JSON(w, r, contact.ToAPI())
}

// SendMessage implements api.ServerInterface.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	var req api.SendMessageRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidRequest, errorMessageInvalidBody)
		return
	}

	msg, err := h.service.Outbound.SendText(r.Context(), tenantID, req.To, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidContact):
			h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidContact, errorMessageInvalidContact)
		case errors.Is(err, service.ErrEmptyMessage):
			h.sendError(w, r, http.StatusBadRequest, errorCodeEmptyMessage, errorMessageEmptyMessage)
		case isNotConfigured(err):
			h.sendError(w, r, http.StatusConflict, errorCodeInstanceNotConfigured, errorMessageInstanceNotConfigured)
		case errors.Is(err, service.ErrCircuitOpen):
			h.sendError(w, r, http.StatusServiceUnavailable, errorCodeCircuitOpen, errorMessageCircuitOpen)
		case errors.Is(err, service.ErrProviderSend):
			h.sendError(w, r, http.StatusBadGateway, errorCodeProviderError, errorMessageProviderError)
		default:
			h.logError(r, "Failed to send message", err)
			h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToSendMessage)
		}
		return
	}

	render.JSON(w, r, api.SendMessageResponse{Success: true, Message: msg.ToAPI()})
}

// BackfillMessages implements api.ServerInterface.
func (h *Handler) BackfillMessages(w http.ResponseWriter, r *http.Request, params api.BackfillMessagesParams) {
	if _, ok := h.requireTenant(w, r); !ok {
		return
	}

	updated, err := h.service.Ingestion.BackfillMissingTenant(r.Context(), deref(params.ContactId))
	if err != nil {
		if errors.Is(err, service.ErrInvalidContact) {
			h.sendError(w, r, http.StatusBadRequest, errorCodeInvalidContact, errorMessageInvalidContact)
			return
		}
		h.logError(r, "Failed to backfill messages", err)
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToBackfill)
		return
	}

	render.JSON(w, r, api.BackfillResponse{Updated: int(updated)})
}

// GetDebugLast implements api.ServerInterface.
func (h *Handler) GetDebugLast(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireTenant(w, r); !ok {
		return
	}

	records, err := h.service.Audit.Latest(r.Context(), 0)
	if err != nil {
		h.logError(r, "Failed to read debug records", err)
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToReadAuditTrail)
		return
	}

	response := api.DebugListResponse{Records: make([]api.DebugRecord, 0, len(records))}
	for _, rec := range records {
		response.Records = append(response.Records, rec.ToAPI())
	}
	render.JSON(w, r, response)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func tenantOf(r *http.Request) string {
	return middleware.GetTenantID(r.Context())
}
