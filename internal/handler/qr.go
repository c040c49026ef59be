package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/provider"
	"github.com/popeskul/crm-inbox/internal/service"
)

// GetQrValue implements api.ServerInterface.
func (h *Handler) GetQrValue(w http.ResponseWriter, r *http.Request) {
	h.qrValue(w, r)
}

// PostQrValue implements api.ServerInterface.
func (h *Handler) PostQrValue(w http.ResponseWriter, r *http.Request) {
	h.qrValue(w, r)
}

func (h *Handler) qrValue(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	value, err := h.service.QR.DataURL(r.Context(), tenantID)
	if err != nil {
		h.sendQRError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	render.JSON(w, r, api.QrValueResponse{Value: value})
}

// GetQrImage implements api.ServerInterface.
func (h *Handler) GetQrImage(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	image, err := h.service.QR.FetchImage(r.Context(), tenantID)
	if err != nil {
		h.sendQRError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(image)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(image); err != nil {
		h.logger.Debug("Failed to write QR image", zap.Error(err))
	}
}

func (h *Handler) sendQRError(w http.ResponseWriter, r *http.Request, err error) {
	if isNotConfigured(err) {
		h.sendError(w, r, http.StatusConflict, errorCodeInstanceNotConfigured, errorMessageInstanceNotConfigured)
		return
	}

	h.logger.Warn("QR code unavailable",
		zap.String("tenant_id", tenantOf(r)),
		zap.Error(err))
	h.sendError(w, r, http.StatusServiceUnavailable, errorCodeQRUnavailable, errorMessageQRUnavailable)
}

// isNotConfigured reports errors caused by missing tenant credentials rather
// than by the provider.
func isNotConfigured(err error) bool {
	return errors.Is(err, service.ErrInstanceNotConfigured) ||
		errors.Is(err, provider.ErrMissingToken) ||
		errors.Is(err, provider.ErrMissingInstance)
}
