package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/middleware"
	"github.com/popeskul/crm-inbox/internal/realtime"
	"github.com/popeskul/crm-inbox/internal/service"
)

const (
	defaultHeartbeat   = 25 * time.Second
	defaultRetryMillis = 3000
)

// Stream implements api.ServerInterface.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request, params api.StreamParams) {
	key, ok := h.resolveChannel(w, r, params)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	// the server write timeout would otherwise cut long-lived streams
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn("Failed to clear write deadline", zap.Error(err))
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	retry := h.realtime.RetryMillis
	if retry <= 0 {
		retry = defaultRetryMillis
	}
	if _, err := fmt.Fprintf(w, "retry: %d\n\n", retry); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.logger.Warn("Stream cannot be flushed", zap.Error(err))
		return
	}

	sub := h.streamer.Subscribe(key)
	defer h.streamer.Unsubscribe(sub)

	heartbeat := time.Duration(h.realtime.HeartbeatSeconds) * time.Second
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	h.logger.Debug("Stream opened",
		zap.String("channel", key),
		zap.String("request_id", middleware.GetRequestID(r.Context())))

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done():
			// removed by the hub after a failed delivery
			return
		case ev := <-sub.Events():
			if err := writeEvent(w, ev); err != nil {
				h.logger.Debug("Stream write failed", zap.String("channel", key), zap.Error(err))
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// resolveChannel picks the channel a caller may listen on. A tenant always
// listens on its own instance channel; without a tenant the requested key is
// used as-is.
func (h *Handler) resolveChannel(w http.ResponseWriter, r *http.Request, params api.StreamParams) (string, bool) {
	requested := ""
	if params.ChannelKey != nil {
		requested = strings.TrimSpace(*params.ChannelKey)
	}

	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		if requested == "" {
			return realtime.GlobalKey, true
		}
		return requested, true
	}

	own := realtime.GlobalKey
	cfg, err := h.service.Credentials.InstanceConfig(r.Context(), tenantID)
	switch {
	case err == nil:
		own = realtime.ChannelKey(cfg.InstanceID)
	case errors.Is(err, service.ErrInstanceNotConfigured):
	default:
		h.logError(r, "Failed to resolve stream channel", err)
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, middleware.ErrorMessageInternal)
		return "", false
	}

	if requested != "" && requested != own {
		h.sendError(w, r, http.StatusForbidden, errorCodeForbiddenChannel, errorMessageForbiddenChannel)
		return "", false
	}
	return own, true
}

func writeEvent(w http.ResponseWriter, ev realtime.Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Name, data)
	return err
}
