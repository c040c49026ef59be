package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/popeskul/crm-inbox/internal/api"
)

// Error codes written by middleware and by handlers that depend on it.
const (
	ErrorCodeInternal          = "INTERNAL_ERROR"
	ErrorCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrorCodeRequestTimeout    = "REQUEST_TIMEOUT"
	ErrorCodeTenantRequired    = "TENANT_REQUIRED"
)

const (
	ErrorMessageInternal          = "An internal error occurred"
	ErrorMessageRateLimitExceeded = "Too many requests"
	ErrorMessageRequestTimeout    = "Request timeout"
	ErrorMessageTenantRequired    = "X-Tenant-ID header is required"
)

// WriteError renders the API error body with the given status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	now := time.Now().UTC()
	render.Status(r, status)
	render.JSON(w, r, api.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: &now,
	})
}
