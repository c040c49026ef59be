package middleware

import (
	"context"
	"net/http"
	"strings"
)

const (
	TenantIDKey    contextKey = "tenantID"
	TenantIDHeader string     = "X-Tenant-ID"
)

// Tenant copies the caller's tenant header into the request context. It never
// rejects a request; handlers that need a tenant check GetTenantID.
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := strings.TrimSpace(r.Header.Get(TenantIDHeader))
		if tenantID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), TenantIDKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetTenantID(ctx context.Context) string {
	if tenantID, ok := ctx.Value(TenantIDKey).(string); ok {
		return tenantID
	}
	return ""
}
