package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/popeskul/crm-inbox/internal/adapter"
	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/config"
	"github.com/popeskul/crm-inbox/internal/handler"
	"github.com/popeskul/crm-inbox/internal/middleware"
	"github.com/popeskul/crm-inbox/internal/observability"
	"github.com/popeskul/crm-inbox/internal/realtime"
	"github.com/popeskul/crm-inbox/internal/service"
	"github.com/popeskul/crm-inbox/internal/service/mocks"
)

func newTestRouter(t *testing.T, mutate ...func(*middleware.Config)) (http.Handler, *mocks.MockHealthService, *mocks.MockAuditService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	health := mocks.NewMockHealthService(ctrl)
	audit := mocks.NewMockAuditService(ctrl)

	logger := zap.NewNop()
	hub := realtime.NewHub(8, logger)
	svc := &service.Service{Health: health, Audit: audit}
	h := handler.NewHandler(svc, hub, adapter.New(), &config.Config{}, logger)

	registry := prometheus.NewRegistry()
	observability.Register(registry)

	mw := &middleware.Config{
		Logger:         logger,
		RateLimit:      rate.Limit(100),
		RateLimitBurst: 100,
		CORS:           middleware.DefaultCORSConfig(),
	}
	for _, fn := range mutate {
		fn(mw)
	}
	return setupRouter(h, mw, registry), health, audit
}

func TestRouter_HealthThroughMiddleware(t *testing.T) {
	router, health, _ := newTestRouter(t)
	health.EXPECT().GetHealth(gomock.Any()).Return(&service.HealthStatus{Status: api.Healthy})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_TenantRequired(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), middleware.ErrorCodeTenantRequired)
}

func TestRouter_Metrics(t *testing.T) {
	router, health, _ := newTestRouter(t)
	health.EXPECT().GetHealth(gomock.Any()).Return(&service.HealthStatus{Status: api.Healthy})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `route="/health"`), "route pattern label missing")
}

func TestRouter_WebhookBurstIsNotThrottled(t *testing.T) {
	router, _, audit := newTestRouter(t, func(c *middleware.Config) {
		c.RateLimit = rate.Limit(1)
		c.RateLimitBurst = 2
		c.RequestTimeout = time.Second
	})
	audit.EXPECT().Record(gomock.Any(), gomock.Any()).Times(5)

	body := `{"type":"PresenceChatCallback","instanceId":"3C2A","phone":"5511","status":"AVAILABLE"}`
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.7:443"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, "callback %d", i)
		assert.Contains(t, w.Body.String(), `"ignored":true`)
	}
}
