package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/popeskul/crm-inbox/internal/models"
	"github.com/popeskul/crm-inbox/internal/provider"
	"github.com/popeskul/crm-inbox/internal/qr"
	"github.com/popeskul/crm-inbox/internal/service"
	servicemocks "github.com/popeskul/crm-inbox/internal/service/mocks"
)

func TestQRService_DataURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":"QUFB"}`))
	}))
	defer server.Close()

	ctrl := gomock.NewController(t)
	credentials := servicemocks.NewMockCredentialStore(ctrl)
	credentials.EXPECT().InstanceConfig(gomock.Any(), "tenant-a").Return(&models.InstanceConfig{
		TenantID:      "tenant-a",
		InstanceID:    "inst-1",
		InstanceToken: "tok",
		APIKey:        "key",
	}, nil)

	resolver := qr.NewResolver(provider.NewClient(time.Second, zap.NewNop()), nil, time.Second, zap.NewNop())
	svc := service.NewQRService(credentials, resolver, server.URL)

	value, err := svc.DataURL(context.Background(), "tenant-a")

	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,QUFB", value)
	assert.Equal(t, "/instances/inst-1/token/tok/qr-code/image", gotPath)
}

func TestQRService_InstanceBaseURLWins(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0})
	}))
	defer server.Close()

	ctrl := gomock.NewController(t)
	credentials := servicemocks.NewMockCredentialStore(ctrl)
	credentials.EXPECT().InstanceConfig(gomock.Any(), "tenant-a").Return(&models.InstanceConfig{
		InstanceID:    "inst-1",
		InstanceToken: "tok",
		APIKey:        "key",
		BaseURL:       server.URL + "/instances/inst-1",
	}, nil)

	resolver := qr.NewResolver(provider.NewClient(time.Second, zap.NewNop()), nil, time.Second, zap.NewNop())
	svc := service.NewQRService(credentials, resolver, "http://127.0.0.1:1")

	image, err := svc.FetchImage(context.Background(), "tenant-a")

	require.NoError(t, err)
	assert.True(t, qr.IsPNG(image))
	assert.Equal(t, 1, hits)
}

func TestQRService_NotConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	credentials := servicemocks.NewMockCredentialStore(ctrl)
	credentials.EXPECT().InstanceConfig(gomock.Any(), "tenant-x").Return(nil, service.ErrInstanceNotConfigured)

	resolver := qr.NewResolver(provider.NewClient(time.Second, zap.NewNop()), nil, time.Second, zap.NewNop())
	svc := service.NewQRService(credentials, resolver, "")

	_, err := svc.DataURL(context.Background(), "tenant-x")

	assert.ErrorIs(t, err, service.ErrInstanceNotConfigured)
}
