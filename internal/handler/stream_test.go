package handler_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/popeskul/crm-inbox/internal/api"
	"github.com/popeskul/crm-inbox/internal/middleware"
	"github.com/popeskul/crm-inbox/internal/models"
	"github.com/popeskul/crm-inbox/internal/realtime"
	"github.com/popeskul/crm-inbox/internal/service"
)

func streamServer(t *testing.T, f *fixture) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(middleware.Tenant(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var params api.StreamParams
		if key := r.URL.Query().Get("channelKey"); key != "" {
			params.ChannelKey = &key
		}
		f.h.Stream(w, r, params)
	})))
	t.Cleanup(server.Close)
	return server
}

// readFrame returns the lines of the next SSE frame.
func readFrame(t *testing.T, reader *bufio.Reader) []string {
	t.Helper()
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			return lines
		}
		lines = append(lines, line)
	}
}

func openStream(t *testing.T, url, tenantID string) (*http.Response, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	if tenantID != "" {
		req.Header.Set(middleware.TenantIDHeader, tenantID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp, cancel
}

func TestHandler_Stream_DeliversEvents(t *testing.T) {
	f := newFixture(t)
	server := streamServer(t, f)

	resp, cancel := openStream(t, server.URL+"/stream?channelKey=instance:3C2A", "")
	defer cancel()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, []string{"retry: 3000"}, readFrame(t, reader))

	init := readFrame(t, reader)
	require.Len(t, init, 3)
	assert.True(t, strings.HasPrefix(init[0], "id: "))
	assert.Equal(t, "event: init", init[1])
	assert.Contains(t, init[2], `"ok":true`)

	key := realtime.ChannelKey("3C2A")
	require.Equal(t, 1, f.hub.Count(key))
	f.hub.Publish(key, realtime.EventMessage, map[string]any{"type": "message", "payload": map[string]any{"id": 5}})

	frame := readFrame(t, reader)
	require.Len(t, frame, 3)
	assert.Equal(t, "event: message", frame[1])
	assert.Equal(t, `data: {"payload":{"id":5},"type":"message"}`, frame[2])

	cancel()
	assert.Eventually(t, func() bool { return f.hub.Count(key) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_Stream_TenantChannel(t *testing.T) {
	f := newFixture(t)
	f.credentials.EXPECT().InstanceConfig(gomock.Any(), "tenant-a").
		Return(&models.InstanceConfig{TenantID: "tenant-a", InstanceID: "3C2A"}, nil)
	server := streamServer(t, f)

	resp, cancel := openStream(t, server.URL+"/stream", "tenant-a")
	defer cancel()

	reader := bufio.NewReader(resp.Body)
	readFrame(t, reader)
	readFrame(t, reader)

	assert.Equal(t, 1, f.hub.Count(realtime.ChannelKey("3C2A")))
	assert.Zero(t, f.hub.Count(realtime.GlobalKey))
}

func TestHandler_Stream_ForeignChannelRejected(t *testing.T) {
	f := newFixture(t)
	f.credentials.EXPECT().InstanceConfig(gomock.Any(), "tenant-a").
		Return(&models.InstanceConfig{TenantID: "tenant-a", InstanceID: "3C2A"}, nil)

	req := withTenant(httptest.NewRequest(http.MethodGet, "/stream", nil), "tenant-a")
	key := "instance:someone-else"
	w := httptest.NewRecorder()

	f.h.Stream(w, req, api.StreamParams{ChannelKey: &key})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, f.hub.Total())
}

func TestHandler_Stream_TenantWithoutInstance(t *testing.T) {
	f := newFixture(t)
	f.credentials.EXPECT().InstanceConfig(gomock.Any(), "tenant-b").Return(nil, service.ErrInstanceNotConfigured)
	server := streamServer(t, f)

	resp, cancel := openStream(t, server.URL+"/stream", "tenant-b")
	defer cancel()

	reader := bufio.NewReader(resp.Body)
	readFrame(t, reader)
	readFrame(t, reader)

	assert.Equal(t, 1, f.hub.Count(realtime.GlobalKey))
}
