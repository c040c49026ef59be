package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

// StatusError is returned for any non-2xx provider response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider responded with status %d", e.StatusCode)
}

// Response is a fully read provider response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Get issues a GET against an instance endpoint. Non-2xx responses are
// returned as *StatusError.
func (c *Client) Get(ctx context.Context, inst Instance, path string, auth Auth) (*Response, error) {
	return c.do(ctx, http.MethodGet, inst, path, nil, auth)
}

func (c *Client) do(ctx context.Context, method string, inst Instance, path string, payload any, auth Auth) (*Response, error) {
	endpoint, err := inst.Endpoint(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := inst.applyAuth(req.Header, auth); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("Failed to close response body", zap.Error(err))
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: strings.ToLower(resp.Header.Get("Content-Type")),
		Body:        data,
	}, nil
}

type sendTextRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// SendResult holds the identifiers the gateway assigns to an accepted message.
type SendResult struct {
	ZaapID    string `json:"zaapId"`
	MessageID string `json:"messageId"`
	ID        string `json:"id"`
}

// ExternalID returns the most specific identifier present.
func (r *SendResult) ExternalID() string {
	for _, id := range []string{r.MessageID, r.ID, r.ZaapID} {
		if id != "" {
			return id
		}
	}
	return ""
}

// SendText delivers a plain text message. phone must already be digits only.
func (c *Client) SendText(ctx context.Context, inst Instance, phone, text string) (*SendResult, error) {
	resp, err := c.do(ctx, http.MethodPost, inst, "send-text", sendTextRequest{Phone: phone, Message: text}, AuthBestEffort)
	if err != nil {
		return nil, err
	}

	var result SendResult
	if len(bytes.TrimSpace(resp.Body)) > 0 {
		if err := json.Unmarshal(resp.Body, &result); err != nil {
			c.logger.Warn("Unexpected send-text response body", zap.Error(err))
		}
	}
	return &result, nil
}
