package service

import "errors"

var (
	// ErrUnknownInstance means the provider instance is not mapped to a tenant.
	ErrUnknownInstance = errors.New("unknown provider instance")
	// ErrInstanceNotConfigured means the tenant has no provider credentials.
	ErrInstanceNotConfigured = errors.New("provider instance not configured for tenant")
	ErrCircuitOpen           = errors.New("service unavailable: circuit breaker is open")
	ErrInvalidContact        = errors.New("contact id must contain digits")
	ErrEmptyMessage          = errors.New("message text is empty")
	ErrProviderSend          = errors.New("provider rejected the message")
)
