// Package provider talks to the messaging gateway that hosts tenant instances.
package provider

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultBaseURL    = "https://api.z-api.io"
	HeaderClientToken = "Client-Token"
)

var (
	ErrMissingInstance = errors.New("provider instance id is not configured")
	ErrMissingToken    = errors.New("provider instance token is not configured")
	ErrMissingAPIKey   = errors.New("provider api key is not configured")
)

// Instance carries everything needed to address one provider session.
type Instance struct {
	BaseURL    string
	InstanceID string
	Token      string
	APIKey     string
}

// Auth selects which credentials a request carries.
type Auth int

const (
	// AuthBestEffort sends the bearer token and the API key when one is known.
	AuthBestEffort Auth = iota
	// AuthRequireAPIKey fails fast when no API key is configured.
	AuthRequireAPIKey
	// AuthBearerOnly never sends the API key header.
	AuthBearerOnly
)

// Root returns the gateway origin without any "/instances/..." suffix.
func (i Instance) Root() string {
	root := strings.TrimSpace(i.BaseURL)
	if root == "" {
		root = DefaultBaseURL
	}
	if idx := strings.Index(root, "/instances"); idx >= 0 {
		root = root[:idx]
	}
	return strings.TrimRight(root, "/")
}

// Validate checks the credentials every instance call needs.
func (i Instance) Validate() error {
	if strings.TrimSpace(i.InstanceID) == "" {
		return ErrMissingInstance
	}
	if strings.TrimSpace(i.Token) == "" {
		return ErrMissingToken
	}
	return nil
}

// Endpoint builds {root}/instances/{id}/token/{token}/{path}.
func (i Instance) Endpoint(path string) (string, error) {
	if err := i.Validate(); err != nil {
		return "", err
	}
	return i.Root() + "/instances/" + url.PathEscape(i.InstanceID) +
		"/token/" + url.PathEscape(i.Token) + "/" + strings.TrimLeft(path, "/"), nil
}

func (i Instance) applyAuth(h http.Header, auth Auth) error {
	key := strings.TrimSpace(i.APIKey)
	switch auth {
	case AuthRequireAPIKey:
		if key == "" {
			return ErrMissingAPIKey
		}
		h.Set(HeaderClientToken, key)
	case AuthBestEffort:
		if key != "" {
			h.Set(HeaderClientToken, key)
		}
	}
	h.Set("Authorization", "Bearer "+i.Token)
	return nil
}
