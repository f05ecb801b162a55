// Package provider contains the upstream market-data adapters. Each
// adapter maps one provider's wire shape onto the canonical domain
// model and classifies every failure as either domain.ErrNotFound or
// domain.ErrProviderUnavailable; no partial series ever leaves an
// adapter.
package provider

import (
	"fmt"
	"net/http"
	"time"

	"marketpulse/internal/domain"
)

// Config carries the per-provider connection settings. Zero values
// fall back to adapter defaults.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func (c Config) timeoutOr(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func (c Config) baseURLOr(fallback string) string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fallback
}

// statusError maps an upstream HTTP status onto the error taxonomy.
func statusError(name string, status int, body []byte) error {
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: %s returned 404", domain.ErrNotFound, name)
	}
	return fmt.Errorf("%w: %s API error %d: %s", domain.ErrProviderUnavailable, name, status, truncate(body, 200))
}

// transportError wraps network and decode failures.
func transportError(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrProviderUnavailable, name, err)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
