//go:build !gcloud

package config

import (
	"fmt"
	"net/url"
)

// Validate only checks the NATS URL when one is set. Without it outbound
// notifications are logged instead of published.
func (c *PubSubConfig) Validate() error {
	if c.NatsURL == "" {
		return nil
	}

	u, err := url.Parse(c.NatsURL)
	if err != nil {
		return fmt.Errorf("invalid NATS_URL: %w", err)
	}

	switch u.Scheme {
	case "nats", "tls", "ws", "wss":
		return nil
	default:
		return fmt.Errorf("invalid NATS_URL: unsupported scheme %q", u.Scheme)
	}
}
