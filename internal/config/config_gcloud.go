//go:build gcloud

package config

import "errors"

// Validate requires a project: gcloud builds publish notifications to
// Pub/Sub and never fall back to logging them.
func (c *PubSubConfig) Validate() error {
	if c.GCloudProjectID == "" {
		return errors.New("GCLOUD_PROJECT_ID is required for notification delivery")
	}

	if c.NatsURL != "" {
		return errors.New("NATS_URL is not supported in gcloud builds")
	}

	return nil
}
