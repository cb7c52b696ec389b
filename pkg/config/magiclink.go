package config

import "time"

// MagicLinkConfig holds magic-link token settings
type MagicLinkConfig struct {
	TTL           string `env:"MAGIC_LINK_TTL" env-default:"PT15M"`
	SweepInterval string `env:"MAGIC_LINK_SWEEP_INTERVAL" env-default:"PT1H"`
}

// ParseTTL parses the magic-link token time-to-live
func (m MagicLinkConfig) ParseTTL() (time.Duration, error) {
	return ParseDuration(m.TTL)
}

// ParseSweepInterval parses the expired-token sweep interval
func (m MagicLinkConfig) ParseSweepInterval() (time.Duration, error) {
	return ParseDuration(m.SweepInterval)
}

// NewMagicLinkConfigFromEnv creates a MagicLinkConfig from environment variables
func NewMagicLinkConfigFromEnv() MagicLinkConfig {
	return MagicLinkConfig{
		TTL:           GetEnvOrDefault("MAGIC_LINK_TTL", "PT15M"),
		SweepInterval: GetEnvOrDefault("MAGIC_LINK_SWEEP_INTERVAL", "PT1H"),
	}
}
