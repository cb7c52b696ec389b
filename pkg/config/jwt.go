package config

import (
	"time"
)

// JWTConfig holds the shared-secret signing configuration for session
// credentials. The secret must be identical across every service that
// trusts the session cookie. PreviousSecret supports rotation: when set,
// verification accepts signatures under either secret for a grace period
// while new credentials are always signed with Secret.
type JWTConfig struct {
	Secret          string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	PreviousSecret  string `env:"JWT_PREVIOUS_SECRET" env-default:""`
	Issuer          string `env:"JWT_ISSUER" env-default:"artanis"`
	SessionLifetime string `env:"SESSION_LIFETIME" env-default:"PT720H"`
}

// ParseSessionLifetime parses the session credential lifetime
func (j JWTConfig) ParseSessionLifetime() (time.Duration, error) {
	return ParseDuration(j.SessionLifetime)
}

// NewJWTConfigFromEnv creates a JWTConfig from environment variables
func NewJWTConfigFromEnv() JWTConfig {
	return JWTConfig{
		Secret:          GetEnvOrDefault("JWT_SECRET", "very-secure-jwt-secret"),
		PreviousSecret:  GetEnvOrDefault("JWT_PREVIOUS_SECRET", ""),
		Issuer:          GetEnvOrDefault("JWT_ISSUER", "artanis"),
		SessionLifetime: GetEnvOrDefault("SESSION_LIFETIME", "PT720H"),
	}
}
