package config

import "net/http"

// CookieConfig holds the session cookie configuration. Domain should be
// the shared root domain (e.g. ".benloe.com") so that every subdomain
// that trusts the session credential receives the cookie.
type CookieConfig struct {
	Name     string `env:"COOKIE_NAME" env-default:"token"`
	Domain   string `env:"COOKIE_DOMAIN" env-default:""`
	Secure   bool   `env:"COOKIE_SECURE" env-default:"true"`
	HttpOnly bool   `env:"COOKIE_HTTP_ONLY" env-default:"true"`
}

// SameSite returns the SameSite policy for the session cookie. Lax is
// required for the cross-subdomain login redirect to carry the cookie.
func (c CookieConfig) SameSite() http.SameSite {
	return http.SameSiteLaxMode
}

// NewCookieConfigFromEnv creates a CookieConfig from environment variables
func NewCookieConfigFromEnv() CookieConfig {
	return CookieConfig{
		Name:     GetEnvOrDefault("COOKIE_NAME", "token"),
		Domain:   GetEnvOrDefault("COOKIE_DOMAIN", ""),
		Secure:   GetEnvBool("COOKIE_SECURE", true),
		HttpOnly: GetEnvBool("COOKIE_HTTP_ONLY", true),
	}
}
