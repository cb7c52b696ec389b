// Package config provides configuration loading for the artanis auth
// service and the services that trust its session credentials.
//
// All configuration is environment-driven. Each concern (database, JWT,
// cookie, magic link, email) has its own struct with cleanenv `env` tags
// plus a NewXxxConfigFromEnv constructor for callers that do not use
// cleanenv. Durations are accepted in ISO8601 form ("PT15M") or Go form
// ("15m").
package config
