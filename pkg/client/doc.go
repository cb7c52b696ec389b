// Package client is the auth adapter for dependent services running on
// the shared root domain. It validates session credentials locally with
// the shared secret, so the hot path never calls the auth service, and
// fetches the full profile from the auth service when a handler needs
// more than the subject ID. Profile lookups degrade gracefully: when the
// auth service is unreachable the request proceeds with an
// identity-only context instead of failing.
package client
