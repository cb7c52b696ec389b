package auth

import (
	"errors"

	"github.com/benloe/artanis/pkg/magiclink"
	"github.com/benloe/artanis/pkg/token"
	"github.com/benloe/artanis/pkg/user"
)

// Redemption and verification failures re-export the sentinels of the
// underlying packages so callers can match on a single taxonomy.
var (
	ErrTokenNotFound    = magiclink.ErrTokenNotFound
	ErrTokenExpired     = magiclink.ErrTokenExpired
	ErrTokenAlreadyUsed = magiclink.ErrTokenAlreadyUsed

	ErrSignatureMismatch = token.ErrSignatureMismatch
	ErrMalformed         = token.ErrMalformed
	ErrCredentialExpired = token.ErrCredentialExpired

	ErrUserNotFound = user.ErrUserNotFound

	// ErrInvalidEmail is returned when a login request carries no usable email
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrUpstreamUnavailable is returned when email dispatch fails. The
	// magic-link token is already persisted and stays redeemable.
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// IsRedemptionError reports whether the error is one of the magic-link
// redemption failures. The HTTP layer collapses all of them into a single
// generic message so responses do not reveal token state.
func IsRedemptionError(err error) bool {
	return errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenAlreadyUsed)
}
