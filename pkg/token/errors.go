package token

import "errors"

var (
	// ErrMalformed is returned when a credential is not a structurally valid token
	ErrMalformed = errors.New("credential is malformed")

	// ErrSignatureMismatch is returned when a credential signature does not verify
	// under the shared secret (or the previous secret during a rotation window)
	ErrSignatureMismatch = errors.New("credential signature mismatch")

	// ErrCredentialExpired is returned when a credential is past its expiry
	ErrCredentialExpired = errors.New("credential has expired")
)
