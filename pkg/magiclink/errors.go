package magiclink

import "errors"

var (
	// ErrTokenNotFound is returned when a magic-link token is not found
	ErrTokenNotFound = errors.New("magic link token not found")

	// ErrTokenExpired is returned when a magic-link token has expired
	ErrTokenExpired = errors.New("magic link token has expired")

	// ErrTokenAlreadyUsed is returned when a magic-link token has already been consumed
	ErrTokenAlreadyUsed = errors.New("magic link token has already been used")
)
