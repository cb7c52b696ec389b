package magiclink

import (
	"context"
	"time"
)

// Repository defines storage operations for magic-link tokens
type Repository interface {
	// Create persists a new unconsumed token
	Create(ctx context.Context, token Token) error

	// ConsumeIfValid atomically marks the token consumed and returns it.
	// The check-and-mark must be a single atomic unit: two concurrent
	// calls for the same token value yield exactly one success. Fails
	// with ErrTokenNotFound, ErrTokenExpired or ErrTokenAlreadyUsed.
	ConsumeIfValid(ctx context.Context, tokenValue string, now time.Time) (Token, error)

	// Get returns a token by value without consuming it
	Get(ctx context.Context, tokenValue string) (Token, error)

	// CountPendingByEmail counts unconsumed, unexpired tokens for an email
	CountPendingByEmail(ctx context.Context, email string, now time.Time) (int64, error)

	// DeleteExpired removes tokens whose expiry is before the given time
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
