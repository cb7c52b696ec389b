package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when no user record matches the lookup
var ErrUserNotFound = errors.New("user not found")

// Repository defines storage operations for the user directory
type Repository interface {
	// GetByID returns a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (User, error)

	// GetByEmail returns a user by canonical email
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetOrCreate resolves a user by canonical email, creating the record
	// if none exists. The operation is idempotent under concurrency: two
	// concurrent calls for the same new email resolve to one record.
	GetOrCreate(ctx context.Context, email string) (User, error)

	// RecordLogin updates the user's last-login timestamp
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	// Update mutates profile fields; nil fields are left unchanged
	Update(ctx context.Context, params UpdateParams) (User, error)
}
