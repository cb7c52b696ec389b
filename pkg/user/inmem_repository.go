package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu           sync.Mutex
	users        map[uuid.UUID]User
	usersByEmail map[string]uuid.UUID
}

// NewInMemoryRepository creates a new in-memory user repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:        make(map[uuid.UUID]User),
		usersByEmail: make(map[string]uuid.UUID),
	}
}

// GetByID returns a user by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// GetByEmail returns a user by canonical email
func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.getByEmailLocked(email)
}

func (r *InMemoryRepository) getByEmailLocked(email string) (User, error) {
	id, ok := r.usersByEmail[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// GetOrCreate resolves a user by email, creating the record if none
// exists. The mutex serializes concurrent first-time creations for the
// same email onto a single record.
func (r *InMemoryRepository) GetOrCreate(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, err := r.getByEmailLocked(email); err == nil {
		return u, nil
	}

	u := User{
		ID:        uuid.New(),
		Email:     email,
		Timezone:  DefaultTimezone,
		CreatedAt: time.Now().UTC(),
	}
	r.users[u.ID] = u
	r.usersByEmail[email] = u.ID
	return u, nil
}

// RecordLogin updates the user's last-login timestamp
func (r *InMemoryRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.LastLoginAt = &at
	r.users[id] = u
	return nil
}

// Update mutates profile fields; nil fields are left unchanged
func (r *InMemoryRepository) Update(ctx context.Context, params UpdateParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[params.ID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	if params.Name != nil {
		u.Name = *params.Name
	}
	if params.Avatar != nil {
		u.Avatar = *params.Avatar
	}
	if params.Timezone != nil {
		u.Timezone = *params.Timezone
	}
	r.users[params.ID] = u
	return u, nil
}
