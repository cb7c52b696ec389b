package magiclink

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository implements Repository using in-memory storage.
// Suitable for tests and single-process deployments.
type InMemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]Token
}

// NewInMemoryRepository creates a new in-memory magic-link repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		tokens: make(map[string]Token),
	}
}

// Create persists a new unconsumed token
func (r *InMemoryRepository) Create(ctx context.Context, token Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token.Token] = token
	return nil
}

// ConsumeIfValid atomically marks the token consumed and returns it.
// The mutex makes the check-and-mark a single atomic unit.
func (r *InMemoryRepository) ConsumeIfValid(ctx context.Context, tokenValue string, now time.Time) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenValue]
	if !ok {
		return Token{}, ErrTokenNotFound
	}
	if token.Consumed() {
		return Token{}, ErrTokenAlreadyUsed
	}
	if token.Expired(now) {
		return Token{}, ErrTokenExpired
	}

	usedAt := now
	token.UsedAt = &usedAt
	r.tokens[tokenValue] = token
	return token, nil
}

// Get returns a token by value without consuming it
func (r *InMemoryRepository) Get(ctx context.Context, tokenValue string) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenValue]
	if !ok {
		return Token{}, ErrTokenNotFound
	}
	return token, nil
}

// CountPendingByEmail counts unconsumed, unexpired tokens for an email
func (r *InMemoryRepository) CountPendingByEmail(ctx context.Context, email string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, token := range r.tokens {
		if token.Email == email && !token.Consumed() && !token.Expired(now) {
			count++
		}
	}
	return count, nil
}

// DeleteExpired removes tokens whose expiry is before the given time
func (r *InMemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for value, token := range r.tokens {
		if token.Expired(now) {
			delete(r.tokens, value)
			deleted++
		}
	}
	return deleted, nil
}
