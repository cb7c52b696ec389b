package magiclink

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTTL is the magic-link token lifetime used when none is configured
const DefaultTTL = 15 * time.Minute

// Service issues and redeems magic-link tokens against a Repository
type Service struct {
	repo Repository
	ttl  time.Duration
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithTTL sets the token time-to-live
func WithTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// NewService creates a magic-link service
func NewService(repo Repository, opts ...ServiceOption) *Service {
	service := &Service{
		repo: repo,
		ttl:  DefaultTTL,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// Issue generates a fresh token for the email and persists it. Previously
// issued tokens for the same email stay valid; multiple outstanding magic
// links are permitted.
func (s *Service) Issue(ctx context.Context, email, redirectURL string) (Token, error) {
	value, err := GenerateToken()
	if err != nil {
		return Token{}, err
	}

	now := time.Now().UTC()
	token := Token{
		Token:       value,
		Email:       email,
		RedirectURL: redirectURL,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	if err := s.repo.Create(ctx, token); err != nil {
		return Token{}, fmt.Errorf("failed to store magic link token: %w", err)
	}

	return token, nil
}

// Consume redeems a token exactly once. Fails with ErrTokenNotFound,
// ErrTokenExpired or ErrTokenAlreadyUsed.
func (s *Service) Consume(ctx context.Context, tokenValue string) (Token, error) {
	return s.repo.ConsumeIfValid(ctx, tokenValue, time.Now().UTC())
}

// StartSweeper deletes expired tokens on the given interval until the
// context is cancelled. Expired tokens never redeem even before a sweep
// runs; the sweep only reclaims storage.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
				if err != nil {
					slog.Error("Failed to sweep expired magic link tokens", "err", err)
					continue
				}
				if deleted > 0 {
					slog.Info("Swept expired magic link tokens", "deleted", deleted)
				}
			}
		}
	}()
}
