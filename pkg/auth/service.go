// Package auth orchestrates passwordless authentication: magic-link
// issuance, one-time redemption, and session credential minting and
// verification.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/benloe/artanis/pkg/magiclink"
	"github.com/benloe/artanis/pkg/notification"
	"github.com/benloe/artanis/pkg/token"
	"github.com/benloe/artanis/pkg/user"
)

// Service is the authentication core of the issuing service. It owns the
// magic-link and user stores; session credentials it mints are
// self-contained and verified without it.
type Service struct {
	links    *magiclink.Service
	users    user.Repository
	codec    *token.Codec
	notifier *notification.NotificationManager
	siteName string
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithNotificationManager sets the notification manager used to deliver
// magic-link emails
func WithNotificationManager(nm *notification.NotificationManager) ServiceOption {
	return func(s *Service) {
		s.notifier = nm
	}
}

// WithSiteName sets the site name rendered into login emails
func WithSiteName(name string) ServiceOption {
	return func(s *Service) {
		s.siteName = name
	}
}

// NewService creates an authentication service
func NewService(links *magiclink.Service, users user.Repository, codec *token.Codec, opts ...ServiceOption) *Service {
	service := &Service{
		links:    links,
		users:    users,
		codec:    codec,
		siteName: "benloe.com",
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// RequestLogin issues a magic-link token for the email and hands it to
// the email notifier. The path is identical whether or not the email is
// already known: a token is stored and mailed either way, and the user
// record is only created at redemption. Prior outstanding tokens for the
// same email stay valid.
//
// Email dispatch failure is reported as ErrUpstreamUnavailable so the
// caller can retry, but the stored token is not rolled back.
func (s *Service) RequestLogin(ctx context.Context, email, redirectURL string) error {
	normalized := user.NormalizeEmail(email)
	if normalized == "" {
		return ErrInvalidEmail
	}

	issued, err := s.links.Issue(ctx, normalized, redirectURL)
	if err != nil {
		return fmt.Errorf("failed to issue magic link: %w", err)
	}

	if err := s.sendMagicLinkEmail(issued); err != nil {
		slog.Error("Failed to send magic link email", "err", err)
		return ErrUpstreamUnavailable
	}

	slog.Info("Magic link issued", "expires_at", issued.ExpiresAt)
	return nil
}

// RedeemResult is the outcome of a successful magic-link redemption
type RedeemResult struct {
	Credential  string
	ExpiresAt   time.Time
	User        user.User
	RedirectURL string
}

// Redeem consumes a magic-link token exactly once, resolves or creates
// the user for its email, records the login and mints a session
// credential. Concurrent redemptions of the same token yield exactly one
// success; the losers fail with ErrTokenAlreadyUsed.
func (s *Service) Redeem(ctx context.Context, tokenValue string) (RedeemResult, error) {
	consumed, err := s.links.Consume(ctx, tokenValue)
	if err != nil {
		return RedeemResult{}, err
	}

	usr, err := s.users.GetOrCreate(ctx, consumed.Email)
	if err != nil {
		return RedeemResult{}, fmt.Errorf("failed to resolve user: %w", err)
	}

	now := time.Now().UTC()
	if err := s.users.RecordLogin(ctx, usr.ID, now); err != nil {
		return RedeemResult{}, fmt.Errorf("failed to record login: %w", err)
	}
	usr.LastLoginAt = &now

	credential, expiresAt, err := s.codec.Mint(usr.ID.String())
	if err != nil {
		return RedeemResult{}, fmt.Errorf("failed to mint session credential: %w", err)
	}

	slog.Info("Magic link redeemed", "user_id", usr.ID)
	return RedeemResult{
		Credential:  credential,
		ExpiresAt:   expiresAt,
		User:        usr,
		RedirectURL: consumed.RedirectURL,
	}, nil
}

// VerifySession verifies a session credential and resolves the user it
// asserts. The user is re-checked in the directory on every call, so a
// deleted account is rejected even while its credential is still
// signature-valid.
func (s *Service) VerifySession(ctx context.Context, credential string) (user.User, error) {
	identity, err := s.codec.Verify(credential)
	if err != nil {
		return user.User{}, err
	}

	id, err := uuid.Parse(identity.UserID)
	if err != nil {
		return user.User{}, ErrMalformed
	}

	return s.users.GetByID(ctx, id)
}

// UpdateProfile mutates the profile fields of an authenticated user
func (s *Service) UpdateProfile(ctx context.Context, params user.UpdateParams) (user.User, error) {
	return s.users.Update(ctx, params)
}

func (s *Service) sendMagicLinkEmail(issued magiclink.Token) error {
	if s.notifier == nil {
		slog.Warn("Notification manager not configured, skipping magic link email")
		return nil
	}

	verifyURL := fmt.Sprintf("%s/api/auth/verify?token=%s", s.notifier.BaseURL(), url.QueryEscape(issued.Token))
	if issued.RedirectURL != "" {
		verifyURL += "&redirect=" + url.QueryEscape(issued.RedirectURL)
	}

	expiryMinutes := int(time.Until(issued.ExpiresAt).Round(time.Minute) / time.Minute)

	return s.notifier.Send(notification.MagicLinkLogin, notification.EmailSystem, notification.NotificationData{
		To: issued.Email,
		Data: map[string]string{
			"SiteName":      s.siteName,
			"MagicLink":     verifyURL,
			"ExpiryMinutes": strconv.Itoa(expiryMinutes),
		},
	})
}
