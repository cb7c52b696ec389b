package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Profile is the account record a dependent service sees. It mirrors
// the auth service's /api/auth/me response.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Timezone    string `json:"timezone"`
	CreatedAt   string `json:"created_at,omitempty"`
	LastLoginAt string `json:"last_login_at,omitempty"`
}

type meResponse struct {
	User Profile `json:"user"`
}

// DefaultProfileTimeout bounds a single profile request so a slow auth
// service cannot stall dependent-service handlers.
const DefaultProfileTimeout = 3 * time.Second

// ProfileClient fetches user profiles from the auth service
type ProfileClient struct {
	authServiceURL string
	cookieName     string
	httpClient     *http.Client
	maxRetries     uint64
	retryBase      time.Duration
}

// ProfileClientOption configures a ProfileClient
type ProfileClientOption func(*ProfileClient)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ProfileClientOption {
	return func(p *ProfileClient) {
		p.httpClient = httpClient
	}
}

// WithCookieName sets the cookie carrying the credential
func WithCookieName(name string) ProfileClientOption {
	return func(p *ProfileClient) {
		p.cookieName = name
	}
}

// WithMaxRetries sets how many times a failed lookup is retried
func WithMaxRetries(n uint64) ProfileClientOption {
	return func(p *ProfileClient) {
		p.maxRetries = n
	}
}

// NewProfileClient creates a client for the auth service at the given
// base URL (e.g. "https://auth.benloe.com")
func NewProfileClient(authServiceURL string, opts ...ProfileClientOption) *ProfileClient {
	p := &ProfileClient{
		authServiceURL: authServiceURL,
		cookieName:     "token",
		httpClient:     &http.Client{Timeout: DefaultProfileTimeout},
		maxRetries:     2,
		retryBase:      100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchProfile resolves the profile behind a credential by calling the
// auth service's me endpoint with the credential as the session cookie.
// Transient failures are retried with fibonacci backoff; a definitive
// 401 is not retried.
func (p *ProfileClient) FetchProfile(ctx context.Context, credential string) (*Profile, error) {
	backoff := retry.WithMaxRetries(p.maxRetries, retry.NewFibonacci(p.retryBase))

	var profile *Profile
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.authServiceURL+"/api/auth/me", nil)
		if err != nil {
			return err
		}
		req.AddCookie(&http.Cookie{Name: p.cookieName, Value: credential})

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var body meResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return fmt.Errorf("decode profile response: %w", err)
			}
			profile = &body.User
			return nil
		case resp.StatusCode == http.StatusUnauthorized:
			return ErrCredentialRejected
		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("auth service returned %d", resp.StatusCode))
		default:
			return fmt.Errorf("auth service returned %d", resp.StatusCode)
		}
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}
