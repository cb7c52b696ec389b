// Package token mints and verifies the signed session credential carried
// in the session cookie. The credential is an HS256 JWT whose subject is
// the user ID; any service holding the shared secret can verify it
// without contacting the issuing service.
package token

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionLifetime is used when no lifetime is configured
const DefaultSessionLifetime = 720 * time.Hour // 30 days

// Identity holds the verified claims of a session credential
type Identity struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies session credentials with a symmetric secret.
// The secret is read-only after construction and must be identical across
// all services that trust the credential.
type Codec struct {
	secret         string
	previousSecret string
	issuer         string
	lifetime       time.Duration
}

// CodecOption configures a Codec
type CodecOption func(*Codec)

// WithPreviousSecret enables a dual-secret rotation window: verification
// accepts signatures under either the current or the previous secret.
// Minting always uses the current secret.
func WithPreviousSecret(secret string) CodecOption {
	return func(c *Codec) {
		c.previousSecret = secret
	}
}

// WithLifetime sets the credential lifetime used by Mint
func WithLifetime(lifetime time.Duration) CodecOption {
	return func(c *Codec) {
		c.lifetime = lifetime
	}
}

// NewCodec creates a Codec signing with the given shared secret
func NewCodec(secret, issuer string, opts ...CodecOption) *Codec {
	codec := &Codec{
		secret:   secret,
		issuer:   issuer,
		lifetime: DefaultSessionLifetime,
	}

	for _, opt := range opts {
		opt(codec)
	}

	return codec
}

// Mint creates a signed session credential for the given user ID and
// returns the credential string together with its expiry
func (c *Codec) Mint(userID string) (string, time.Time, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		ID:        uuid.New().String(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := tok.SignedString([]byte(c.secret))
	if err != nil {
		slog.Error("Failed to sign session credential", "err", err)
		return "", time.Time{}, err
	}

	return ss, claims.ExpiresAt.Time, nil
}

// Verify checks the signature and expiry of a credential and returns the
// identity it asserts. When a previous secret is configured, a signature
// mismatch under the current secret is retried under the previous one.
func (c *Codec) Verify(credential string) (Identity, error) {
	identity, err := c.verifyWithSecret(credential, c.secret)
	if err != nil && c.previousSecret != "" && errors.Is(err, ErrSignatureMismatch) {
		identity, err = c.verifyWithSecret(credential, c.previousSecret)
	}
	return identity, err
}

func (c *Codec) verifyWithSecret(credential, secret string) (Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(credential, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, classifyParseError(err)
	}

	return Identity{
		UserID:    claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// classifyParseError maps golang-jwt errors onto the package sentinels.
// The underlying HMAC comparison in golang-jwt is constant time.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrCredentialExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return ErrSignatureMismatch
	default:
		return ErrMalformed
	}
}
