// Package magiclink persists pending magic-link tokens and enforces
// their one-time redemption.
package magiclink

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// Token is a pending magic-link token. A token is write-once: it is
// created unconsumed and transitions to consumed exactly once via the
// repository's ConsumeIfValid. Expiry is derived from the clock.
type Token struct {
	Token       string
	Email       string
	RedirectURL string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	UsedAt      *time.Time
}

// Consumed reports whether the token has been redeemed
func (t Token) Consumed() bool {
	return t.UsedAt != nil
}

// Expired reports whether the token is past its expiry at the given time
func (t Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// GenerateToken generates a cryptographically secure random token value.
// 32 random bytes gives 256 bits of entropy. The unpadded URL-safe
// alphabet survives query strings without escaping.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
