// Package user is the user directory of the auth service: lookup and
// lazy creation of user records keyed by email.
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the directory. Records are created lazily on
// first successful magic-link redemption and are never deleted by the
// auth subsystem.
type User struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
	Timezone    string     `json:"timezone"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// UpdateParams contains the profile fields the auth subsystem may mutate
type UpdateParams struct {
	ID       uuid.UUID
	Name     *string
	Avatar   *string
	Timezone *string
}

// DefaultTimezone is assigned to users created without an explicit timezone
const DefaultTimezone = "UTC"

// NormalizeEmail returns the canonical form of an email address used as
// the directory key: trimmed and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
