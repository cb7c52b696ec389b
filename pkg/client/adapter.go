package client

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/benloe/artanis/pkg/token"
)

// AuthContext is what handlers in a dependent service see for a
// request. Identity is always set when IsAuthenticated is true; Profile
// is nil when the auth service could not be reached.
type AuthContext struct {
	IsAuthenticated bool
	Identity        token.Identity
	Profile         *Profile
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "artanis context value " + k.name
}

var authContextKey = &contextKey{"AuthContext"}

// RemoteAuthAdapter glues local credential validation and remote
// profile lookup into middleware for a dependent service. Construct it
// once at startup and share it across routers.
type RemoteAuthAdapter struct {
	validator  *Validator
	profiles   *ProfileClient
	cookieName string
}

// AdapterOption configures a RemoteAuthAdapter
type AdapterOption func(*RemoteAuthAdapter)

// WithAdapterCookieName sets the cookie the middleware reads the
// credential from
func WithAdapterCookieName(name string) AdapterOption {
	return func(a *RemoteAuthAdapter) {
		a.cookieName = name
	}
}

// NewRemoteAuthAdapter creates an adapter from a validator and an
// optional profile client. A nil profile client disables profile
// lookups; requests then carry identity-only contexts.
func NewRemoteAuthAdapter(validator *Validator, profiles *ProfileClient, opts ...AdapterOption) *RemoteAuthAdapter {
	a := &RemoteAuthAdapter{
		validator:  validator,
		profiles:   profiles,
		cookieName: "token",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// credentialFromRequest reads the session cookie first and falls back
// to a bearer Authorization header for non-browser clients.
func (a *RemoteAuthAdapter) credentialFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// Middleware resolves the request's AuthContext. It never rejects:
// unauthenticated requests pass through with an empty context and
// handlers gate access with RequireAuth or GetAuthContext.
func (a *RemoteAuthAdapter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx := AuthContext{}

		credential := a.credentialFromRequest(r)
		if credential != "" {
			identity, err := a.validator.Validate(credential)
			if err != nil {
				slog.Debug("Credential failed local validation", "err", err)
			} else {
				authCtx.IsAuthenticated = true
				authCtx.Identity = identity
				authCtx.Profile = a.lookupProfile(r.Context(), credential)
			}
		}

		ctx := context.WithValue(r.Context(), authContextKey, authCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// lookupProfile fetches the profile, degrading to nil on failure. A
// rejected credential also yields nil; the subject was deleted upstream
// but the signature is still valid, and handlers that require a live
// profile check Profile themselves.
func (a *RemoteAuthAdapter) lookupProfile(ctx context.Context, credential string) *Profile {
	if a.profiles == nil {
		return nil
	}
	profile, err := a.profiles.FetchProfile(ctx, credential)
	if err != nil {
		slog.Warn("Profile lookup failed, continuing with identity only", "err", err)
		return nil
	}
	return profile
}

// RequireAuth rejects unauthenticated requests with 401. Must run
// after Middleware.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx := GetAuthContext(r)
		if !authCtx.IsAuthenticated {
			slog.Debug("Unauthenticated request to protected resource")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetAuthContext returns the request's AuthContext; the zero value
// means Middleware did not run or the request was anonymous.
func GetAuthContext(r *http.Request) AuthContext {
	authCtx, _ := r.Context().Value(authContextKey).(AuthContext)
	return authCtx
}
