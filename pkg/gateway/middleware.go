package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/benloe/artanis/pkg/user"
)

type contextKey struct {
	name string
}

var userCtxKey = &contextKey{"AuthUser"}

// SessionVerifier proves a credential and resolves the account behind it
type SessionVerifier interface {
	VerifySession(ctx context.Context, credential string) (user.User, error)
}

// Middleware requires a valid session cookie. On any failure the cookie
// is cleared and a 401 is returned, so a client holding a stale or
// tampered credential gets exactly one failed request before it is
// back to anonymous.
func (g *Gateway) Middleware(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := g.TokenFromRequest(r)
			if credential == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "Authentication required"})
				return
			}

			authUser, err := verifier.VerifySession(r.Context(), credential)
			if err != nil {
				slog.Debug("Session verification failed", "err", err)
				g.ClearSessionCookie(w)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, map[string]string{"error": "Invalid or expired session"})
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey, authUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalMiddleware resolves the session when a valid cookie is present
// but never rejects the request. Handlers check CurrentUser to branch.
func (g *Gateway) OptionalMiddleware(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := g.TokenFromRequest(r)
			if credential == "" {
				next.ServeHTTP(w, r)
				return
			}

			authUser, err := verifier.VerifySession(r.Context(), credential)
			if err != nil {
				g.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey, authUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the authenticated user placed in the request
// context by Middleware or OptionalMiddleware.
func CurrentUser(ctx context.Context) (user.User, bool) {
	authUser, ok := ctx.Value(userCtxKey).(user.User)
	return authUser, ok
}

// WithUser returns a context carrying the user, for tests and for
// handlers invoked outside the middleware chain.
func WithUser(ctx context.Context, authUser user.User) context.Context {
	return context.WithValue(ctx, userCtxKey, authUser)
}
