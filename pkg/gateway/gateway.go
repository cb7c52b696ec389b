// Package gateway maps the session credential to and from the transport
// cookie, including the cross-subdomain scoping that gives dependent
// services single sign-on on the shared root domain.
package gateway

import (
	"net/http"
	"time"
)

// DefaultCookieName matches the cookie the original services read
const DefaultCookieName = "token"

// Gateway converts minted session credentials into cookies and back
type Gateway struct {
	Name     string
	Domain   string
	Path     string
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// NewGateway creates a session gateway. domain should be the shared root
// domain (e.g. ".benloe.com") so every trusting subdomain receives the
// cookie; empty scopes the cookie to the issuing host only.
func NewGateway(name, domain string, secure, httpOnly bool) *Gateway {
	if name == "" {
		name = DefaultCookieName
	}
	return &Gateway{
		Name:     name,
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetSessionCookie sets the session credential as the transport cookie
func (g *Gateway) SetSessionCookie(w http.ResponseWriter, credential string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.Name,
		Value:    credential,
		Path:     g.Path,
		Domain:   g.Domain,
		Expires:  expires,
		HttpOnly: g.HttpOnly,
		Secure:   g.Secure,
		SameSite: g.SameSite,
	})
}

// ClearSessionCookie removes the session cookie. Called on any
// verification failure so a stale credential is not retried forever.
func (g *Gateway) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.Name,
		Value:    "",
		Path:     g.Path,
		Domain:   g.Domain,
		MaxAge:   -1,
		HttpOnly: g.HttpOnly,
		Secure:   g.Secure,
		SameSite: g.SameSite,
	})
}

// TokenFromRequest extracts the session credential from the cookie
func (g *Gateway) TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(g.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
