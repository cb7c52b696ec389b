// Package api exposes the auth service's HTTP surface: magic link
// request and redemption, session introspection, profile update and
// logout.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/benloe/artanis/pkg/auth"
	"github.com/benloe/artanis/pkg/gateway"
	"github.com/benloe/artanis/pkg/user"
)

// DefaultRedirect is where a redeemed login lands when the link carried
// no redirect target.
const DefaultRedirect = "/dashboard"

// invalidLinkRedirect is the single failure destination for every
// redemption error, so the response does not reveal whether a token
// ever existed.
const invalidLinkRedirect = "/?error=invalid_link"

// Handler implements the auth HTTP surface
type Handler struct {
	service *auth.Service
	gateway *gateway.Gateway
}

// NewHandler creates an auth API handler
func NewHandler(service *auth.Service, gw *gateway.Gateway) *Handler {
	return &Handler{
		service: service,
		gateway: gw,
	}
}

// Routes mounts the auth endpoints on a chi router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.RequestLogin)
	r.Get("/verify", h.Verify)
	r.Post("/logout", h.Logout)
	r.Group(func(r chi.Router) {
		r.Use(h.gateway.Middleware(h.service))
		r.Get("/me", h.Me)
		r.Patch("/me", h.UpdateMe)
	})
	return r
}

// RequestLogin handles POST /login
func (h *Handler) RequestLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode login request body", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	err := h.service.RequestLogin(r.Context(), req.Email, req.Redirect)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidEmail):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "A valid email address is required"})
		case errors.Is(err, auth.ErrUpstreamUnavailable):
			slog.Error("Failed to send login email", "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "Failed to send login email"})
		default:
			slog.Error("Failed to start login", "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, ErrorResponse{Error: "An error occurred"})
		}
		return
	}

	// Same response for known and unknown addresses
	render.Status(r, http.StatusOK)
	render.JSON(w, r, LoginResponse{
		Ok:      true,
		Message: "Check your email for a login link",
	})
}

// Verify handles GET /verify
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	tokenValue := r.URL.Query().Get("token")
	if tokenValue == "" {
		http.Redirect(w, r, invalidLinkRedirect, http.StatusFound)
		return
	}

	result, err := h.service.Redeem(r.Context(), tokenValue)
	if err != nil {
		if auth.IsRedemptionError(err) {
			slog.Info("Magic link redemption rejected", "err", err)
		} else {
			slog.Error("Failed to redeem magic link", "err", err)
		}
		// One destination for every failure mode
		http.Redirect(w, r, invalidLinkRedirect, http.StatusFound)
		return
	}

	h.gateway.SetSessionCookie(w, result.Credential, result.ExpiresAt)

	target := result.RedirectURL
	if target == "" {
		target = r.URL.Query().Get("redirect")
	}
	http.Redirect(w, r, h.sanitizeRedirect(target), http.StatusFound)
}

// Me handles GET /me. The session middleware has already resolved the
// user, so this only shapes the response.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	authUser, ok := gateway.CurrentUser(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MeResponse{User: toAPIUser(authUser)})
}

// UpdateMe handles PATCH /me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	authUser, ok := gateway.CurrentUser(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode profile update body", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.UpdateParams{
		ID:       authUser.ID,
		Name:     req.Name,
		Avatar:   req.Avatar,
		Timezone: req.Timezone,
	})
	if err != nil {
		slog.Error("Failed to update profile", "err", err, "userId", authUser.ID)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "Failed to update profile"})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MeResponse{User: toAPIUser(updated)})
}

// Logout handles POST /logout. The credential itself stays valid until
// expiry; logout only removes it from the browser.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.gateway.ClearSessionCookie(w)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, LogoutResponse{Ok: true})
}

// sanitizeRedirect keeps redemption from becoming an open redirect:
// relative paths pass through, absolute URLs are honored only when
// their host sits under the cookie's root domain.
func (h *Handler) sanitizeRedirect(target string) string {
	if target == "" {
		return DefaultRedirect
	}
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return target
	}
	if h.gateway.Domain != "" {
		u, err := url.Parse(target)
		if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			root := strings.TrimPrefix(h.gateway.Domain, ".")
			if u.Hostname() == root || strings.HasSuffix(u.Hostname(), "."+root) {
				return target
			}
		}
	}
	return DefaultRedirect
}

func toAPIUser(u user.User) User {
	apiUser := User{}
	copier.Copy(&apiUser, &u)
	apiUser.ID = u.ID.String()
	apiUser.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339)
	if u.LastLoginAt != nil {
		lastLogin := u.LastLoginAt.UTC().Format(time.RFC3339)
		apiUser.LastLoginAt = &lastLogin
	}
	return apiUser
}
