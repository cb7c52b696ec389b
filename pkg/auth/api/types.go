package api

// LoginRequest represents the request to start a magic link login
type LoginRequest struct {
	Email    string `json:"email"`
	Redirect string `json:"redirect,omitempty"`
}

// LoginResponse is returned for every well-formed login request,
// whether or not the email belongs to an account
type LoginResponse struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message"`
}

// User is the API shape of an account
type User struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name,omitempty"`
	Avatar      string  `json:"avatar,omitempty"`
	Timezone    string  `json:"timezone"`
	CreatedAt   string  `json:"created_at"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
}

// MeResponse wraps the authenticated user's profile
type MeResponse struct {
	User User `json:"user"`
}

// UpdateMeRequest carries the profile fields a user may change
type UpdateMeRequest struct {
	Name     *string `json:"name,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
}

// LogoutResponse acknowledges a logout
type LogoutResponse struct {
	Ok bool `json:"ok"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
