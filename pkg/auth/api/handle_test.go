package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benloe/artanis/pkg/auth"
	"github.com/benloe/artanis/pkg/gateway"
	"github.com/benloe/artanis/pkg/magiclink"
	"github.com/benloe/artanis/pkg/notification"
	"github.com/benloe/artanis/pkg/token"
	"github.com/benloe/artanis/pkg/user"
)

type testServer struct {
	router chi.Router
	mock   *notification.MockNotifier
}

func newTestServer(t *testing.T, linkOpts ...magiclink.ServiceOption) *testServer {
	t.Helper()

	mock := &notification.MockNotifier{}
	nm, err := notification.NewNotificationManagerWithOptions(
		"https://auth.benloe.com",
		notification.WithNotifier(notification.EmailSystem, mock),
		notification.WithDefaultTemplates(),
	)
	require.NoError(t, err)

	svc := auth.NewService(
		magiclink.NewService(magiclink.NewInMemoryRepository(), linkOpts...),
		user.NewInMemoryRepository(),
		token.NewCodec("test-secret", "artanis"),
		auth.WithNotificationManager(nm),
	)

	gw := gateway.NewGateway("token", ".benloe.com", false, true)
	handler := NewHandler(svc, gw)

	r := chi.NewRouter()
	r.Mount("/api/auth", handler.Routes())

	return &testServer{router: r, mock: mock}
}

func (ts *testServer) lastMagicLinkToken(t *testing.T) string {
	t.Helper()

	sent := ts.mock.Sent()
	require.NotEmpty(t, sent)
	link := sent[len(sent)-1].Data["MagicLink"]
	require.NotEmpty(t, link)

	idx := strings.Index(link, "token=")
	require.GreaterOrEqual(t, idx, 0)
	value := link[idx+len("token="):]
	if amp := strings.Index(value, "&"); amp >= 0 {
		value = value[:amp]
	}
	return value
}

// loginAndVerify runs the whole magic link flow and returns the session
// cookie the browser would hold afterwards.
func (ts *testServer) loginAndVerify(t *testing.T, email string) *http.Cookie {
	t.Helper()

	rec := ts.postJSON(t, "/api/auth/login", map[string]string{"email": email})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify?token="+ts.lastMagicLinkToken(t), nil)
	verifyRec := httptest.NewRecorder()
	ts.router.ServeHTTP(verifyRec, req)
	require.Equal(t, http.StatusFound, verifyRec.Code)

	for _, c := range verifyRec.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set by verify")
	return nil
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func TestRequestLoginEndpoint(t *testing.T) {
	t.Run("ValidEmailReturnsOk", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.postJSON(t, "/api/auth/login", map[string]string{"email": "alice@example.com"})

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Ok)
		assert.Len(t, ts.mock.Sent(), 1)
	})

	t.Run("UnknownAndKnownEmailsAreIndistinguishable", func(t *testing.T) {
		ts := newTestServer(t)
		ts.loginAndVerify(t, "known@example.com")

		knownRec := ts.postJSON(t, "/api/auth/login", map[string]string{"email": "known@example.com"})
		unknownRec := ts.postJSON(t, "/api/auth/login", map[string]string{"email": "stranger@example.com"})

		assert.Equal(t, http.StatusOK, knownRec.Code)
		assert.Equal(t, http.StatusOK, unknownRec.Code)
		assert.JSONEq(t, knownRec.Body.String(), unknownRec.Body.String())
	})

	t.Run("EmptyEmailRejected", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.postJSON(t, "/api/auth/login", map[string]string{"email": "   "})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, ts.mock.Sent())
	})

	t.Run("MalformedBodyRejected", func(t *testing.T) {
		ts := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVerifyEndpoint(t *testing.T) {
	t.Run("SuccessSetsCookieAndRedirects", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.postJSON(t, "/api/auth/login", map[string]string{
			"email":    "alice@example.com",
			"redirect": "/games",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify?token="+ts.lastMagicLinkToken(t), nil)
		verifyRec := httptest.NewRecorder()
		ts.router.ServeHTTP(verifyRec, req)

		assert.Equal(t, http.StatusFound, verifyRec.Code)
		assert.Equal(t, "/games", verifyRec.Header().Get("Location"))

		cookies := verifyRec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, "token", cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("NoRedirectFallsBackToDefault", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.postJSON(t, "/api/auth/login", map[string]string{"email": "alice@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify?token="+ts.lastMagicLinkToken(t), nil)
		verifyRec := httptest.NewRecorder()
		ts.router.ServeHTTP(verifyRec, req)

		assert.Equal(t, http.StatusFound, verifyRec.Code)
		assert.Equal(t, DefaultRedirect, verifyRec.Header().Get("Location"))
	})

	t.Run("MissingTokenRedirectsToError", func(t *testing.T) {
		ts := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, invalidLinkRedirect, rec.Header().Get("Location"))
	})

	t.Run("UnknownExpiredAndUsedLookTheSame", func(t *testing.T) {
		ts := newTestServer(t, magiclink.WithTTL(-time.Minute))

		// Expired token
		rec := ts.postJSON(t, "/api/auth/login", map[string]string{"email": "alice@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)
		expiredToken := ts.lastMagicLinkToken(t)

		for _, tokenValue := range []string{"never-issued", expiredToken} {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/verify?token="+tokenValue, nil)
			verifyRec := httptest.NewRecorder()
			ts.router.ServeHTTP(verifyRec, req)

			assert.Equal(t, http.StatusFound, verifyRec.Code)
			assert.Equal(t, invalidLinkRedirect, verifyRec.Header().Get("Location"))
		}
	})

	t.Run("SecondRedemptionFails", func(t *testing.T) {
		ts := newTestServer(t)
		rec := ts.postJSON(t, "/api/auth/login", map[string]string{"email": "alice@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)
		tokenValue := ts.lastMagicLinkToken(t)

		first := httptest.NewRecorder()
		ts.router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/auth/verify?token="+tokenValue, nil))
		require.Equal(t, http.StatusFound, first.Code)
		require.Equal(t, DefaultRedirect, first.Header().Get("Location"))

		second := httptest.NewRecorder()
		ts.router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/auth/verify?token="+tokenValue, nil))
		assert.Equal(t, http.StatusFound, second.Code)
		assert.Equal(t, invalidLinkRedirect, second.Header().Get("Location"))
	})
}

func TestMeEndpoint(t *testing.T) {
	t.Run("WithValidSession", func(t *testing.T) {
		ts := newTestServer(t)
		cookie := ts.loginAndVerify(t, "alice@example.com")

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp MeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "alice@example.com", resp.User.Email)
		assert.NotEmpty(t, resp.User.ID)
	})

	t.Run("WithoutSession", func(t *testing.T) {
		ts := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("GarbageCookieClearedAndRejected", func(t *testing.T) {
		ts := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "not-a-credential"})
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Empty(t, cookies[0].Value)
		assert.Less(t, cookies[0].MaxAge, 0)
	})
}

func TestUpdateMeEndpoint(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.loginAndVerify(t, "alice@example.com")

	payload := `{"name":"Alice","timezone":"America/New_York"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/auth/me", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Alice", resp.User.Name)
	assert.Equal(t, "America/New_York", resp.User.Timezone)
	assert.Equal(t, "alice@example.com", resp.User.Email)
}

func TestLogoutEndpoint(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "token", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestSanitizeRedirect(t *testing.T) {
	gw := gateway.NewGateway("token", ".benloe.com", false, true)
	h := NewHandler(nil, gw)

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"Empty", "", DefaultRedirect},
		{"RelativePath", "/games/night", "/games/night"},
		{"SchemeRelative", "//evil.example.com", DefaultRedirect},
		{"SameRootDomain", "https://gamenight.benloe.com/join", "https://gamenight.benloe.com/join"},
		{"RootDomainItself", "https://benloe.com/", "https://benloe.com/"},
		{"ForeignDomain", "https://evil.example.com/", DefaultRedirect},
		{"SuffixSpoof", "https://notbenloe.com/", DefaultRedirect},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, h.sanitizeRedirect(tc.target))
		})
	}
}
