// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/lms-backend/internal/config"
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

type stubVerifier map[string]*AccessTokenClaims

func (s stubVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, core.ErrTokenInvalid
}

var verifier = stubVerifier{
	"admin-token": {UserID: "a1", Role: RoleAdmin},
	"user-token":  {UserID: "u1", Role: RoleUser},
}

func whoami(w http.ResponseWriter, r *http.Request) {
	core.OK(w, map[string]string{
		"id":    GetUserID(r.Context()),
		"role":  GetUserRole(r.Context()),
		"token": GetToken(r.Context()),
	})
}

func do(h http.Handler, method, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) core.ErrorResponse {
	t.Helper()
	var body core.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthenticator(t *testing.T) {
	h := Authenticator(verifier)(http.HandlerFunc(whoami))

	rec := do(h, http.MethodGet, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)

	rec = do(h, http.MethodGet, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", decodeError(t, rec).Code)

	rec = do(h, http.MethodGet, "user-token")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["id"])
	assert.Equal(t, "user-token", body["token"])
}

func TestOptionalAuthIgnoresBadTokens(t *testing.T) {
	h := OptionalAuth(verifier)(http.HandlerFunc(whoami))

	rec := do(h, http.MethodGet, "garbage")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body["id"])
}

func TestRequireAdmin(t *testing.T) {
	h := Authenticator(verifier)(RequireAdmin(http.HandlerFunc(whoami)))

	assert.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "user-token").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "admin-token").Code)
}

func TestGuards(t *testing.T) {
	open := NewGuards(verifier, false)
	h := open.Authenticate(open.Admin(http.HandlerFunc(whoami)))
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "user-token").Code)

	rec := do(h, http.MethodGet, "admin-token")
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, RoleAdmin, body["role"])

	strict := NewGuards(verifier, true)
	h = strict.Authenticate(strict.Admin(http.HandlerFunc(whoami)))
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "user-token").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "admin-token").Code)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)
		assert.Equal(t, tt.want, ExtractToken(req), tt.header)
	}
}

func TestRateLimiterFallsBackWithoutRedis(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit: PerWindow(1, 1, time.Minute),
	})
	h := rl.Handler(http.HandlerFunc(whoami))

	first := do(h, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := do(h, http.MethodGet, "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeError(t, second).Code)
}

func TestRateLimitKeyUsesRoutePattern(t *testing.T) {
	var keys []string
	r := chi.NewRouter()
	r.With(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			keys = append(keys, KeyByUserAndEndpoint(r))
			next.ServeHTTP(w, r)
		})
	}).Get("/courses/{courseID}", whoami)

	for _, path := range []string{"/courses/1", "/courses/2"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.7:5000"
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
	assert.Equal(t, "lms:ratelimit:ip:10.0.0.7:GET:/courses/{courseID}", keys[0])
}

func TestRateLimiterSkipsProbes(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{
		Limit: PerWindow(1, 1, time.Minute),
		Skip:  SkipProbes,
	})
	h := rl.Handler(http.HandlerFunc(whoami))

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"X-Total-Count"},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	rec := do(h, http.MethodOptions, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type, Authorization",
		rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Total-Count", rec.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORSAllowList(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
	})(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardWithCredentialsEchoesOrigin(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
	})(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://app.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
}

func TestRequestIDAndLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var seen string
	h := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		core.OK(w, struct{}{})
	})))

	rec := do(h, http.MethodGet, "")
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestLoggerRecoversPanics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Logger(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(h, http.MethodGet, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeError(t, rec).Error)
}

func TestTracingPassesThrough(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Tracing)
	r.Get("/courses/{courseID}", func(w http.ResponseWriter, _ *http.Request) {
		core.JSONError(w, core.NewAppError(nil, "boom", http.StatusInternalServerError, "INTERNAL_ERROR"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/courses/c1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
