package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "jwt-secret"

// whoami echoes the resolved principal.
func whoami(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"user": p.UserID, "service": p.Service})
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestAuthMiddleware(t *testing.T) {
	cfg := AuthConfig{Token: "svc-token", JWTSecret: testSecret}
	exp := time.Now().Add(time.Hour).Unix()

	for _, tc := range []struct {
		name    string
		cfg     AuthConfig
		path    string
		auth    string
		user    string
		code    int
		wantUID string
		service bool
	}{
		{name: "disabled", cfg: AuthConfig{}, path: "/v1/clients", user: "u1", code: 200, wantUID: "u1", service: true},
		{name: "health exempt", cfg: cfg, path: "/v1/health", code: 200},
		{name: "missing header", cfg: cfg, path: "/v1/clients", code: 401},
		{name: "basic scheme", cfg: cfg, path: "/v1/clients", auth: "Basic abc", code: 401},
		{name: "service token", cfg: cfg, path: "/v1/clients", auth: "Bearer svc-token", user: "u1", code: 200, wantUID: "u1", service: true},
		{name: "wrong token, no jwt secret", cfg: AuthConfig{Token: "svc-token"}, path: "/v1/clients", auth: "Bearer nope", code: 401},
		{
			name: "jwt", cfg: cfg, path: "/v1/clients", code: 200, wantUID: "u2",
			// X-SGC-User is ignored for user tokens.
			user: "u1",
			auth: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "u2", "exp": exp}),
		},
		{
			name: "jwt wrong secret", cfg: cfg, path: "/v1/clients", code: 401,
			auth: "Bearer " + signToken(t, "other", jwt.MapClaims{"sub": "u2", "exp": exp}),
		},
		{
			name: "jwt expired", cfg: cfg, path: "/v1/clients", code: 401,
			auth: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "u2", "exp": time.Now().Add(-time.Hour).Unix()}),
		},
		{
			name: "jwt without exp", cfg: cfg, path: "/v1/clients", code: 401,
			auth: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "u2"}),
		},
		{
			name: "jwt without subject", cfg: cfg, path: "/v1/clients", code: 401,
			auth: "Bearer " + signToken(t, testSecret, jwt.MapClaims{"exp": exp}),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := AuthMiddleware(tc.cfg, http.HandlerFunc(whoami))
			req := httptest.NewRequest("GET", tc.path, nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			if tc.user != "" {
				req.Header.Set(UserHeader, tc.user)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			requireStatus(t, rec, tc.code)
			if tc.code != http.StatusOK {
				return
			}
			got := decode[map[string]any](t, rec)
			if got["user"] != tc.wantUID || got["service"] != tc.service {
				t.Fatalf("expected user=%q service=%v, got %v", tc.wantUID, tc.service, got)
			}
		})
	}
}

func TestJobsRequireService(t *testing.T) {
	env := newTestEnvWith(t, Options{}, AuthConfig{Token: "svc-token", JWTSecret: testSecret})
	token := signToken(t, testSecret, jwt.MapClaims{"sub": testUser, "exp": time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest("POST", "/v1/jobs/backfill", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	requireStatus(t, rec, http.StatusForbidden)

	// Service callers get through to the (unconfigured) runner.
	req = httptest.NewRequest("POST", "/v1/jobs/backfill", nil)
	req.Header.Set("Authorization", "Bearer svc-token")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	requireStatus(t, rec, http.StatusServiceUnavailable)

	// User tokens reach user-scoped routes.
	req = httptest.NewRequest("GET", "/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	requireStatus(t, rec, http.StatusOK)
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RecoveryMiddleware(logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/clients", nil))
	requireStatus(t, rec, http.StatusInternalServerError)
}

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := LoggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	requireStatus(t, rec, http.StatusTeapot)
}
