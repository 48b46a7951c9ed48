package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserHeader selects the acting user for service-token and unauthenticated
// requests.
const UserHeader = "X-SGC-User"

// AuthConfig holds the credentials accepted by AuthMiddleware. When both
// are empty, auth is disabled.
type AuthConfig struct {
	// Token is the static service token.
	Token string
	// JWTSecret verifies HS256 user tokens.
	JWTSecret string
}

func (c AuthConfig) enabled() bool {
	return c.Token != "" || c.JWTSecret != ""
}

// principal is the authenticated caller of a request.
type principal struct {
	UserID  string
	Service bool
}

type contextKey struct{}

func withPrincipal(ctx context.Context, p principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func principalFrom(ctx context.Context) principal {
	p, _ := ctx.Value(contextKey{}).(principal)
	return p
}

// AuthMiddleware wraps an http.Handler and resolves the caller from the
// Authorization header. A Bearer value equal to the service token grants
// service access with the user taken from X-SGC-User; any other value must
// be an HS256 JWT whose subject is the user. GET /v1/health is always exempt.
func AuthMiddleware(cfg AuthConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Exempt health check.
		if r.Method == http.MethodGet && r.URL.Path == "/v1/health" {
			next.ServeHTTP(w, r)
			return
		}

		if !cfg.enabled() {
			p := principal{UserID: r.Header.Get(UserHeader), Service: true}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "invalid authorization scheme")
			return
		}
		provided := strings.TrimPrefix(auth, "Bearer ")

		if cfg.Token != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.Token)) == 1 {
			p := principal{UserID: r.Header.Get(UserHeader), Service: true}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
			return
		}
		if cfg.JWTSecret == "" {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		sub, err := verifyJWT(provided, cfg.JWTSecret)
		if err != nil {
			slog.Debug("jwt rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal{UserID: sub})))
	})
}

// verifyJWT checks an HS256 token and returns its subject.
func verifyJWT(token, secret string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("read subject: %w", err)
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// requireService rejects callers without service access.
func requireService(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !principalFrom(r.Context()).Service {
			writeError(w, http.StatusForbidden, "service access required")
			return
		}
		next(w, r)
	}
}

// userID returns the acting user, writing a 400 when there is none.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := principalFrom(r.Context()).UserID
	if id == "" {
		writeError(w, http.StatusBadRequest, UserHeader+" header is required")
		return "", false
	}
	return id, true
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs the method, path, status and duration of every request.
func LoggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		}
		if rec.status >= http.StatusInternalServerError {
			logger.Error("request completed", attrs...)
		} else {
			logger.Info("request completed", attrs...)
		}
	})
}

// RecoveryMiddleware catches panics in downstream handlers, logs the stack
// trace, and returns a 500 instead of crashing the server.
func RecoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered in HTTP handler",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", fmt.Sprintf("%v", v),
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
