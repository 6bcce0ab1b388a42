package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type adminIDKey struct{}

// SessionValidator resolves a bearer token to an admin id.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (string, bool, error)
}

// RequireAdmin guards admin routes with a session token taken from
// "Authorization: Bearer" or, for browser WebSocket clients, the "token"
// query parameter. With required unset it passes every request through.
func RequireAdmin(sessions SessionValidator, required bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !required {
				next.ServeHTTP(w, r)
				return
			}

			token := requestToken(r)
			if token == "" || sessions == nil {
				writeUnauthorized(w, "Authentication required")
				return
			}

			adminID, ok, err := sessions.Validate(r.Context(), token)
			if err != nil {
				logger.Warn("admin session lookup failed", zap.Error(err))
				writeUnauthorized(w, "Authentication required")
				return
			}
			if !ok {
				writeUnauthorized(w, "Session expired. Please log in again.")
				return
			}

			ctx := context.WithValue(r.Context(), adminIDKey{}, adminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminID returns the admin attached by RequireAdmin, if any.
func AdminID(ctx context.Context) string {
	id, _ := ctx.Value(adminIDKey{}).(string)
	return id
}

func requestToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
