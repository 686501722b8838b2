package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "calendrier/internal/delivery/http/helpers"
	"calendrier/internal/domain"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	sessionIDKey contextKey = "sessionID"
)

// Authenticator resolves a bearer token to its live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// SetSession returns a context carrying the authenticated account and session ids.
func SetSession(ctx context.Context, s *domain.Session) context.Context {
	ctx = context.WithValue(ctx, userIDKey, s.AccountID)
	return context.WithValue(ctx, sessionIDKey, s.ID)
}

// UserIDFromContext returns the authenticated account ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// SessionIDFromContext returns the session backing the request, if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}

// RequireAuth returns a wrapper that validates the Bearer token and its session.
// If either is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(auth Authenticator, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token := strings.TrimSpace(header[len(prefix):])
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			session, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				logger.DebugContext(r.Context(), "authentication failed", "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired session")
				return
			}
			next(w, r.WithContext(SetSession(r.Context(), session)))
		}
	}
}
