package middleware

import (
	"context"
	"net/http"
	"strings"

	"bankapi/internal/shared/apperr"
	"bankapi/internal/shared/logger"
)

type ContextKey string

const (
	UserIDKey    ContextKey = "user_id"
	RequestIDKey ContextKey = "request_id"
)

// Authenticator resolves a bearer token to the id of the user it was issued to.
type Authenticator interface {
	Authenticate(token string) (int64, error)
}

// Auth rejects requests without a valid bearer token and stores the caller's
// user id in the request context under UserIDKey.
func Auth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			userID, err := authenticator.Authenticate(strings.TrimSpace(token))
			if err != nil {
				msg := apperr.MessageOf(err)
				if msg == "" {
					msg = "invalid token"
				}
				l := logger.FromContext(r.Context())
				l.Debug().Err(err).Msg("rejected bearer token")
				writeError(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = logger.WithContext(ctx, logger.FromContext(ctx).With().Int64("user_id", userID).Logger())

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated caller set by Auth.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}
