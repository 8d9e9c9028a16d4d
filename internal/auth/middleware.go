package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/EngSenku/ensat/internal/httputil"
)

type contextKey string

// UserKey is the context key for the authenticated user
const UserKey contextKey = "user"

// RequireSession validates the bearer session token on every request and
// adds the resolved user to the request context. Requests without a live
// session are rejected before any handler runs.
func RequireSession(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)

			user, err := service.Validate(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrUnauthenticated) {
					logger.Warn("unauthenticated request", "path", r.URL.Path)
					httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				logger.Error("session validation failed", "error", err)
				httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated user from context
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(UserKey).(*User)
	return user, ok
}

// BearerToken extracts the session token from the Authorization header.
// Returns "" when the header is missing or not bearer-shaped.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
