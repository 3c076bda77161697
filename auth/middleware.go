package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	// UserIDKey carries the authenticated user id through request contexts.
	UserIDKey contextKey = "user_id"
	// UsernameKey carries the authenticated username.
	UsernameKey contextKey = "username"
)

// Middleware validates the Authorization bearer token and injects the
// caller's identity into the request context for downstream handlers.
func Middleware(tokens *TokenManager, onReject func(w http.ResponseWriter, status int, msg string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				onReject(w, http.StatusUnauthorized, "authorization token is missing")
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			claims, err := tokens.Validate(tokenStr)
			if err != nil {
				onReject(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user id, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok
}
