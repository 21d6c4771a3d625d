package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"notas/internal/auth"
)

const userIDKey contextKey = "user_id"

// userID returns the authenticated user for the request. Handlers behind
// withAuth can rely on it being present.
func userID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// withAuth requires a bearer token on the request. A missing token is 401,
// a bad or expired one is 403. With no signing secret configured no token
// can ever be verified, so that is a server error, not a client one.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		if len(s.jwtSecret) == 0 {
			slog.ErrorContext(r.Context(), "JWT secret not configured")
			writeError(w, http.StatusInternalServerError, "server misconfigured")
			return
		}

		id, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusForbidden, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, id)
		next(w, r.WithContext(ctx))
	}
}
