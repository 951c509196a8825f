package middleware

import (
	"context"
	"docshare/internal/models"
	utils "docshare/internal/utils/http_errors"
	"log/slog"
	"net/http"
	"strings"
)

// Auth rejects requests without a valid session token.
func Auth(log *slog.Logger, sessions SessionResolver) func(http.Handler) http.Handler {
	return authenticate(log, sessions, false)
}

// OptionalAuth lets requests without a token through as anonymous. A token
// that is present but invalid is still rejected.
func OptionalAuth(log *slog.Logger, sessions SessionResolver) func(http.Handler) http.Handler {
	return authenticate(log, sessions, true)
}

func authenticate(log *slog.Logger, sessions SessionResolver, optional bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := pkg + "Auth"

			log := log.With(slog.String("op", op))

			token := Token(r)
			if token == "" && optional {
				next.ServeHTTP(w, r)
				return
			}
			if token == "" {
				utils.WriteJSONError(w, http.StatusUnauthorized, "token is required")
				return
			}

			requester, err := sessions.UserByToken(r.Context(), token)
			if err != nil {
				log.Warn("failed get user by token", slog.String("error", err.Error()))
				utils.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), models.UserContextKey, requester)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Token reads the session token from a bearer Authorization header or the token query parameter.
func Token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("token")
}

// Requester returns the authenticated user, or nil for anonymous requests.
func Requester(r *http.Request) *models.User {
	user, _ := r.Context().Value(models.UserContextKey).(*models.User)
	return user
}
