package handler

import (
	"context"
	"net/http"

	"github.com/tmvalente/drivelog/internal/domain"
	"github.com/tmvalente/drivelog/internal/service"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if no user is authenticated.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// RequireAuth is middleware that protects routes requiring authentication.
// Credentials ride on every request as HTTP basic auth; there is no session
// or token state. Missing and wrong credentials get the same 401 so the
// response never reveals whether a username exists.
func RequireAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="drivelog"`)
			writeError(w, http.StatusUnauthorized, "Usuário ou senha incorretos")
			return
		}

		user, err := auth.Verify(r.Context(), name, password)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="drivelog"`)
			writeError(w, http.StatusUnauthorized, "Usuário ou senha incorretos")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CORS allows cross-origin requests from any origin, matching the mobile
// clients that call this API from file:// and app webviews.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
