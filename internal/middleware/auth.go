package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taskhive/taskhive/internal/ctxkeys"
	"github.com/taskhive/taskhive/internal/service"
)

// AuthMiddleware resolves the acting user from the session cookie or a
// bearer header and adds it to the request context. The bearer form exists
// for clients whose primary transport is the realtime channel: uploads still
// go over HTTP and carry the same session token in the Authorization header.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""

			cookie, err := r.Cookie(authService.CookieName())
			if err == nil {
				token = cookie.Value
			}
			// An absent or empty cookie falls through to the bearer header.
			if token == "" {
				if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
					token = strings.TrimPrefix(header, "Bearer ")
				}
			}

			if token == "" {
				// No credentials, continue without auth
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.ResolveUser(token)
			if err != nil {
				// Invalid or stale token, clear cookie and continue
				authService.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			// The password hash stays out of the request context.
			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects unauthenticated requests with 401 AUTH_REQUIRED.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "authentication required",
				"code":  "AUTH_REQUIRED",
			})
			return
		}

		next.ServeHTTP(w, r)
	}
}
