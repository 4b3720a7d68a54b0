package handlers

import (
	"net/http"

	"github.com/plainpress/server/internal/services"
	"github.com/plainpress/server/internal/session"
	"github.com/plainpress/server/types"
)

// LoadSession resolves the visitor's session from the cookie and stores the
// token and status in the request context. A live session gets its cookie
// re-issued so the cookie lifetime slides with the store's idle TTL.
func LoadSession(cookies *session.CookieCodec, auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := cookies.Token(r)
			status := types.AnonymousStatus()
			if token != "" {
				status = auth.Status(r.Context(), token)
			}
			if status.IsAuthenticated {
				_ = cookies.Write(w, token)
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), token, status)))
		})
	}
}

// RequireAdmin lets the request through only for admin sessions. Browsers are
// sent to the login page; API clients get 401 or 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, status := sessionFromContext(r.Context())
		if status.IsAdmin {
			next.ServeHTTP(w, r)
			return
		}

		if !wantsJSON(r) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if !status.IsAuthenticated {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeError(w, http.StatusForbidden, "admin access required")
	})
}
