package auth

import (
	"net/http"

	"github.com/stockroom-ims/stockroom/internal/shared"
)

// LoginPath is where anonymous requests are sent.
const LoginPath = "/auth/login"

// RequireAuth redirects anonymous page requests to the login form and
// rejects anonymous API calls with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.ActorFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Accept") == "application/json" {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, LoginPath, http.StatusSeeOther)
	})
}
