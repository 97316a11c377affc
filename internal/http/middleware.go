package http

import (
	"net/http"
	"strings"

	"github.com/ballop/merchplan/internal/authz"
	"github.com/ballop/merchplan/internal/engine"
	"github.com/ballop/merchplan/internal/identity"
	"github.com/ballop/merchplan/internal/models"
)

var (
	tokens *identity.Tokens
	state  *engine.State
)

// SetTokens wires the session token helper used by the auth middleware.
func SetTokens(t *identity.Tokens) {
	tokens = t
}

// SetState wires the mirror state sessions are validated against.
func SetState(s *engine.State) {
	state = s
}

// AuthMiddleware requires a valid session token whose subject matches the
// resolved account. Sessions of banned accounts are terminated on sight.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			http.Error(w, "missing or invalid token", http.StatusUnauthorized)
			return
		}

		uid, _, err := tokens.ParseSession(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		account, ok := state.Account()
		if !ok || account.UID != uid {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}
		if account.Status == models.AccountBanned {
			http.Error(w, "account is banned", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireProfile redirects to profile completion until name and department
// are both set. The profile route itself is never behind this.
func RequireProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := state.Account()
		if !ok || authz.RequireProfile(account) != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"profile incomplete","redirect":"/me/profile"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin denies administrative routes to non-admins.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, ok := state.Account()
		if !ok || authz.RequireAdmin(account) != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
