package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/ballop/merchplan/internal/banlog"
	"github.com/ballop/merchplan/internal/identity"
	"github.com/ballop/merchplan/internal/models"
)

// LoginHandler godoc
// @Summary Log in with a provider ID token and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "provider ID token and admin intent"
// @Success 200 {object} LoginResult
// @Failure 400 {string} string "Invalid input"
// @Failure 401 {string} string "Authentication failed"
// @Failure 403 {string} string "Account banned"
// @Router /auth/login [post]
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if req.IDToken == "" {
		http.Error(w, "missing id token", http.StatusBadRequest)
		return
	}

	ev, err := tokens.ParseIDToken(req.IDToken)
	if err != nil {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	var intent models.Role
	if req.AsAdmin {
		intent = models.RoleAdmin
	}

	account, err := gate.Resolve(r.Context(), ev, intent)
	if err != nil {
		if errors.Is(err, identity.ErrAccountBanned) {
			banlog.Record(ev.Subject, ev.Email)
			http.Error(w, "account is banned", http.StatusForbidden)
			return
		}
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	// Account resolution precedes the entity/brand subscriptions.
	if err := syncer.Attach(account); err != nil {
		log.Printf("Failed to attach sync engine: %v", err)
		http.Error(w, "could not establish session", http.StatusInternalServerError)
		return
	}

	token, err := tokens.IssueSession(account)
	if err != nil {
		syncer.Detach()
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}

	if err := writeJSON(w, http.StatusOK, LoginResult{Token: token, Account: account}); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// LogoutHandler godoc
// @Summary Terminate the session and reset local state
// @Tags auth
// @Security BearerAuth
// @Success 204 "Logged out"
// @Router /auth/logout [post]
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	gate.SignOutProvider(r.Context())
	syncer.Detach()
	w.WriteHeader(http.StatusNoContent)
}

// MeHandler godoc
// @Summary Return the resolved account of the current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Account
// @Router /me [get]
func MeHandler(w http.ResponseWriter, r *http.Request) {
	account, ok := syncer.State().Account()
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	if err := writeJSON(w, http.StatusOK, account); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// UpdateProfileHandler godoc
// @Summary Set the current account's name and department
// @Tags auth
// @Accept json
// @Security BearerAuth
// @Param profile body ProfileRequest true "profile fields"
// @Success 204 "Updated"
// @Failure 400 {string} string "Invalid input"
// @Router /me/profile [put]
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if err := pipeline.UpdateProfile(r.Context(), req.Name, req.Department); err != nil {
		http.Error(w, "could not update profile", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
