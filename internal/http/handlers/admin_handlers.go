package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ballop/merchplan/internal/models"
	"github.com/ballop/merchplan/internal/remote"
)

// ListUsersHandler godoc
// @Summary List all accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Account
// @Failure 503 {string} string "No remote store"
// @Router /admin/users [get]
func ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := gate.ListAccounts(r.Context())
	if err != nil {
		if errors.Is(err, remote.ErrNotAttached) {
			http.Error(w, "no remote store attached", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "could not list accounts", http.StatusInternalServerError)
		return
	}
	if err := writeJSON(w, http.StatusOK, accounts); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// SetUserRoleHandler godoc
// @Summary Assign an account's role
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param uid path string true "Account UID"
// @Param role body RoleRequest true "New role"
// @Success 204 "Updated"
// @Failure 400 {string} string "Invalid role"
// @Router /admin/users/{uid}/role [patch]
func SetUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	err := gate.SetRole(r.Context(), chi.URLParam(r, "uid"), models.Role(req.Role))
	adminWriteResult(w, err)
}

// SetUserStatusHandler godoc
// @Summary Ban or reactivate an account
// @Tags admin
// @Accept json
// @Security BearerAuth
// @Param uid path string true "Account UID"
// @Param status body AccountStatusRequest true "New status"
// @Success 204 "Updated"
// @Failure 400 {string} string "Invalid status"
// @Router /admin/users/{uid}/status [patch]
func SetUserStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req AccountStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	err := gate.SetStatus(r.Context(), chi.URLParam(r, "uid"), models.AccountStatus(req.Status))
	adminWriteResult(w, err)
}

func adminWriteResult(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, remote.ErrNotAttached):
		http.Error(w, "no remote store attached", http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
