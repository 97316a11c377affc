// Package authz holds the per-operation authorization checks: role checks
// for administrative operations and the profile-completeness gate.
package authz

import (
	"errors"

	"github.com/ballop/merchplan/internal/models"
)

var (
	// ErrForbidden denies an administrative operation to a non-admin.
	ErrForbidden = errors.New("forbidden")

	// ErrProfileIncomplete redirects to profile completion; only the
	// profile-completion operation itself is exempt.
	ErrProfileIncomplete = errors.New("profile incomplete")
)

// RequireAdmin allows role assignment, account-status changes, and
// brand-registry persistence.
func RequireAdmin(account models.Account) error {
	if account.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// RequireProfile gates every catalog operation until name and department
// are both populated.
func RequireProfile(account models.Account) error {
	if !account.HasProfile() {
		return ErrProfileIncomplete
	}
	return nil
}
