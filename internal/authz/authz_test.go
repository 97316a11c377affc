package authz

import (
	"errors"
	"testing"

	"github.com/ballop/merchplan/internal/models"
)

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(models.Account{Role: models.RoleAdmin}); err != nil {
		t.Errorf("expected admin allowed, got %v", err)
	}
	if err := RequireAdmin(models.Account{Role: models.RoleUser}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestRequireProfile(t *testing.T) {
	tests := []struct {
		name       string
		account    models.Account
		wantDenied bool
	}{
		{"complete", models.Account{Name: "김민준", Department: "상품기획 1팀"}, false},
		{"missing department", models.Account{Name: "김민준"}, true},
		{"missing name", models.Account{Department: "상품기획 1팀"}, true},
		{"empty", models.Account{}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := RequireProfile(tc.account)
			if tc.wantDenied && !errors.Is(err, ErrProfileIncomplete) {
				t.Errorf("expected ErrProfileIncomplete, got %v", err)
			}
			if !tc.wantDenied && err != nil {
				t.Errorf("expected allowed, got %v", err)
			}
		})
	}
}
