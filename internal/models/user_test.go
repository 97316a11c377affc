package models

import "testing"

func TestNormalizeProfile(t *testing.T) {
	a := Account{DisplayName: "김민준"}
	a.NormalizeProfile()
	if a.Name != "김민준" {
		t.Errorf("expected name backfilled from display name, got %q", a.Name)
	}

	a = Account{Name: "이서연", DisplayName: "김민준"}
	a.NormalizeProfile()
	if a.Name != "이서연" {
		t.Errorf("expected an existing name kept, got %q", a.Name)
	}

	a = Account{}
	a.NormalizeProfile()
	if a.Name != "" {
		t.Errorf("expected no fallback without a display name, got %q", a.Name)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPlanning, StatusProduction, StatusSales, StatusDiscontinued} {
		if !ValidStatus(s) {
			t.Errorf("expected %q valid", s)
		}
	}
	if ValidStatus("Archived") {
		t.Error("expected unknown stage rejected")
	}
	if ValidStatus("") {
		t.Error("expected empty stage rejected")
	}
}
