package models

// Role of an account. Admins may manage brands and other accounts.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// AccountStatus is the moderation state of an account.
type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountBanned AccountStatus = "banned"
)

// Account is the internal record kept for an externally authenticated user,
// stored at users/{uid} in the remote store.
type Account struct {
	UID         string        `json:"uid"`
	Email       string        `json:"email,omitempty"`
	DisplayName string        `json:"displayName,omitempty"`
	PhotoURL    string        `json:"photoURL,omitempty"`
	Role        Role          `json:"role"`
	Status      AccountStatus `json:"status"`
	LastLogin   string        `json:"lastLogin,omitempty"`
	Name        string        `json:"name"`
	Department  string        `json:"department"`
}

// NormalizeProfile backfills absent profile fields so downstream consumers
// never see missing values. Applied at every account ingestion point.
func (a *Account) NormalizeProfile() {
	if a.Name == "" {
		a.Name = a.DisplayName
	}
	// Name stays "" when the display name is also empty; Department has no
	// external fallback.
}

// HasProfile reports whether the profile is complete enough to use the
// catalog surface.
func (a Account) HasProfile() bool {
	return a.Name != "" && a.Department != ""
}
