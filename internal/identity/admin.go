package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ballop/merchplan/internal/models"
	"github.com/ballop/merchplan/internal/remote"
)

// Administrative account operations. Callers must have passed the admin
// role check; these only exist while a remote store is attached.

// SetRole assigns a role to the account at uid.
func (g *Gate) SetRole(ctx context.Context, uid string, role models.Role) error {
	if g.store == nil {
		return remote.ErrNotAttached
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		return fmt.Errorf("unknown role %q", role)
	}
	if err := g.store.Merge(ctx, userPath(uid), map[string]any{"role": string(role)}); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// SetStatus bans or reactivates the account at uid.
func (g *Gate) SetStatus(ctx context.Context, uid string, status models.AccountStatus) error {
	if g.store == nil {
		return remote.ErrNotAttached
	}
	if status != models.AccountActive && status != models.AccountBanned {
		return fmt.Errorf("unknown account status %q", status)
	}
	if err := g.store.Merge(ctx, userPath(uid), map[string]any{"status": string(status)}); err != nil {
		return fmt.Errorf("set account status: %w", err)
	}
	return nil
}

// ListAccounts reads every account record; admin surface only.
func (g *Gate) ListAccounts(ctx context.Context) ([]models.Account, error) {
	if g.store == nil {
		return nil, remote.ErrNotAttached
	}
	raw, err := g.store.Get(ctx, "users")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if raw == nil {
		return []models.Account{}, nil
	}
	accounts, err := decodeAccounts(raw)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func decodeAccounts(raw json.RawMessage) ([]models.Account, error) {
	var byUID map[string]models.Account
	if err := json.Unmarshal(raw, &byUID); err != nil {
		return nil, err
	}
	out := make([]models.Account, 0, len(byUID))
	for uid, a := range byUID {
		a.UID = uid
		a.NormalizeProfile()
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}
