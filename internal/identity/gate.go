// Package identity resolves external authentication events into internal
// accounts and owns session token handling.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ballop/merchplan/internal/models"
	"github.com/ballop/merchplan/internal/remote"
)

var (
	// ErrAuthenticationFailed covers provider rejections and malformed
	// tokens. The pending role intent never survives it.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrAccountBanned is terminal for the session: the provider is signed
	// out and no account record is handed to the caller.
	ErrAccountBanned = errors.New("account is banned")
)

// AuthEvent is one authentication event from the external provider.
type AuthEvent struct {
	Subject     string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Provider is the slice of the external identity provider the gate needs:
// the ability to terminate its session.
type Provider interface {
	SignOut(ctx context.Context) error
}

// Gate provisions and updates accounts from authentication events. Account
// resolution is the precondition for the sync engine's subscriptions.
type Gate struct {
	store    remote.Store // nil in local-only mode
	provider Provider     // nil when sign-out is handled elsewhere
	log      *zap.Logger
	now      func() time.Time
}

// NewGate creates a Gate. store may be nil for local-only operation.
func NewGate(store remote.Store, provider Provider, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{store: store, provider: provider, log: log, now: time.Now}
}

func userPath(uid string) string { return "users/" + uid }

// Resolve produces or updates the account for ev. intent, when non-empty,
// is the role the login wants to act as; a differing stored role is
// promoted in the same call. Banned accounts are rejected and signed out.
func (g *Gate) Resolve(ctx context.Context, ev AuthEvent, intent models.Role) (models.Account, error) {
	if ev.Subject == "" {
		return models.Account{}, fmt.Errorf("%w: event has no subject", ErrAuthenticationFailed)
	}

	if g.store == nil {
		// Local-only: nothing to persist, the session lives in memory.
		account := newAccount(ev, g.now())
		if intent != "" {
			account.Role = intent
		}
		return account, nil
	}

	raw, err := g.store.Get(ctx, userPath(ev.Subject))
	if err != nil {
		return models.Account{}, fmt.Errorf("read account: %w", err)
	}

	var account models.Account
	if raw == nil {
		account = newAccount(ev, g.now())
		if err := g.store.Set(ctx, userPath(ev.Subject), account); err != nil {
			return models.Account{}, fmt.Errorf("create account: %w", err)
		}
	} else {
		if err := json.Unmarshal(raw, &account); err != nil {
			return models.Account{}, fmt.Errorf("decode account: %w", err)
		}
		if account.Status == models.AccountBanned {
			g.signOut(ctx)
			return models.Account{}, ErrAccountBanned
		}
		account.UID = ev.Subject
		if account.DisplayName == "" {
			account.DisplayName = ev.DisplayName
		}
		account.NormalizeProfile()
		account.LastLogin = g.now().Format(time.RFC3339)
		err := g.store.Merge(ctx, userPath(ev.Subject), map[string]any{
			"lastLogin":  account.LastLogin,
			"name":       account.Name,
			"department": account.Department,
		})
		if err != nil {
			return models.Account{}, fmt.Errorf("update account: %w", err)
		}
	}

	if intent != "" && intent != account.Role {
		err := g.store.Merge(ctx, userPath(ev.Subject), map[string]any{"role": string(intent)})
		if err != nil {
			// Non-fatal: the session continues with the stored role.
			g.log.Warn("role promotion failed",
				zap.String("uid", ev.Subject), zap.Error(err))
		} else {
			account.Role = intent
		}
	}

	return account, nil
}

// SignOutProvider forwards a sign-out request to the external provider.
func (g *Gate) SignOutProvider(ctx context.Context) {
	g.signOut(ctx)
}

func (g *Gate) signOut(ctx context.Context) {
	if g.provider == nil {
		return
	}
	if err := g.provider.SignOut(ctx); err != nil {
		g.log.Warn("provider sign-out failed", zap.Error(err))
	}
}

func newAccount(ev AuthEvent, now time.Time) models.Account {
	account := models.Account{
		UID:         ev.Subject,
		Email:       ev.Email,
		DisplayName: ev.DisplayName,
		PhotoURL:    ev.PhotoURL,
		Role:        models.RoleUser,
		Status:      models.AccountActive,
		LastLogin:   now.Format(time.RFC3339),
		Name:        ev.DisplayName,
		Department:  "",
	}
	return account
}
