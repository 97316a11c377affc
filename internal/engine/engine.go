// Package engine keeps the local mirrors consistent with the remote store
// through live subscriptions, and serves the static collection when no
// store is attached.
package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ballop/merchplan/internal/models"
	"github.com/ballop/merchplan/internal/remote"
)

// Engine owns the subscriptions that feed State. Per mirror it moves
// between unattached (static/local data) and attached+subscribed; the
// latter requires both a remote store and a resolved account.
type Engine struct {
	store remote.Store // nil when no remote store is configured
	state *State
	log   *zap.Logger

	mu     sync.Mutex
	gen    uint64
	unsubs []remote.Unsubscribe
}

// New creates an Engine over state. store may be nil.
func New(store remote.Store, state *State, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, state: state, log: log}
}

// State returns the mirror state the engine writes to.
func (e *Engine) State() *State { return e.state }

// Remote returns the store the engine commits through when attached.
func (e *Engine) Remote() remote.Store { return e.store }

// Attached reports whether both a remote store and a resolved account are
// present, i.e. whether mutations should commit remotely.
func (e *Engine) Attached() bool {
	if e.store == nil {
		return false
	}
	_, ok := e.state.Account()
	return ok
}

// Attach publishes account into the mirror and, when a remote store is
// present, establishes the product, brand, and account subscriptions.
// A previous attachment is torn down first; its callbacks cannot leak into
// the new one.
func (e *Engine) Attach(account models.Account) error {
	e.teardown()

	e.state.SetAccount(&account)
	if e.store == nil {
		return nil
	}

	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()

	subs := []struct {
		path string
		fn   func(json.RawMessage)
	}{
		{"products", func(snap json.RawMessage) { e.apply(gen, func() { e.applyProducts(snap) }) }},
		{"settings/brands", func(snap json.RawMessage) { e.apply(gen, func() { e.applyBrands(snap) }) }},
		{userPath(account.UID), func(snap json.RawMessage) { e.apply(gen, func() { e.applyAccount(snap) }) }},
	}

	var unsubs []remote.Unsubscribe
	for _, sub := range subs {
		u, err := e.store.Subscribe(sub.path, sub.fn)
		if err != nil {
			for _, prev := range unsubs {
				prev()
			}
			return fmt.Errorf("subscribe %s: %w", sub.path, err)
		}
		unsubs = append(unsubs, u)
	}

	e.mu.Lock()
	if e.gen != gen {
		// Detached while subscribing; drop the fresh subscriptions.
		e.mu.Unlock()
		for _, u := range unsubs {
			u()
		}
		return nil
	}
	e.unsubs = unsubs
	e.mu.Unlock()

	e.log.Info("sync engine attached", zap.String("uid", account.UID))
	return nil
}

// Detach tears the subscriptions down, resets the product mirror to the
// seed collection, restores the default brand registry, and clears the
// account. Used on logout and on remote-store detachment.
func (e *Engine) Detach() {
	e.teardown()
	e.state.SetProducts(models.SeedProducts())
	e.state.SetBrands(append([]string(nil), models.DefaultBrands...))
	e.state.SetAccount(nil)
	e.log.Info("sync engine detached")
}

// teardown bumps the generation so in-flight callbacks become no-ops, then
// unsubscribes.
func (e *Engine) teardown() {
	e.mu.Lock()
	e.gen++
	unsubs := e.unsubs
	e.unsubs = nil
	e.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

// apply runs fn only if the subscription that delivered the snapshot still
// belongs to the current attachment.
func (e *Engine) apply(gen uint64, fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return
	}
	fn()
}

// applyProducts replaces the product mirror from a full-value snapshot:
// every key under products/ becomes one entity with the key as identifier.
func (e *Engine) applyProducts(snap json.RawMessage) {
	if len(snap) == 0 {
		e.state.SetProducts([]models.Product{})
		return
	}
	var byKey map[string]models.Product
	if err := json.Unmarshal(snap, &byKey); err != nil {
		e.log.Warn("ignoring malformed products snapshot", zap.Error(err))
		return
	}
	products := make([]models.Product, 0, len(byKey))
	for key, p := range byKey {
		p.ID = key
		products = append(products, p)
	}
	// Snapshot keys are unordered; sort so identical snapshots produce
	// identical mirrors.
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	e.state.SetProducts(products)
}

// applyBrands replaces the registry only for array-shaped snapshots; any
// other payload keeps the stale list.
func (e *Engine) applyBrands(snap json.RawMessage) {
	trimmed := bytes.TrimSpace(snap)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return
	}
	var brands []string
	if err := json.Unmarshal(trimmed, &brands); err != nil {
		e.log.Warn("ignoring malformed brands snapshot", zap.Error(err))
		return
	}
	e.state.SetBrands(brands)
}

// applyAccount treats an absent snapshot as no change and overwrites from a
// present one after profile normalization.
func (e *Engine) applyAccount(snap json.RawMessage) {
	if len(snap) == 0 {
		return
	}
	var account models.Account
	if err := json.Unmarshal(snap, &account); err != nil {
		e.log.Warn("ignoring malformed account snapshot", zap.Error(err))
		return
	}
	account.NormalizeProfile()
	e.state.SetAccount(&account)
}

func userPath(uid string) string { return "users/" + uid }
