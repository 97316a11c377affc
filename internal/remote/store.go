// Package remote defines the hierarchical key-value store boundary the
// catalog is synced against, with a Redis-backed implementation and an
// in-memory one.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotAttached is returned by operations that require a remote store
	// when the process runs in local-only mode.
	ErrNotAttached = errors.New("remote store not attached")

	// ErrTxContention is returned when a counter transaction keeps losing
	// against concurrent writers.
	ErrTxContention = errors.New("transaction retries exhausted")
)

// Unsubscribe tears down a subscription. Safe to call more than once.
type Unsubscribe func()

// Store is a hierarchical key-value space addressed by slash-separated
// paths. Reading a path that only has children yields a JSON object keyed
// by child name; reading an absent path yields a nil snapshot.
type Store interface {
	// Get returns the full value at path, or nil if absent.
	Get(ctx context.Context, path string) (json.RawMessage, error)
	// Set replaces the full value at path. A nil value deletes it.
	Set(ctx context.Context, path string, value any) error
	// Merge writes only the given fields into the object at path.
	Merge(ctx context.Context, path string, fields map[string]any) error
	// Delete removes path and everything under it.
	Delete(ctx context.Context, path string) error
	// Push stores value under a freshly minted child key of path and
	// returns that key.
	Push(ctx context.Context, path string, value any) (string, error)
	// Transact atomically applies update to the integer cell at path and
	// returns the post-update value. Absent cells read as 0. Linearizable
	// per path.
	Transact(ctx context.Context, path string, update func(current int64) int64) (int64, error)
	// Subscribe watches path and invokes fn with a full-value snapshot on
	// every change, in delivery order, starting with the current value.
	Subscribe(path string, fn func(snapshot json.RawMessage)) (Unsubscribe, error)
}

// assemble builds the snapshot for a watched path from leaf entries keyed
// by path relative to it. An empty map yields a nil snapshot.
func assemble(leaves map[string]json.RawMessage) json.RawMessage {
	if len(leaves) == 0 {
		return nil
	}
	root := map[string]any{}
	keys := make([]string, 0, len(leaves))
	for k := range leaves {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		node := root
		segs := strings.Split(k, "/")
		for _, seg := range segs[:len(segs)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[seg] = child
			}
			node = child
		}
		var v any
		if err := json.Unmarshal(leaves[k], &v); err != nil {
			continue
		}
		node[segs[len(segs)-1]] = v
	}
	out, err := json.Marshal(root)
	if err != nil {
		return nil
	}
	return out
}

// ancestors returns path and every prefix of it, deepest first.
func ancestors(path string) []string {
	out := []string{path}
	for {
		i := strings.LastIndexByte(path, '/')
		if i < 0 {
			return out
		}
		path = path[:i]
		out = append(out, path)
	}
}
