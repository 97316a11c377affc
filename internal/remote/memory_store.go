package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store with synchronous, in-order snapshot
// delivery. It backs tests and doubles as the reference semantics for the
// Redis implementation.
type MemoryStore struct {
	mu     sync.Mutex
	leaves map[string]json.RawMessage
	subs   map[int]memorySub
	nextID int

	// TransactErr, when set, makes Transact fail. Test hook for the
	// allocation-failure path.
	TransactErr error
}

type memorySub struct {
	path string
	fn   func(json.RawMessage)
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leaves: make(map[string]json.RawMessage),
		subs:   make(map[int]memorySub),
	}
}

func (s *MemoryStore) snapshotLocked(path string) json.RawMessage {
	if v, ok := s.leaves[path]; ok {
		out := make(json.RawMessage, len(v))
		copy(out, v)
		return out
	}
	children := map[string]json.RawMessage{}
	prefix := path + "/"
	for k, v := range s.leaves {
		if strings.HasPrefix(k, prefix) {
			children[k[len(prefix):]] = v
		}
	}
	return assemble(children)
}

// notifyLocked delivers fresh snapshots to every subscription affected by a
// change at path. Callbacks run with the store lock held and must not call
// back into the store.
func (s *MemoryStore) notifyLocked(path string) {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	// Registration order keeps delivery deterministic.
	sort.Ints(ids)
	for _, id := range ids {
		sub := s.subs[id]
		if sub.path == path ||
			strings.HasPrefix(path, sub.path+"/") ||
			strings.HasPrefix(sub.path, path+"/") {
			sub.fn(s.snapshotLocked(sub.path))
		}
	}
}

func (s *MemoryStore) Get(_ context.Context, path string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(path), nil
}

func (s *MemoryStore) Set(_ context.Context, path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(path, value)
}

func (s *MemoryStore) setLocked(path string, value any) error {
	if value == nil {
		s.deleteLocked(path)
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	s.leaves[path] = data
	s.notifyLocked(path)
	return nil
}

func (s *MemoryStore) Merge(_ context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := map[string]any{}
	if v, ok := s.leaves[path]; ok {
		if err := json.Unmarshal(v, &current); err != nil {
			return fmt.Errorf("merge %s: existing value is not an object: %w", path, err)
		}
	}
	for k, v := range fields {
		current[k] = v
	}
	return s.setLocked(path, current)
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(path)
	return nil
}

func (s *MemoryStore) deleteLocked(path string) {
	removed := false
	if _, ok := s.leaves[path]; ok {
		delete(s.leaves, path)
		removed = true
	}
	prefix := path + "/"
	for k := range s.leaves {
		if strings.HasPrefix(k, prefix) {
			delete(s.leaves, k)
			removed = true
		}
	}
	if removed {
		s.notifyLocked(path)
	}
}

func (s *MemoryStore) Push(_ context.Context, path string, value any) (string, error) {
	key := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setLocked(path+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (s *MemoryStore) Transact(_ context.Context, path string, update func(current int64) int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TransactErr != nil {
		return 0, s.TransactErr
	}
	var current int64
	if v, ok := s.leaves[path]; ok {
		n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("transact %s: cell is not an integer: %w", path, err)
		}
		current = n
	}
	next := update(current)
	s.leaves[path] = json.RawMessage(strconv.FormatInt(next, 10))
	s.notifyLocked(path)
	return next, nil
}

func (s *MemoryStore) Subscribe(path string, fn func(json.RawMessage)) (Unsubscribe, error) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = memorySub{path: path, fn: fn}
	snap := s.snapshotLocked(path)
	s.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}
