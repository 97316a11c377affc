package blob

import (
	"context"
	"net/url"
	"sync"
)

// MemoryStore is an in-memory blob store for tests and local use.
type MemoryStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	baseURL string

	// PutErr, when set, makes every Put fail. Test hook for the
	// upload-failure path.
	PutErr error
}

// NewMemoryStore creates an empty MemoryStore serving URLs under baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte), baseURL: baseURL}
}

func (s *MemoryStore) Put(_ context.Context, path string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PutErr != nil {
		return "", s.PutErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[path] = cp
	return s.baseURL + "/files/" + url.PathEscape(path), nil
}

func (s *MemoryStore) Get(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[path]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return data, nil
}

// Len reports how many payloads are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
