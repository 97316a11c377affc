// Package blob is the binary attachment storage boundary: byte payloads
// keyed by path, retrievable through a URL.
package blob

import (
	"context"
	"errors"
)

var ErrBlobNotFound = errors.New("blob not found")

// Store accepts byte payloads and hands back retrievable URLs. No update
// or delete semantics are needed by the catalog.
type Store interface {
	// Put stores data under path and returns the URL it is served from.
	Put(ctx context.Context, path string, data []byte) (string, error)
	// Get returns the payload stored under path.
	Get(ctx context.Context, path string) ([]byte, error)
}
