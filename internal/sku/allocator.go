// Package sku issues brand-prefixed sequential product identifiers backed
// by atomic counter cells in the remote store.
package sku

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ballop/merchplan/internal/remote"
)

// ErrAllocationFailed marks a SKU that came back as a sentinel and must not
// be persisted without remediation.
var ErrAllocationFailed = errors.New("sku allocation failed")

// prefixByBrand maps brand names to their single-letter SKU prefix.
// Configuration-adjacent; unknown brands fall back to "X".
var prefixByBrand = map[string]string{
	"밸롭":   "B",
	"웨이든":  "W",
	"부기프리": "F",
	"파스티야": "P",
}

// Prefix resolves the SKU prefix for a brand.
func Prefix(brand string) string {
	if p, ok := prefixByBrand[brand]; ok {
		return p
	}
	return "X"
}

// Allocator hands out {prefix}{8-digit sequence} identifiers.
type Allocator struct {
	store remote.Store // nil in local-only mode
	log   *zap.Logger
}

// NewAllocator creates an Allocator. store may be nil; allocations are then
// deterministic and not unique, acceptable only in local-only mode.
func NewAllocator(store remote.Store, log *zap.Logger) *Allocator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Allocator{store: store, log: log}
}

// Next returns the next SKU for brand. Concurrent calls for the same brand
// never observe the same sequence number. On counter failure the returned
// SKU is the "{prefix}ERR" sentinel alongside ErrAllocationFailed; it is
// never retried here.
func (a *Allocator) Next(ctx context.Context, brand string) (string, error) {
	prefix := Prefix(brand)

	if a.store == nil {
		return prefix + "00000000", nil
	}

	seq, err := a.store.Transact(ctx, "skuCounters/"+prefix, func(current int64) int64 {
		return current + 1
	})
	if err != nil {
		a.log.Error("sku counter transaction failed",
			zap.String("brand", brand), zap.String("prefix", prefix), zap.Error(err))
		return prefix + "ERR", fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}
	return fmt.Sprintf("%s%08d", prefix, seq), nil
}
