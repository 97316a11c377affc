package sku

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ballop/merchplan/internal/remote"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		brand string
		want  string
	}{
		{"밸롭", "B"},
		{"웨이든", "W"},
		{"부기프리", "F"},
		{"파스티야", "P"},
		{"무명브랜드", "X"},
		{"", "X"},
	}
	for _, tc := range tests {
		if got := Prefix(tc.brand); got != tc.want {
			t.Errorf("Prefix(%q) = %q, want %q", tc.brand, got, tc.want)
		}
	}
}

func TestNextLocalOnly(t *testing.T) {
	a := NewAllocator(nil, nil)

	got, err := a.Next(context.Background(), "밸롭")
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if got != "B00000000" {
		t.Errorf("expected B00000000, got %q", got)
	}

	got, err = a.Next(context.Background(), "무명브랜드")
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if got != "X00000000" {
		t.Errorf("expected X00000000, got %q", got)
	}
}

func TestNextSequential(t *testing.T) {
	store := remote.NewMemoryStore()
	a := NewAllocator(store, nil)
	ctx := context.Background()

	got, err := a.Next(ctx, "밸롭")
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if got != "B00000001" {
		t.Errorf("expected B00000001, got %q", got)
	}

	// Counters are independent per prefix.
	got, err = a.Next(ctx, "웨이든")
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if got != "W00000001" {
		t.Errorf("expected W00000001, got %q", got)
	}
}

func TestNextResumesExistingCounter(t *testing.T) {
	store := remote.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, "skuCounters/B", 7); err != nil {
		t.Fatalf("seed counter: %v", err)
	}

	a := NewAllocator(store, nil)
	got, err := a.Next(ctx, "밸롭")
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if got != "B00000008" {
		t.Errorf("expected B00000008, got %q", got)
	}
}

func TestNextConcurrentAllocationsAreDistinct(t *testing.T) {
	store := remote.NewMemoryStore()
	a := NewAllocator(store, nil)

	const n = 50
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sku, err := a.Next(context.Background(), "밸롭")
			if err != nil {
				t.Errorf("Next returned error: %v", err)
				return
			}
			results <- sku
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, n)
	for sku := range results {
		if seen[sku] {
			t.Fatalf("duplicate SKU issued: %q", sku)
		}
		seen[sku] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct SKUs, got %d", n, len(seen))
	}
	// The full range 1..n must be covered with no gaps.
	for i := 1; i <= n; i++ {
		want := Prefix("밸롭")
		if !seen[want+pad8(i)] {
			t.Errorf("missing SKU for sequence %d", i)
		}
	}
}

func pad8(n int) string {
	digits := []byte("00000000")
	for i := len(digits) - 1; n > 0 && i >= 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits)
}

func TestNextCounterFailureReturnsSentinel(t *testing.T) {
	store := remote.NewMemoryStore()
	store.TransactErr = errors.New("counter unavailable")
	a := NewAllocator(store, nil)

	got, err := a.Next(context.Background(), "밸롭")
	if !errors.Is(err, ErrAllocationFailed) {
		t.Fatalf("expected ErrAllocationFailed, got %v", err)
	}
	if got != "BERR" {
		t.Errorf("expected the BERR sentinel, got %q", got)
	}
}
