package market

import (
	"sort"
	"sync"
)

// TokenRegistry is the append-only set of known token mints.
// Duplicates are ignored; there is no removal.
type TokenRegistry struct {
	mu    sync.RWMutex
	mints map[string]struct{}
}

// NewTokenRegistry creates an empty registry.
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		mints: make(map[string]struct{}),
	}
}

// Add records a mint. Idempotent; empty mints are ignored.
func (r *TokenRegistry) Add(mint string) {
	if mint == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.mints[mint] = struct{}{}
}

// AddPair records a pool's base and quote mints.
func (r *TokenRegistry) AddPair(baseMint, quoteMint string) {
	r.Add(baseMint)
	r.Add(quoteMint)
}

// Contains reports whether a mint is known.
func (r *TokenRegistry) Contains(mint string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.mints[mint]
	return ok
}

// All returns the known mints sorted ascending for deterministic persistence.
func (r *TokenRegistry) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.mints))
	for mint := range r.mints {
		result = append(result, mint)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of known mints.
func (r *TokenRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.mints)
}

// Restore re-adds mints from persisted state.
func (r *TokenRegistry) Restore(mints []string) {
	for _, mint := range mints {
		r.Add(mint)
	}
}
