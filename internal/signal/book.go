package signal

import (
	"sort"
	"sync"
	"time"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
)

// DefaultMaxAge is the staleness cutoff consumers use when filtering signals.
const DefaultMaxAge = 2 * time.Hour

// Book holds the latest computed signal per token mint.
// Each recompute overwrites the previous entry wholesale.
type Book struct {
	mu      sync.RWMutex
	signals map[string]domain.TradingSignal
	nowFn   func() time.Time
}

// NewBook creates an empty signal book.
func NewBook() *Book {
	return &Book{
		signals: make(map[string]domain.TradingSignal),
		nowFn:   time.Now,
	}
}

// Set stores the signal for its mint, replacing any prior entry.
func (b *Book) Set(sig domain.TradingSignal) {
	if sig.Mint == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.signals[sig.Mint] = sig
}

// Get retrieves the latest signal for a mint.
func (b *Book) Get(mint string) (domain.TradingSignal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	sig, ok := b.signals[mint]
	return sig, ok
}

// Active returns signals computed within maxAge, ordered by confidence
// descending then mint ascending. Stale entries stay in the book but are
// filtered from the result.
func (b *Book) Active(maxAge time.Duration) []domain.TradingSignal {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cutoff := b.nowFn().Add(-maxAge).UnixMilli()
	result := make([]domain.TradingSignal, 0, len(b.signals))
	for _, sig := range b.signals {
		if sig.Timestamp >= cutoff {
			result = append(result, sig)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Confidence != result[j].Confidence {
			return result[i].Confidence > result[j].Confidence
		}
		return result[i].Mint < result[j].Mint
	})
	return result
}

// Len returns the number of signals in the book, stale included.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.signals)
}
