package signal

import (
	"testing"
	"time"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
)

func TestBook_SetReplacesPerMint(t *testing.T) {
	b := NewBook()

	b.Set(domain.TradingSignal{Mint: "m1", Signal: domain.SignalBuy, Confidence: 20})
	b.Set(domain.TradingSignal{Mint: "m1", Signal: domain.SignalSell, Confidence: 30})

	if b.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", b.Len())
	}
	sig, ok := b.Get("m1")
	if !ok || sig.Signal != domain.SignalSell {
		t.Errorf("expected latest signal sell, got %v", sig.Signal)
	}
}

func TestBook_IgnoresEmptyMint(t *testing.T) {
	b := NewBook()
	b.Set(domain.TradingSignal{Mint: ""})
	if b.Len() != 0 {
		t.Errorf("expected empty book, got %d entries", b.Len())
	}
}

func TestBook_ActiveFiltersStaleAndSorts(t *testing.T) {
	b := NewBook()
	now := time.UnixMilli(10_000_000_000)
	b.nowFn = func() time.Time { return now }

	fresh := now.Add(-time.Hour).UnixMilli()
	stale := now.Add(-3 * time.Hour).UnixMilli()

	b.Set(domain.TradingSignal{Mint: "low", Confidence: 10, Timestamp: fresh})
	b.Set(domain.TradingSignal{Mint: "high", Confidence: 80, Timestamp: fresh})
	b.Set(domain.TradingSignal{Mint: "tie", Confidence: 10, Timestamp: fresh})
	b.Set(domain.TradingSignal{Mint: "old", Confidence: 99, Timestamp: stale})

	active := b.Active(DefaultMaxAge)
	if len(active) != 3 {
		t.Fatalf("expected 3 active signals, got %d", len(active))
	}
	if active[0].Mint != "high" {
		t.Errorf("expected highest confidence first, got %s", active[0].Mint)
	}
	// Equal confidence breaks ties by mint.
	if active[1].Mint != "low" || active[2].Mint != "tie" {
		t.Errorf("unexpected tie order: %s, %s", active[1].Mint, active[2].Mint)
	}

	// Stale entry remains in the book.
	if b.Len() != 4 {
		t.Errorf("expected 4 total entries, got %d", b.Len())
	}
}
