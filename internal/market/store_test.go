package market

import (
	"fmt"
	"testing"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
)

func snapshot(address string, price, native float64, ts int64) domain.PoolSnapshot {
	return domain.PoolSnapshot{
		Address:      address,
		IsNativeBase: false,
		BaseMint:     "TokenMint",
		QuoteMint:    "So11111111111111111111111111111111111111112",
		Price:        price,
		Reserves:     domain.Reserves{Native: native, Token: native * 1000},
		Timestamp:    ts,
	}
}

func TestPoolStore_FirstUpsertHasNoHistory(t *testing.T) {
	store := NewPoolStore()

	rec := store.Upsert(snapshot("pool1", 0.5, 10, 1000))

	if len(rec.PriceHistory) != 0 {
		t.Errorf("expected empty price history, got %d entries", len(rec.PriceHistory))
	}
	if len(rec.LiquidityHistory) != 0 {
		t.Errorf("expected empty liquidity history, got %d entries", len(rec.LiquidityHistory))
	}
	if rec.Price != 0.5 {
		t.Errorf("expected price 0.5, got %f", rec.Price)
	}
}

func TestPoolStore_UpsertAppendsPreviousState(t *testing.T) {
	store := NewPoolStore()

	store.Upsert(snapshot("pool1", 0.5, 10, 1000))
	rec := store.Upsert(snapshot("pool1", 0.6, 12, 2000))

	// The history holds the PREVIOUS observation, not the current one.
	if len(rec.PriceHistory) != 1 {
		t.Fatalf("expected 1 price history entry, got %d", len(rec.PriceHistory))
	}
	if rec.PriceHistory[0].Value != 0.5 || rec.PriceHistory[0].Timestamp != 1000 {
		t.Errorf("expected history point {0.5, 1000}, got {%f, %d}",
			rec.PriceHistory[0].Value, rec.PriceHistory[0].Timestamp)
	}
	if rec.LiquidityHistory[0].Value != 10 {
		t.Errorf("expected liquidity history 10, got %f", rec.LiquidityHistory[0].Value)
	}
	if rec.Price != 0.6 {
		t.Errorf("expected current price 0.6, got %f", rec.Price)
	}
}

func TestPoolStore_MintsImmutableAfterCreation(t *testing.T) {
	store := NewPoolStore()

	store.Upsert(snapshot("pool1", 0.5, 10, 1000))

	snap := snapshot("pool1", 0.6, 12, 2000)
	snap.BaseMint = "OtherMint"
	snap.QuoteMint = "AnotherMint"
	rec := store.Upsert(snap)

	if rec.BaseMint != "TokenMint" {
		t.Errorf("base mint changed to %s", rec.BaseMint)
	}
	if rec.QuoteMint != "So11111111111111111111111111111111111111112" {
		t.Errorf("quote mint changed to %s", rec.QuoteMint)
	}
}

func TestPoolStore_HistoryBounded(t *testing.T) {
	store := NewPoolStore()

	n := HistoryLimit + 20
	for i := 0; i <= n; i++ {
		store.Upsert(snapshot("pool1", float64(i), float64(i), int64(i)))
	}

	rec, ok := store.Get("pool1")
	if !ok {
		t.Fatal("pool not found")
	}
	if len(rec.PriceHistory) != HistoryLimit {
		t.Errorf("expected %d entries, got %d", HistoryLimit, len(rec.PriceHistory))
	}
	// Oldest entries evicted: after n+1 upserts the history covers
	// observations n-HistoryLimit .. n-1.
	first := rec.PriceHistory[0]
	if first.Value != float64(n-HistoryLimit) {
		t.Errorf("expected oldest value %d, got %f", n-HistoryLimit, first.Value)
	}
	last := rec.PriceHistory[len(rec.PriceHistory)-1]
	if last.Value != float64(n-1) {
		t.Errorf("expected newest value %d, got %f", n-1, last.Value)
	}
}

func TestPoolStore_HistoryChronological(t *testing.T) {
	store := NewPoolStore()

	for i := 0; i < 10; i++ {
		store.Upsert(snapshot("pool1", float64(i), float64(i), int64(i*100)))
	}

	rec, _ := store.Get("pool1")
	for i := 1; i < len(rec.PriceHistory); i++ {
		if rec.PriceHistory[i].Timestamp <= rec.PriceHistory[i-1].Timestamp {
			t.Fatalf("history not chronological at %d: %d <= %d",
				i, rec.PriceHistory[i].Timestamp, rec.PriceHistory[i-1].Timestamp)
		}
	}
}

func TestPoolStore_GetReturnsCopy(t *testing.T) {
	store := NewPoolStore()
	store.Upsert(snapshot("pool1", 0.5, 10, 1000))
	store.Upsert(snapshot("pool1", 0.6, 12, 2000))

	rec, _ := store.Get("pool1")
	rec.Price = 99
	rec.PriceHistory[0].Value = 99

	fresh, _ := store.Get("pool1")
	if fresh.Price != 0.6 {
		t.Errorf("mutation leaked into store: price %f", fresh.Price)
	}
	if fresh.PriceHistory[0].Value != 0.5 {
		t.Errorf("mutation leaked into history: %f", fresh.PriceHistory[0].Value)
	}
}

func TestPoolStore_AllSortedByAddress(t *testing.T) {
	store := NewPoolStore()
	store.Upsert(snapshot("c", 1, 1, 1))
	store.Upsert(snapshot("a", 1, 1, 1))
	store.Upsert(snapshot("b", 1, 1, 1))

	all := store.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 pools, got %d", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].Address != want {
			t.Errorf("position %d: expected %s, got %s", i, want, all[i].Address)
		}
	}
}

func TestPoolStore_TopByLiquidity(t *testing.T) {
	store := NewPoolStore()
	for i := 0; i < 5; i++ {
		store.Upsert(snapshot(fmt.Sprintf("pool%d", i), 1, float64(i*10), 1))
	}

	top := store.TopByLiquidity(2)
	if len(top) != 2 {
		t.Fatalf("expected 2 pools, got %d", len(top))
	}
	if top[0].Address != "pool4" || top[1].Address != "pool3" {
		t.Errorf("expected pool4, pool3; got %s, %s", top[0].Address, top[1].Address)
	}
}

func TestPoolStore_RestoreTrimsOversizedHistories(t *testing.T) {
	store := NewPoolStore()

	long := make([]domain.HistoryPoint, HistoryLimit+50)
	for i := range long {
		long[i] = domain.HistoryPoint{Value: float64(i), Timestamp: int64(i)}
	}
	store.Restore([]*domain.PoolRecord{
		{
			Address:      "pool1",
			BaseMint:     "mint",
			QuoteMint:    "quote",
			PriceHistory: long,
			Reserves:     domain.Reserves{Native: 5},
		},
		nil,
		{Address: ""},
	})

	if store.Len() != 1 {
		t.Fatalf("expected 1 pool after restore, got %d", store.Len())
	}
	rec, _ := store.Get("pool1")
	if len(rec.PriceHistory) != HistoryLimit {
		t.Errorf("expected trimmed history of %d, got %d", HistoryLimit, len(rec.PriceHistory))
	}
	if rec.PriceHistory[0].Value != 50 {
		t.Errorf("expected oldest kept value 50, got %f", rec.PriceHistory[0].Value)
	}
}
