// Package market holds the in-memory pool state: the authoritative pool
// store, the token registry and the market statistics aggregator.
package market

import (
	"sort"
	"sync"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
)

// HistoryLimit bounds the price and liquidity histories per pool.
// Oldest entries are evicted first.
const HistoryLimit = 100

// PoolStore is the authoritative in-memory map of pool address to pool state.
// Pools are never removed once seen.
type PoolStore struct {
	mu    sync.RWMutex
	pools map[string]*domain.PoolRecord
}

// NewPoolStore creates an empty pool store.
func NewPoolStore() *PoolStore {
	return &PoolStore{
		pools: make(map[string]*domain.PoolRecord),
	}
}

// Upsert merges a fresh snapshot into the store and returns a copy of the
// resulting record. If a prior record exists, its price and native liquidity
// are appended to the histories before the snapshot's values become current;
// address and mints never change after creation. The history diff is computed
// against whatever is stored at call time, so interleaved flows updating the
// same pool cannot lose history entries.
func (s *PoolStore) Upsert(snap domain.PoolSnapshot) *domain.PoolRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.pools[snap.Address]
	if !ok {
		rec := &domain.PoolRecord{
			Address:      snap.Address,
			IsNativeBase: snap.IsNativeBase,
			BaseMint:     snap.BaseMint,
			QuoteMint:    snap.QuoteMint,
			Price:        snap.Price,
			Reserves:     snap.Reserves,
			Timestamp:    snap.Timestamp,
		}
		s.pools[snap.Address] = rec
		return copyRecord(rec)
	}

	prev.PriceHistory = appendBounded(prev.PriceHistory, domain.HistoryPoint{
		Value:     prev.Price,
		Timestamp: prev.Timestamp,
	})
	prev.LiquidityHistory = appendBounded(prev.LiquidityHistory, domain.HistoryPoint{
		Value:     prev.Reserves.Native,
		Timestamp: prev.Timestamp,
	})

	prev.IsNativeBase = snap.IsNativeBase
	prev.Price = snap.Price
	prev.Reserves = snap.Reserves
	prev.Timestamp = snap.Timestamp

	return copyRecord(prev)
}

// Get retrieves a copy of the record for an address.
func (s *PoolStore) Get(address string) (*domain.PoolRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.pools[address]
	if !ok {
		return nil, false
	}
	return copyRecord(rec), true
}

// Contains reports whether an address is known.
func (s *PoolStore) Contains(address string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.pools[address]
	return ok
}

// All returns copies of every record, ordered by address for determinism.
func (s *PoolStore) All() []*domain.PoolRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PoolRecord, 0, len(s.pools))
	for _, rec := range s.pools {
		result = append(result, copyRecord(rec))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})
	return result
}

// TopByLiquidity returns copies of the n records with the highest native
// reserve, descending.
func (s *PoolStore) TopByLiquidity(n int) []*domain.PoolRecord {
	all := s.All()
	sort.Slice(all, func(i, j int) bool {
		return all[i].Reserves.Native > all[j].Reserves.Native
	})
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// Len returns the number of known pools.
func (s *PoolStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.pools)
}

// Restore replaces the store contents from persisted records.
// Histories are trimmed to the bound in case older snapshots exceed it.
func (s *PoolStore) Restore(records []*domain.PoolRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pools = make(map[string]*domain.PoolRecord, len(records))
	for _, rec := range records {
		if rec == nil || rec.Address == "" {
			continue
		}
		cp := copyRecord(rec)
		cp.PriceHistory = trimBounded(cp.PriceHistory)
		cp.LiquidityHistory = trimBounded(cp.LiquidityHistory)
		s.pools[cp.Address] = cp
	}
}

func appendBounded(history []domain.HistoryPoint, point domain.HistoryPoint) []domain.HistoryPoint {
	history = append(history, point)
	return trimBounded(history)
}

func trimBounded(history []domain.HistoryPoint) []domain.HistoryPoint {
	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}
	return history
}

func copyRecord(rec *domain.PoolRecord) *domain.PoolRecord {
	cp := *rec
	cp.PriceHistory = append([]domain.HistoryPoint(nil), rec.PriceHistory...)
	cp.LiquidityHistory = append([]domain.HistoryPoint(nil), rec.LiquidityHistory...)
	return &cp
}
