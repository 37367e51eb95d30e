package market

import (
	"sort"
	"sync"
	"time"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
)

// newPoolWindow is the lookback for the new-pool count.
const newPoolWindow = 24 * time.Hour

// StatsAggregator recomputes market-wide summary statistics over the pool
// store. When no pool passes the liquidity filter, the previous stats are
// kept unchanged rather than reset to zero.
type StatsAggregator struct {
	mu      sync.RWMutex
	current domain.MarketStats
	nowFn   func() time.Time
}

// NewStatsAggregator creates a stats aggregator.
func NewStatsAggregator() *StatsAggregator {
	return &StatsAggregator{nowFn: time.Now}
}

// Current returns the last computed stats.
func (a *StatsAggregator) Current() domain.MarketStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.current
}

// Recompute derives fresh stats from the store contents, considering only
// pools with native reserve at or above minLiquidity.
func (a *StatsAggregator) Recompute(store *PoolStore, minLiquidity float64) domain.MarketStats {
	pools := store.All()

	liquidity := make([]float64, 0, len(pools))
	filtered := make([]*domain.PoolRecord, 0, len(pools))
	for _, p := range pools {
		if p.Reserves.Native >= minLiquidity {
			liquidity = append(liquidity, p.Reserves.Native)
			filtered = append(filtered, p)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(filtered) == 0 {
		return a.current
	}

	sort.Float64s(liquidity)

	now := a.nowFn()
	cutoff := now.Add(-newPoolWindow).UnixMilli()

	total := 0.0
	for _, l := range liquidity {
		total += l
	}

	newPools := 0
	for _, p := range filtered {
		if firstSeen(p) > cutoff {
			newPools++
		}
	}

	a.current = domain.MarketStats{
		TotalPools:       len(filtered),
		TotalLiquidity:   total,
		AverageLiquidity: total / float64(len(liquidity)),
		// Upper median: element at floor(n/2) of the ascending set.
		MedianLiquidity: liquidity[len(liquidity)/2],
		MinLiquidity:    liquidity[0],
		MaxLiquidity:    liquidity[len(liquidity)-1],
		NewPools24h:     newPools,
		UpdatedAt:       now.UnixMilli(),
	}
	return a.current
}

// firstSeen approximates a pool's creation time: the oldest retained history
// entry when present, otherwise the record timestamp.
func firstSeen(p *domain.PoolRecord) int64 {
	if len(p.PriceHistory) > 0 {
		return p.PriceHistory[0].Timestamp
	}
	return p.Timestamp
}
