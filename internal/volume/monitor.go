// Package volume samples per-pool transaction activity and detects
// significant buy/sell volume, using pre/post balance deltas as a coarse
// direction heuristic.
package volume

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
	"github.com/xbxaxd26/pump-swap-screen/internal/market"
	"github.com/xbxaxd26/pump-swap-screen/internal/observability"
	"github.com/xbxaxd26/pump-swap-screen/internal/solana"
)

// Defaults for sampling behavior.
const (
	// DefaultSignatureLimit is how many recent signatures each sample fetches.
	DefaultSignatureLimit = 20
	// DefaultSignificanceThreshold flags a sample whose buy or sell volume
	// exceeds this fraction of pool liquidity.
	DefaultSignificanceThreshold = 0.05
	// DefaultTopPools bounds the automatic working set.
	DefaultTopPools = 10

	lamportsPerSol = 1e9

	// statsWindow bounds the volume figure fed to the signal engine.
	statsWindow = 24 * time.Hour
)

// MonitoringUpdate is the outcome of one sample.
type MonitoringUpdate struct {
	Pool        string
	NewTxCount  int
	BuyVolume   float64 // this sample, native units
	SellVolume  float64 // this sample, native units
	Significant bool
}

// Notifier consumes significant-volume events. Implementations render or
// alert; the monitor only detects.
type Notifier interface {
	SignificantVolume(pool string, buyVolume, sellVolume float64)
}

// Monitor tracks transaction-volume state for a bounded set of pools:
// the top-N by liquidity plus any explicitly activated pools.
type Monitor struct {
	rpc      solana.RPCClient
	pools    *market.PoolStore
	notifier Notifier
	logger   *log.Logger

	sigLimit  int
	threshold float64
	topN      int
	nowFn     func() time.Time

	mu       sync.RWMutex
	state    map[string]*domain.PoolMonitoringState
	windows  map[string][]volumePoint
	inFlight map[string]struct{}
}

// volumePoint is one sample's total volume, kept for the rolling window.
type volumePoint struct {
	at     int64 // unix ms
	volume float64
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithNotifier sets the significant-volume notifier.
func WithNotifier(n Notifier) Option {
	return func(m *Monitor) {
		m.notifier = n
	}
}

// WithSignatureLimit sets how many recent signatures each sample fetches.
func WithSignatureLimit(limit int) Option {
	return func(m *Monitor) {
		m.sigLimit = limit
	}
}

// WithThreshold sets the significance threshold as a fraction of liquidity.
func WithThreshold(threshold float64) Option {
	return func(m *Monitor) {
		m.threshold = threshold
	}
}

// WithTopPools sets the automatic working-set size.
func WithTopPools(n int) Option {
	return func(m *Monitor) {
		m.topN = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// NewMonitor creates a volume monitor over the pool store.
func NewMonitor(rpc solana.RPCClient, pools *market.PoolStore, opts ...Option) *Monitor {
	m := &Monitor{
		rpc:       rpc,
		pools:     pools,
		logger:    log.Default(),
		sigLimit:  DefaultSignatureLimit,
		threshold: DefaultSignificanceThreshold,
		topN:      DefaultTopPools,
		nowFn:     time.Now,
		state:     make(map[string]*domain.PoolMonitoringState),
		windows:   make(map[string][]volumePoint),
		inFlight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Activate starts explicit monitoring for a pool. Re-activation resets the
// cumulative volumes.
func (m *Monitor) Activate(pool string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state[pool]
	if st == nil {
		st = &domain.PoolMonitoringState{Pool: pool}
		m.state[pool] = st
	}
	st.IsActive = true
	st.BuyVolume = 0
	st.SellVolume = 0
	delete(m.windows, pool)
}

// Deactivate stops explicit monitoring for a pool. Accumulated volumes are
// kept.
func (m *Monitor) Deactivate(pool string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st := m.state[pool]; st != nil {
		st.IsActive = false
	}
}

// State returns a copy of the monitoring state for a pool.
func (m *Monitor) State(pool string) (domain.PoolMonitoringState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.state[pool]
	if !ok {
		return domain.PoolMonitoringState{}, false
	}
	return *st, true
}

// Stats exposes a pool's sampled volume over the last 24 hours as
// signal-engine input. The cumulative volumes in State keep growing;
// only this rolling figure feeds the volume-to-liquidity rule.
func (m *Monitor) Stats(pool string) *domain.VolumeStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.state[pool]; !ok {
		return nil
	}

	cutoff := m.nowFn().UnixMilli() - statsWindow.Milliseconds()
	var total float64
	for _, p := range m.windows[pool] {
		if p.at >= cutoff {
			total += p.volume
		}
	}
	return &domain.VolumeStats{Volume24h: total}
}

// WorkingSet returns the pool addresses to sample: top-N by liquidity plus
// explicitly activated pools.
func (m *Monitor) WorkingSet() []string {
	top := m.pools.TopByLiquidity(m.topN)
	seen := make(map[string]struct{}, len(top))
	set := make([]string, 0, len(top))
	for _, p := range top {
		seen[p.Address] = struct{}{}
		set = append(set, p.Address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for pool, st := range m.state {
		if st.IsActive {
			if _, ok := seen[pool]; !ok {
				set = append(set, pool)
			}
		}
	}
	return set
}

// SampleAll samples every pool in the working set. Per-pool failures are
// logged and never abort the batch.
func (m *Monitor) SampleAll(ctx context.Context) {
	for _, pool := range m.WorkingSet() {
		if ctx.Err() != nil {
			return
		}
		if _, err := m.Sample(ctx, pool); err != nil {
			m.logger.Printf("volume sample failed for %s: %v", pool, err)
		}
	}
}

// Sample fetches recent signatures for a pool and accumulates approximate
// buy/sell volume from pre/post balance deltas. lastSignatureCount,
// lastLiquidity and lastChecked are always updated; the cumulative volumes
// only grow. A significant sample fires the notifier. Samples of the same
// pool never overlap: a call that finds one in flight returns an empty
// update.
func (m *Monitor) Sample(ctx context.Context, pool string) (MonitoringUpdate, error) {
	upd := MonitoringUpdate{Pool: pool}

	// An in-flight sample still holds the stale signature count; a
	// concurrent one would classify the same transactions again.
	m.mu.Lock()
	if _, busy := m.inFlight[pool]; busy {
		m.mu.Unlock()
		return upd, nil
	}
	m.inFlight[pool] = struct{}{}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.inFlight, pool)
		m.mu.Unlock()
	}()

	liquidity := 0.0
	if rec, ok := m.pools.Get(pool); ok {
		liquidity = rec.Reserves.Native
	}

	sigs, err := m.rpc.GetSignaturesForAddress(ctx, pool, &solana.SignaturesOpts{Limit: m.sigLimit})
	if err != nil {
		m.touch(pool, liquidity, -1)
		return upd, err
	}

	st := m.snapshotState(pool)
	newCount := len(sigs) - st.LastSignatureCount
	upd.NewTxCount = newCount

	if newCount <= 0 {
		// Nothing new, or the signature window wrapped.
		m.touch(pool, liquidity, len(sigs))
		observability.RecordVolumeSample(0, 0, false)
		return upd, nil
	}
	if newCount > len(sigs) {
		newCount = len(sigs)
	}

	for _, sig := range sigs[:newCount] {
		buy, sell := m.classifyTransaction(ctx, pool, sig.Signature)
		upd.BuyVolume += buy
		upd.SellVolume += sell
	}

	upd.Significant = upd.BuyVolume > liquidity*m.threshold ||
		upd.SellVolume > liquidity*m.threshold

	now := m.nowFn().UnixMilli()
	m.mu.Lock()
	state := m.ensureStateLocked(pool)
	state.BuyVolume += upd.BuyVolume
	state.SellVolume += upd.SellVolume
	state.LastSignatureCount = len(sigs)
	state.LastLiquidity = liquidity
	state.LastChecked = now
	if total := upd.BuyVolume + upd.SellVolume; total > 0 {
		m.appendWindowLocked(pool, now, total)
	}
	m.mu.Unlock()

	observability.RecordVolumeSample(upd.BuyVolume, upd.SellVolume, upd.Significant)

	if upd.Significant && m.notifier != nil {
		m.notifier.SignificantVolume(pool, upd.BuyVolume, upd.SellVolume)
	}

	return upd, nil
}

// classifyTransaction diffs the pool's own lamport balance across one
// transaction. A balance increase counts as buy volume, a decrease as sell.
// This is an approximation, not instruction-level swap decoding. Failed or
// missing transactions contribute nothing.
func (m *Monitor) classifyTransaction(ctx context.Context, pool, signature string) (buy, sell float64) {
	tx, err := m.rpc.GetTransaction(ctx, signature)
	if err != nil {
		m.logger.Printf("transaction fetch failed for %s: %v", signature, err)
		return 0, 0
	}
	if tx == nil || tx.Meta == nil || tx.Message == nil {
		return 0, 0
	}

	idx := -1
	for i, key := range tx.Message.AccountKeys {
		if key == pool {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(tx.Meta.PreBalances) || idx >= len(tx.Meta.PostBalances) {
		return 0, 0
	}

	pre := float64(tx.Meta.PreBalances[idx]) / lamportsPerSol
	post := float64(tx.Meta.PostBalances[idx]) / lamportsPerSol
	switch {
	case post > pre:
		return post - pre, 0
	case post < pre:
		return 0, pre - post
	}
	return 0, 0
}

// touch updates check bookkeeping without changing volumes.
// sigCount < 0 keeps the previous signature count.
func (m *Monitor) touch(pool string, liquidity float64, sigCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.ensureStateLocked(pool)
	if sigCount >= 0 {
		st.LastSignatureCount = sigCount
	}
	st.LastLiquidity = liquidity
	st.LastChecked = m.nowFn().UnixMilli()
}

// appendWindowLocked adds a sample point and drops points older than the
// rolling window. Caller holds m.mu.
func (m *Monitor) appendWindowLocked(pool string, at int64, total float64) {
	cutoff := at - statsWindow.Milliseconds()
	kept := m.windows[pool][:0]
	for _, p := range m.windows[pool] {
		if p.at >= cutoff {
			kept = append(kept, p)
		}
	}
	m.windows[pool] = append(kept, volumePoint{at: at, volume: total})
}

func (m *Monitor) snapshotState(pool string) domain.PoolMonitoringState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if st, ok := m.state[pool]; ok {
		return *st
	}
	return domain.PoolMonitoringState{Pool: pool}
}

func (m *Monitor) ensureStateLocked(pool string) *domain.PoolMonitoringState {
	st := m.state[pool]
	if st == nil {
		st = &domain.PoolMonitoringState{Pool: pool}
		m.state[pool] = st
	}
	return st
}
