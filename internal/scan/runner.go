// Package scan orchestrates pool discovery, price derivation, state updates
// and signal computation.
package scan

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
	"github.com/xbxaxd26/pump-swap-screen/internal/market"
	"github.com/xbxaxd26/pump-swap-screen/internal/pricing"
	"github.com/xbxaxd26/pump-swap-screen/internal/pumpswap"
	"github.com/xbxaxd26/pump-swap-screen/internal/signal"
	"github.com/xbxaxd26/pump-swap-screen/internal/solana"
	"github.com/xbxaxd26/pump-swap-screen/internal/volume"
)

// DefaultMinLiquidity gates signal computation and the stats filter,
// in native units.
const DefaultMinLiquidity = 1.0

// Hooks are outward callbacks fired as the runner updates state.
// Nil hooks are skipped.
type Hooks struct {
	OnPoolUpdated    func(*domain.PoolRecord)
	OnSignalComputed func(domain.TradingSignal)
}

// Snapshot is the externally consumable view of the screener state.
type Snapshot struct {
	Pools   []*domain.PoolRecord   `json:"pools"`
	Tokens  []string               `json:"tokens"`
	Stats   domain.MarketStats     `json:"stats"`
	Signals []domain.TradingSignal `json:"signals"`
}

// ScanResult summarizes one full rescan.
type ScanResult struct {
	AccountsSeen    int
	PoolsUpdated    int
	DecodeFailures  int
	SignalsComputed int
	Duration        time.Duration
}

// Runner drives full rescans and push updates over the shared state.
type Runner struct {
	rpc      solana.RPCClient
	deriver  *pricing.Deriver
	pools    *market.PoolStore
	registry *market.TokenRegistry
	signals  *signal.Book
	engine   *signal.Engine
	stats    *market.StatsAggregator
	monitor  *volume.Monitor

	targetMint   string
	minLiquidity float64
	poolDelay    time.Duration
	hooks        Hooks
	logger       *log.Logger
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	RPC      solana.RPCClient
	Deriver  *pricing.Deriver
	Pools    *market.PoolStore
	Registry *market.TokenRegistry
	Signals  *signal.Book
	Engine   *signal.Engine
	Stats    *market.StatsAggregator
	Monitor  *volume.Monitor // optional volume input for signals

	// TargetMint restricts discovery to pools pairing this token;
	// empty scans every pool of the program.
	TargetMint string
	// MinLiquidity gates signal computation and the stats filter.
	MinLiquidity float64
	// PoolDelay is a fixed sleep between per-pool updates.
	PoolDelay time.Duration
	Hooks     Hooks
	Logger    *log.Logger
}

// NewRunner creates a scan runner.
func NewRunner(opts RunnerOptions) *Runner {
	minLiquidity := opts.MinLiquidity
	if minLiquidity == 0 {
		minLiquidity = DefaultMinLiquidity
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		rpc:          opts.RPC,
		deriver:      opts.Deriver,
		pools:        opts.Pools,
		registry:     opts.Registry,
		signals:      opts.Signals,
		engine:       opts.Engine,
		stats:        opts.Stats,
		monitor:      opts.Monitor,
		targetMint:   opts.TargetMint,
		minLiquidity: minLiquidity,
		poolDelay:    opts.PoolDelay,
		hooks:        opts.Hooks,
		logger:       logger,
	}
}

// Scan performs one full rescan: discover pool accounts, derive prices,
// merge into the store, recompute signals and market stats. Individual
// pool failures are logged and never abort the batch.
func (r *Runner) Scan(ctx context.Context) (ScanResult, error) {
	start := time.Now()
	var result ScanResult

	accounts, err := r.discover(ctx)
	if err != nil {
		return result, fmt.Errorf("discover pools: %w", err)
	}
	result.AccountsSeen = len(accounts)

	for i, acct := range accounts {
		if ctx.Err() != nil {
			result.Duration = time.Since(start)
			return result, ctx.Err()
		}
		if i > 0 && r.poolDelay > 0 {
			time.Sleep(r.poolDelay)
		}

		pool, err := pumpswap.DecodePoolAccount(acct.Data)
		if err != nil {
			result.DecodeFailures++
			r.logger.Printf("skip account %s: %v", acct.Pubkey, err)
			continue
		}

		updated, computed := r.processPool(ctx, acct.Pubkey, pool)
		if updated {
			result.PoolsUpdated++
		}
		if computed {
			result.SignalsComputed++
		}
	}

	r.stats.Recompute(r.pools, r.minLiquidity)
	result.Duration = time.Since(start)
	return result, nil
}

// discover fetches raw pool accounts, filtered by target mint when set.
// A target token appears as the base mint in some pools and the quote mint
// in others; both scans run.
func (r *Runner) discover(ctx context.Context) ([]solana.ProgramAccount, error) {
	if r.targetMint == "" {
		return r.rpc.GetProgramAccounts(ctx, pumpswap.ProgramID, pumpswap.AllPoolFilters())
	}

	byBase, err := r.rpc.GetProgramAccounts(ctx, pumpswap.ProgramID, pumpswap.BaseMintFilters(r.targetMint))
	if err != nil {
		return nil, err
	}
	byQuote, err := r.rpc.GetProgramAccounts(ctx, pumpswap.ProgramID, pumpswap.QuoteMintFilters(r.targetMint))
	if err != nil {
		return nil, err
	}
	return append(byBase, byQuote...), nil
}

// HandlePoolUpdate processes one pushed pool account from a subscription.
func (r *Runner) HandlePoolUpdate(ctx context.Context, notif solana.ProgramNotification) {
	pool, err := pumpswap.DecodePoolAccount(notif.Data)
	if err != nil {
		r.logger.Printf("skip pushed account %s: %v", notif.Pubkey, err)
		return
	}

	isNew := !r.pools.Contains(notif.Pubkey)
	r.processPool(ctx, notif.Pubkey, pool)
	if isNew {
		r.logger.Printf("new pool discovered: %s (%s/%s)", notif.Pubkey, pool.BaseMint, pool.QuoteMint)
	}
	r.stats.Recompute(r.pools, r.minLiquidity)
}

// RunSubscription consumes pushed pool-account updates until the context
// is cancelled.
func (r *Runner) RunSubscription(ctx context.Context, ws solana.WSClient) error {
	filter := solana.ProgramFilter{
		Program: pumpswap.ProgramID,
		Filters: pumpswap.AllPoolFilters(),
	}
	if r.targetMint != "" {
		filter.Filters = pumpswap.BaseMintFilters(r.targetMint)
	}

	ch, err := ws.SubscribeProgram(ctx, filter)
	if err != nil {
		return fmt.Errorf("subscribe program: %w", err)
	}
	r.logger.Printf("subscribed to pool account updates")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case notif, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription channel closed")
			}
			r.HandlePoolUpdate(ctx, notif)
		}
	}
}

// processPool derives, merges and scores a single pool.
// Returns whether the store was updated and whether a signal was computed.
func (r *Runner) processPool(ctx context.Context, address string, pool *pumpswap.PoolAccount) (updated, computed bool) {
	snap := r.deriver.Derive(ctx, address, pool)

	var previous *domain.PreviousState
	if prev, ok := r.pools.Get(address); ok {
		previous = &domain.PreviousState{
			Price:     prev.Price,
			Liquidity: prev.Reserves.Native,
		}
	}

	rec := r.pools.Upsert(snap)
	r.registry.AddPair(pool.BaseMint, pool.QuoteMint)
	if r.hooks.OnPoolUpdated != nil {
		r.hooks.OnPoolUpdated(rec)
	}
	updated = true

	// Signals are only recomputed for pools with enough liquidity; a
	// failed fetch (zero reserves) never overwrites a live signal.
	if rec.Reserves.Native < r.minLiquidity {
		return updated, false
	}

	var volStats *domain.VolumeStats
	if r.monitor != nil {
		volStats = r.monitor.Stats(address)
	}

	sig := r.engine.Compute(rec, previous, volStats)
	r.signals.Set(sig)
	if r.hooks.OnSignalComputed != nil {
		r.hooks.OnSignalComputed(sig)
	}
	return updated, true
}

// Snapshot assembles the current pools, tokens, stats and active signals.
func (r *Runner) Snapshot() Snapshot {
	return Snapshot{
		Pools:   r.pools.All(),
		Tokens:  r.registry.All(),
		Stats:   r.stats.Current(),
		Signals: r.signals.Active(signal.DefaultMaxAge),
	}
}
