// Package pricing derives price and liquidity snapshots from pool token
// balances.
package pricing

import (
	"context"
	"log"
	"time"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
	"github.com/xbxaxd26/pump-swap-screen/internal/pumpswap"
	"github.com/xbxaxd26/pump-swap-screen/internal/solana"
)

// Deriver turns a decoded pool account into a priced snapshot by fetching
// the pool's two token-account balances. Any fetch failure degrades to the
// all-zero sentinel snapshot; price 0 means "unknown", never "worthless".
type Deriver struct {
	rpc           solana.RPCClient
	referenceMint string
	fetchDelay    time.Duration
	nowFn         func() time.Time
	logger        *log.Logger
}

// DeriverOption configures a Deriver.
type DeriverOption func(*Deriver)

// WithReferenceMint overrides the reference asset (default WSOL).
func WithReferenceMint(mint string) DeriverOption {
	return func(d *Deriver) {
		d.referenceMint = mint
	}
}

// WithFetchDelay inserts a fixed pause between the two balance fetches,
// a self-imposed rate limit against public RPC nodes.
func WithFetchDelay(delay time.Duration) DeriverOption {
	return func(d *Deriver) {
		d.fetchDelay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) DeriverOption {
	return func(d *Deriver) {
		d.logger = logger
	}
}

// NewDeriver creates a deriver over the given RPC client.
func NewDeriver(rpc solana.RPCClient, opts ...DeriverOption) *Deriver {
	d := &Deriver{
		rpc:           rpc,
		referenceMint: pumpswap.WSOLMint,
		nowFn:         time.Now,
		logger:        log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive fetches both pool balances and produces a fresh snapshot.
// History merging is the pool store's responsibility.
func (d *Deriver) Derive(ctx context.Context, address string, pool *pumpswap.PoolAccount) domain.PoolSnapshot {
	isNativeBase := pool.BaseMint == d.referenceMint

	// Resolve which vault holds the reference asset. When neither mint is
	// the reference asset the base side is priced as if it were.
	refAccount, tokenAccount := pool.PoolBaseTokenAccount, pool.PoolQuoteTokenAccount
	if !isNativeBase && pool.QuoteMint == d.referenceMint {
		refAccount, tokenAccount = pool.PoolQuoteTokenAccount, pool.PoolBaseTokenAccount
	}

	snap := domain.PoolSnapshot{
		Address:      address,
		IsNativeBase: isNativeBase,
		BaseMint:     pool.BaseMint,
		QuoteMint:    pool.QuoteMint,
		Timestamp:    d.nowFn().UnixMilli(),
	}

	refBalance, ok := d.fetchBalance(ctx, refAccount)
	if !ok {
		return snap
	}

	if d.fetchDelay > 0 {
		select {
		case <-ctx.Done():
			return snap
		case <-time.After(d.fetchDelay):
		}
	}

	tokenBalance, ok := d.fetchBalance(ctx, tokenAccount)
	if !ok || tokenBalance == 0 {
		return snap
	}

	snap.Price = refBalance / tokenBalance
	snap.Reserves = domain.Reserves{Native: refBalance, Token: tokenBalance}
	return snap
}

// fetchBalance returns the uiAmount of a token account, reporting failure
// instead of propagating errors.
func (d *Deriver) fetchBalance(ctx context.Context, account string) (float64, bool) {
	bal, err := d.rpc.GetTokenAccountBalance(ctx, account)
	if err != nil {
		d.logger.Printf("balance fetch failed for %s: %v", account, err)
		return 0, false
	}
	if bal == nil || bal.UIAmount == nil {
		return 0, false
	}
	return *bal.UIAmount, true
}

// ReferenceMint returns the configured reference asset mint.
func (d *Deriver) ReferenceMint() string {
	return d.referenceMint
}
