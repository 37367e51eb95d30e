package scan

import (
	"context"
	"encoding/binary"
	"io"
	"log"
	"testing"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
	"github.com/xbxaxd26/pump-swap-screen/internal/market"
	"github.com/xbxaxd26/pump-swap-screen/internal/pricing"
	"github.com/xbxaxd26/pump-swap-screen/internal/pumpswap"
	"github.com/xbxaxd26/pump-swap-screen/internal/signal"
	"github.com/xbxaxd26/pump-swap-screen/internal/solana"
	"github.com/xbxaxd26/pump-swap-screen/internal/solana/stub"
)

// testPool is a staged pool account with the addresses needed to stage
// vault balances on the stub RPC client.
type testPool struct {
	pubkey     string
	data       []byte
	baseMint   string
	quoteMint  string
	baseVault  string
	quoteVault string
}

// buildPool assembles a raw pool account whose quote mint is the
// reference asset. Vault keys are picked off the ed25519 curve so the
// decoder accepts them.
func buildPool(t *testing.T, pubkey string, seed byte) testPool {
	t.Helper()

	data := make([]byte, pumpswap.PoolAccountSize)
	baseMint := repeated(seed)
	quoteMint := repeated(seed + 1)
	baseVault := offCurve(t, seed+2)
	quoteVault := offCurve(t, seed+3)

	copy(data[pumpswap.BaseMintOffset:], baseMint)
	copy(data[pumpswap.QuoteMintOffset:], quoteMint)
	copy(data[107:], repeated(seed+4)) // lp mint
	copy(data[139:], baseVault)
	copy(data[171:], quoteVault)
	binary.LittleEndian.PutUint64(data[203:], 1_000_000)

	return testPool{
		pubkey:     pubkey,
		data:       data,
		baseMint:   base58.Encode(baseMint),
		quoteMint:  base58.Encode(quoteMint),
		baseVault:  base58.Encode(baseVault),
		quoteVault: base58.Encode(quoteVault),
	}
}

func repeated(b byte) []byte {
	out := make([]byte, 32)
	for i := range out {
		out[i] = b
	}
	return out
}

func offCurve(t *testing.T, seed byte) []byte {
	t.Helper()
	key := repeated(seed)
	for b := 0; b < 256; b++ {
		key[0] = byte(b)
		if _, err := new(edwards25519.Point).SetBytes(key); err != nil {
			return key
		}
	}
	t.Fatal("no off-curve key found")
	return nil
}

type testEnv struct {
	rpc      *stub.RPCClient
	pools    *market.PoolStore
	registry *market.TokenRegistry
	signals  *signal.Book
	stats    *market.StatsAggregator
	runner   *Runner
}

func newTestEnv(t *testing.T, opts RunnerOptions) *testEnv {
	t.Helper()

	env := &testEnv{
		rpc:      stub.NewRPCClient(),
		pools:    market.NewPoolStore(),
		registry: market.NewTokenRegistry(),
		signals:  signal.NewBook(),
		stats:    market.NewStatsAggregator(),
	}
	opts.RPC = env.rpc
	opts.Pools = env.pools
	opts.Registry = env.registry
	opts.Signals = env.signals
	opts.Engine = signal.NewEngine()
	opts.Stats = env.stats
	opts.Logger = log.New(io.Discard, "", 0)
	env.runner = NewRunner(opts)
	return env
}

// stage registers the pool account for discovery. The deriver treats the
// pool's quote mint as the reference asset, so the runner must be built
// with that mint.
func (e *testEnv) stage(p testPool, native, token float64) {
	e.rpc.ProgramAccounts[pumpswap.ProgramID] = append(
		e.rpc.ProgramAccounts[pumpswap.ProgramID],
		solana.ProgramAccount{Pubkey: p.pubkey, Data: p.data},
	)
	e.rpc.SetBalance(p.quoteVault, native)
	e.rpc.SetBalance(p.baseVault, token)
}

func TestScan_PopulatesState(t *testing.T) {
	pool1 := buildPool(t, "pool1", 0x10)
	pool2 := buildPool(t, "pool2", 0x40)

	env := newTestEnv(t, RunnerOptions{})
	env.runner.deriver = pricing.NewDeriver(env.rpc, pricing.WithReferenceMint(pool1.quoteMint))
	env.stage(pool1, 100, 1000)
	env.stage(pool2, 5, 50)
	env.rpc.ProgramAccounts[pumpswap.ProgramID] = append(
		env.rpc.ProgramAccounts[pumpswap.ProgramID],
		solana.ProgramAccount{Pubkey: "garbage", Data: []byte{1, 2, 3}},
	)

	result, err := env.runner.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if result.AccountsSeen != 3 {
		t.Errorf("expected 3 accounts seen, got %d", result.AccountsSeen)
	}
	if result.PoolsUpdated != 2 {
		t.Errorf("expected 2 pools updated, got %d", result.PoolsUpdated)
	}
	if result.DecodeFailures != 1 {
		t.Errorf("expected 1 decode failure, got %d", result.DecodeFailures)
	}
	if result.SignalsComputed != 2 {
		t.Errorf("expected 2 signals computed, got %d", result.SignalsComputed)
	}

	rec, ok := env.pools.Get("pool1")
	if !ok {
		t.Fatal("pool1 missing from store")
	}
	if rec.Price != 0.1 {
		t.Errorf("expected price 0.1, got %v", rec.Price)
	}
	if rec.Reserves.Native != 100 {
		t.Errorf("expected native reserve 100, got %v", rec.Reserves.Native)
	}
	if !env.registry.Contains(pool1.baseMint) {
		t.Error("base mint missing from registry")
	}

	sig, ok := env.signals.Get(pool1.baseMint)
	if !ok {
		t.Fatal("expected a signal for pool1's token")
	}
	if sig.Signal != domain.SignalHold {
		t.Errorf("first scan should hold, got %s", sig.Signal)
	}

	stats := env.stats.Current()
	if stats.TotalPools != 2 {
		t.Errorf("expected 2 pools in stats, got %d", stats.TotalPools)
	}
	if stats.TotalLiquidity != 105 {
		t.Errorf("expected total liquidity 105, got %v", stats.TotalLiquidity)
	}
}

func TestScan_SignalUsesPreviousState(t *testing.T) {
	pool := buildPool(t, "pool1", 0x10)

	env := newTestEnv(t, RunnerOptions{})
	env.runner.deriver = pricing.NewDeriver(env.rpc, pricing.WithReferenceMint(pool.quoteMint))
	env.stage(pool, 100, 1000)

	if _, err := env.runner.Scan(context.Background()); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}

	// Price moves 0.1 -> 0.125 (+25%) while liquidity stays flat.
	env.rpc.SetBalance(pool.baseVault, 800)
	if _, err := env.runner.Scan(context.Background()); err != nil {
		t.Fatalf("second scan failed: %v", err)
	}

	sig, ok := env.signals.Get(pool.baseMint)
	if !ok {
		t.Fatal("expected a signal")
	}
	if sig.Signal != domain.SignalBuy {
		t.Errorf("expected buy, got %s", sig.Signal)
	}
	if sig.Confidence != 20 {
		t.Errorf("expected confidence 20, got %v", sig.Confidence)
	}
}

func TestScan_MinLiquidityGate(t *testing.T) {
	pool := buildPool(t, "pool1", 0x10)

	env := newTestEnv(t, RunnerOptions{})
	env.runner.deriver = pricing.NewDeriver(env.rpc, pricing.WithReferenceMint(pool.quoteMint))
	env.stage(pool, 0.5, 1000)

	result, err := env.runner.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if result.PoolsUpdated != 1 {
		t.Errorf("expected pool updated, got %d", result.PoolsUpdated)
	}
	if result.SignalsComputed != 0 {
		t.Errorf("thin pool must not produce a signal, got %d", result.SignalsComputed)
	}
	if _, ok := env.signals.Get(pool.baseMint); ok {
		t.Error("unexpected signal for thin pool")
	}
}

func TestScan_FailedFetchKeepsSignal(t *testing.T) {
	pool := buildPool(t, "pool1", 0x10)

	env := newTestEnv(t, RunnerOptions{})
	env.runner.deriver = pricing.NewDeriver(env.rpc, pricing.WithReferenceMint(pool.quoteMint))
	env.stage(pool, 100, 1000)

	if _, err := env.runner.Scan(context.Background()); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	before, ok := env.signals.Get(pool.baseMint)
	if !ok {
		t.Fatal("expected a signal after first scan")
	}

	// Balance fetches now fail; the pool record zeroes out but the
	// last good signal must survive.
	env.rpc.BalanceErrs[pool.quoteVault] = stub.ErrNotFound
	env.rpc.BalanceErrs[pool.baseVault] = stub.ErrNotFound

	result, err := env.runner.Scan(context.Background())
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if result.SignalsComputed != 0 {
		t.Errorf("zero-reserve pool must not recompute, got %d", result.SignalsComputed)
	}

	rec, _ := env.pools.Get("pool1")
	if rec.Reserves.Native != 0 {
		t.Errorf("expected zeroed reserves, got %v", rec.Reserves.Native)
	}
	after, ok := env.signals.Get(pool.baseMint)
	if !ok {
		t.Fatal("signal vanished after failed fetch")
	}
	if after.Timestamp != before.Timestamp || after.Signal != before.Signal {
		t.Error("signal was overwritten by a failed fetch")
	}
}

func TestScan_TargetMintScansBothSides(t *testing.T) {
	pool := buildPool(t, "pool1", 0x10)

	env := newTestEnv(t, RunnerOptions{TargetMint: pool.baseMint})
	env.runner.deriver = pricing.NewDeriver(env.rpc, pricing.WithReferenceMint(pool.quoteMint))
	env.stage(pool, 100, 1000)

	// The stub ignores filters, so the base and quote scans each return
	// the staged account.
	result, err := env.runner.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.AccountsSeen != 2 {
		t.Errorf("expected both filter scans to run, saw %d accounts", result.AccountsSeen)
	}
}

func TestScan_Hooks(t *testing.T) {
	pool := buildPool(t, "pool1", 0x10)

	var poolUpdates, signalUpdates int
	env := newTestEnv(t, RunnerOptions{
		Hooks: Hooks{
			OnPoolUpdated:    func(*domain.PoolRecord) { poolUpdates++ },
			OnSignalComputed: func(domain.TradingSignal) { signalUpdates++ },
		},
	})
	env.runner.deriver = pricing.NewDeriver(env.rpc, pricing.WithReferenceMint(pool.quoteMint))
	env.stage(pool, 100, 1000)

	if _, err := env.runner.Scan(context.Background()); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if poolUpdates != 1 {
		t.Errorf("expected 1 pool hook call, got %d", poolUpdates)
	}
	if signalUpdates != 1 {
		t.Errorf("expected 1 signal hook call, got %d", signalUpdates)
	}
}

func TestHandlePoolUpdate(t *testing.T) {
	pool := buildPool(t, "pool1", 0x10)

	env := newTestEnv(t, RunnerOptions{})
	env.runner.deriver = pricing.NewDeriver(env.rpc, pricing.WithReferenceMint(pool.quoteMint))
	env.rpc.SetBalance(pool.quoteVault, 42)
	env.rpc.SetBalance(pool.baseVault, 84)

	env.runner.HandlePoolUpdate(context.Background(), solana.ProgramNotification{
		Pubkey: "pool1",
		Data:   pool.data,
	})

	rec, ok := env.pools.Get("pool1")
	if !ok {
		t.Fatal("pushed pool missing from store")
	}
	if rec.Price != 0.5 {
		t.Errorf("expected price 0.5, got %v", rec.Price)
	}
	if env.stats.Current().TotalPools != 1 {
		t.Errorf("stats not recomputed after push")
	}
}

func TestSnapshot(t *testing.T) {
	pool := buildPool(t, "pool1", 0x10)

	env := newTestEnv(t, RunnerOptions{})
	env.runner.deriver = pricing.NewDeriver(env.rpc, pricing.WithReferenceMint(pool.quoteMint))
	env.stage(pool, 100, 1000)

	if _, err := env.runner.Scan(context.Background()); err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	snap := env.runner.Snapshot()
	if len(snap.Pools) != 1 {
		t.Errorf("expected 1 pool in snapshot, got %d", len(snap.Pools))
	}
	if len(snap.Tokens) != 2 {
		t.Errorf("expected 2 tokens in snapshot, got %d", len(snap.Tokens))
	}
	if len(snap.Signals) != 1 {
		t.Errorf("expected 1 active signal, got %d", len(snap.Signals))
	}
	if snap.Stats.TotalPools != 1 {
		t.Errorf("expected stats over 1 pool, got %d", snap.Stats.TotalPools)
	}
}
