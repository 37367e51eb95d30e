package scheduler

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
	"github.com/xbxaxd26/pump-swap-screen/internal/market"
	"github.com/xbxaxd26/pump-swap-screen/internal/solana"
	"github.com/xbxaxd26/pump-swap-screen/internal/solana/stub"
	"github.com/xbxaxd26/pump-swap-screen/internal/volume"
)

func quiet() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// parkedRPC blocks the first signature fetch until released and counts
// how many fetches were attempted.
type parkedRPC struct {
	*stub.RPCClient
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (r *parkedRPC) GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	r.calls.Add(1)
	r.once.Do(func() {
		close(r.entered)
		<-r.release
	})
	return r.RPCClient.GetSignaturesForAddress(ctx, address, opts)
}

func TestScheduler_VolumeTaskSkipsOverlappingRuns(t *testing.T) {
	rpc := &parkedRPC{
		RPCClient: stub.NewRPCClient(),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	rpc.AddSignatures("pool1", []solana.SignatureInfo{{Signature: "sig0"}})

	store := market.NewPoolStore()
	store.Upsert(domain.PoolSnapshot{
		Address:   "pool1",
		BaseMint:  "mint",
		QuoteMint: "quote",
		Price:     1,
		Reserves:  domain.Reserves{Native: 100},
	})

	mon := volume.NewMonitor(rpc, store, volume.WithLogger(quiet()))
	s := NewScheduler(context.Background(), nil, mon, nil, quiet())

	done := make(chan struct{})
	go func() {
		s.volumeTask()
		close(done)
	}()
	<-rpc.entered

	// A second cron tick while the first run is parked must return
	// without sampling anything.
	s.volumeTask()
	if got := rpc.calls.Load(); got != 1 {
		t.Errorf("expected 1 signature fetch, got %d", got)
	}

	close(rpc.release)
	<-done
}
