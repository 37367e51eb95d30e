package storage

import (
	"context"
	"errors"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
)

// Persister fans a screener snapshot out to the configured backends.
// Only the state store is required; pool, signal and history stores are
// optional and skipped when nil.
type Persister struct {
	State   StateStore
	Pools   PoolStore
	Signals SignalStore
	History HistoryStore
}

// PersistState writes pools and tokens to every configured backend.
// Backends are independent; one failing does not stop the others, and
// all failures are reported together.
func (p *Persister) PersistState(ctx context.Context, pools []*domain.PoolRecord, tokens []string) error {
	var errs []error

	if p.State != nil {
		err := p.State.Save(ctx, &State{Pools: pools, Tokens: tokens})
		if err != nil {
			errs = append(errs, err)
		}
	}
	if p.Pools != nil {
		if err := p.Pools.UpsertBulk(ctx, pools); err != nil {
			errs = append(errs, err)
		}
	}
	if p.History != nil {
		if err := p.History.ArchiveBulk(ctx, pools); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// LogSignal appends a signal to the signal store, when configured.
func (p *Persister) LogSignal(ctx context.Context, sig domain.TradingSignal) error {
	if p.Signals == nil {
		return nil
	}
	return p.Signals.Insert(ctx, sig)
}
