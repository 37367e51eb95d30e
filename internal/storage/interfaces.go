// Package storage defines the persistence interfaces for screener state.
package storage

import (
	"context"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
)

// State is the restartable screener state: every tracked pool with its
// bounded histories, plus the token registry.
type State struct {
	Pools   []*domain.PoolRecord `json:"pools"`
	Tokens  []string             `json:"tokens"`
	SavedAt int64                `json:"savedAt"` // Unix ms
}

// StateStore persists and restores the full screener state.
type StateStore interface {
	// Save writes the current state, replacing any previous one.
	Save(ctx context.Context, state *State) error

	// Load reads the last saved state. Returns ErrNotFound when no
	// state has been saved yet.
	Load(ctx context.Context) (*State, error)
}

// PoolStore provides access to the pools table.
type PoolStore interface {
	// Upsert inserts or replaces the current state of a pool.
	Upsert(ctx context.Context, rec *domain.PoolRecord) error

	// UpsertBulk upserts multiple pools atomically.
	UpsertBulk(ctx context.Context, recs []*domain.PoolRecord) error

	// GetByAddress retrieves a pool. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.PoolRecord, error)

	// GetAll retrieves every stored pool, ordered by address ASC.
	GetAll(ctx context.Context) ([]*domain.PoolRecord, error)
}

// SignalStore provides access to the signals log.
type SignalStore interface {
	// Insert appends a computed signal.
	Insert(ctx context.Context, sig domain.TradingSignal) error

	// GetByMint retrieves signals for a mint, newest first, up to limit.
	GetByMint(ctx context.Context, mint string, limit int) ([]domain.TradingSignal, error)

	// GetRecent retrieves the latest signals across all mints, newest first.
	GetRecent(ctx context.Context, limit int) ([]domain.TradingSignal, error)
}

// HistoryStore archives per-pool price and liquidity points for
// long-range analysis, beyond the bounded in-memory histories.
type HistoryStore interface {
	// Archive appends the current point of a pool.
	Archive(ctx context.Context, rec *domain.PoolRecord) error

	// ArchiveBulk appends points for multiple pools.
	ArchiveBulk(ctx context.Context, recs []*domain.PoolRecord) error

	// GetRange retrieves archived points for a pool within
	// [start, end] (inclusive, Unix ms), ordered by timestamp ASC.
	GetRange(ctx context.Context, pool string, start, end int64) ([]ArchivedPoint, error)
}

// ArchivedPoint is one archived pool observation.
type ArchivedPoint struct {
	Pool        string
	TimestampMs int64
	Price       float64
	Liquidity   float64
}
