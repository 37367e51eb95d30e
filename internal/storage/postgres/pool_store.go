package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
	"github.com/xbxaxd26/pump-swap-screen/internal/storage"
)

// PoolStore implements storage.PoolStore using PostgreSQL. Histories are
// stored as JSONB alongside the current pool state.
type PoolStore struct {
	pool *Pool
}

// NewPoolStore creates a new PoolStore.
func NewPoolStore(pool *Pool) *PoolStore {
	return &PoolStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PoolStore = (*PoolStore)(nil)

const upsertPoolQuery = `
	INSERT INTO pools (
		address, is_native_base, base_mint, quote_mint, price,
		native_reserve, token_reserve, price_history, liquidity_history, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (address) DO UPDATE SET
		is_native_base = EXCLUDED.is_native_base,
		price = EXCLUDED.price,
		native_reserve = EXCLUDED.native_reserve,
		token_reserve = EXCLUDED.token_reserve,
		price_history = EXCLUDED.price_history,
		liquidity_history = EXCLUDED.liquidity_history,
		updated_at = EXCLUDED.updated_at
`

// Upsert inserts or replaces the current state of a pool.
func (s *PoolStore) Upsert(ctx context.Context, rec *domain.PoolRecord) (err error) {
	start := time.Now()
	defer func() { observeQuery("upsert_pool", start, err) }()

	if rec == nil || rec.Address == "" {
		return storage.ErrInvalidInput
	}

	args, err := poolArgs(rec)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, upsertPoolQuery, args...); err != nil {
		return fmt.Errorf("upsert pool: %w", err)
	}
	return nil
}

// UpsertBulk upserts multiple pools atomically.
func (s *PoolStore) UpsertBulk(ctx context.Context, recs []*domain.PoolRecord) (err error) {
	if len(recs) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { observeQuery("upsert_pools_bulk", start, err) }()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range recs {
		if rec == nil || rec.Address == "" {
			return storage.ErrInvalidInput
		}
		args, err := poolArgs(rec)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, upsertPoolQuery, args...); err != nil {
			return fmt.Errorf("upsert pool in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByAddress retrieves a pool. Returns ErrNotFound if not exists.
func (s *PoolStore) GetByAddress(ctx context.Context, address string) (rec *domain.PoolRecord, err error) {
	start := time.Now()
	defer func() { observeQuery("get_pool", start, err) }()

	query := `
		SELECT address, is_native_base, base_mint, quote_mint, price,
		       native_reserve, token_reserve, price_history, liquidity_history, updated_at
		FROM pools
		WHERE address = $1
	`

	rec, err = scanPool(s.pool.QueryRow(ctx, query, address))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pool: %w", err)
	}
	return rec, nil
}

// GetAll retrieves every stored pool, ordered by address ASC.
func (s *PoolStore) GetAll(ctx context.Context) (recs []*domain.PoolRecord, err error) {
	start := time.Now()
	defer func() { observeQuery("get_all_pools", start, err) }()

	query := `
		SELECT address, is_native_base, base_mint, quote_mint, price,
		       native_reserve, token_reserve, price_history, liquidity_history, updated_at
		FROM pools
		ORDER BY address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pools: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pools: %w", err)
	}
	return recs, nil
}

func poolArgs(rec *domain.PoolRecord) ([]any, error) {
	priceHist, err := json.Marshal(rec.PriceHistory)
	if err != nil {
		return nil, fmt.Errorf("marshal price history: %w", err)
	}
	liqHist, err := json.Marshal(rec.LiquidityHistory)
	if err != nil {
		return nil, fmt.Errorf("marshal liquidity history: %w", err)
	}
	return []any{
		rec.Address,
		rec.IsNativeBase,
		rec.BaseMint,
		rec.QuoteMint,
		rec.Price,
		rec.Reserves.Native,
		rec.Reserves.Token,
		priceHist,
		liqHist,
		rec.Timestamp,
	}, nil
}

func scanPool(row pgx.Row) (*domain.PoolRecord, error) {
	var rec domain.PoolRecord
	var priceHist, liqHist []byte

	err := row.Scan(
		&rec.Address,
		&rec.IsNativeBase,
		&rec.BaseMint,
		&rec.QuoteMint,
		&rec.Price,
		&rec.Reserves.Native,
		&rec.Reserves.Token,
		&priceHist,
		&liqHist,
		&rec.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(priceHist, &rec.PriceHistory); err != nil {
		return nil, fmt.Errorf("unmarshal price history: %w", err)
	}
	if err := json.Unmarshal(liqHist, &rec.LiquidityHistory); err != nil {
		return nil, fmt.Errorf("unmarshal liquidity history: %w", err)
	}
	return &rec, nil
}
