package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
	"github.com/xbxaxd26/pump-swap-screen/internal/storage"
)

// SignalStore implements storage.SignalStore using PostgreSQL.
// Signals are append-only: every computation is logged.
type SignalStore struct {
	pool *Pool
}

// NewSignalStore creates a new SignalStore.
func NewSignalStore(pool *Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// Insert appends a computed signal.
func (s *SignalStore) Insert(ctx context.Context, sig domain.TradingSignal) (err error) {
	if sig.Mint == "" {
		return storage.ErrInvalidInput
	}
	start := time.Now()
	defer func() { observeQuery("insert_signal", start, err) }()

	query := `
		INSERT INTO signals (mint, signal, confidence, reasons, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.pool.Exec(ctx, query,
		sig.Mint,
		string(sig.Signal),
		sig.Confidence,
		sig.Reasons,
		sig.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

// GetByMint retrieves signals for a mint, newest first, up to limit.
func (s *SignalStore) GetByMint(ctx context.Context, mint string, limit int) (sigs []domain.TradingSignal, err error) {
	start := time.Now()
	defer func() { observeQuery("get_signals_by_mint", start, err) }()

	query := `
		SELECT mint, signal, confidence, reasons, created_at
		FROM signals
		WHERE mint = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, mint, limit)
	if err != nil {
		return nil, fmt.Errorf("query signals by mint: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetRecent retrieves the latest signals across all mints, newest first.
func (s *SignalStore) GetRecent(ctx context.Context, limit int) (sigs []domain.TradingSignal, err error) {
	start := time.Now()
	defer func() { observeQuery("get_recent_signals", start, err) }()

	query := `
		SELECT mint, signal, confidence, reasons, created_at
		FROM signals
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSignals(rows rowScanner) ([]domain.TradingSignal, error) {
	var sigs []domain.TradingSignal
	for rows.Next() {
		var sig domain.TradingSignal
		var class string
		if err := rows.Scan(&sig.Mint, &class, &sig.Confidence, &sig.Reasons, &sig.Timestamp); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.Signal = domain.SignalClass(class)
		sigs = append(sigs, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return sigs, nil
}
