package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
	"github.com/xbxaxd26/pump-swap-screen/internal/observability"
	"github.com/xbxaxd26/pump-swap-screen/internal/storage"
)

// HistoryStore implements storage.HistoryStore using ClickHouse.
// Each archived row is one pool observation; MergeTree keeps the full
// series where the in-memory histories are bounded.
type HistoryStore struct {
	conn *Conn
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(conn *Conn) *HistoryStore {
	return &HistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.HistoryStore = (*HistoryStore)(nil)

// Archive appends the current point of a pool.
func (s *HistoryStore) Archive(ctx context.Context, rec *domain.PoolRecord) error {
	return s.ArchiveBulk(ctx, []*domain.PoolRecord{rec})
}

// ArchiveBulk appends points for multiple pools.
func (s *HistoryStore) ArchiveBulk(ctx context.Context, recs []*domain.PoolRecord) (err error) {
	if len(recs) == 0 {
		return nil
	}
	began := time.Now()
	defer func() { observability.RecordDBQuery("clickhouse", "archive_history", time.Since(began).Seconds(), err) }()

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO pool_history (pool, timestamp_ms, price, liquidity)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, rec := range recs {
		if rec == nil || rec.Address == "" {
			return storage.ErrInvalidInput
		}
		if err := batch.Append(rec.Address, rec.Timestamp, rec.Price, rec.Reserves.Native); err != nil {
			return fmt.Errorf("append point: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetRange retrieves archived points for a pool within [start, end]
// (inclusive, Unix ms), ordered by timestamp ASC.
func (s *HistoryStore) GetRange(ctx context.Context, pool string, start, end int64) (points []storage.ArchivedPoint, err error) {
	began := time.Now()
	defer func() { observability.RecordDBQuery("clickhouse", "get_history_range", time.Since(began).Seconds(), err) }()

	query := `
		SELECT pool, timestamp_ms, price, liquidity
		FROM pool_history
		WHERE pool = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, pool, start, end)
	if err != nil {
		return nil, fmt.Errorf("query pool history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p storage.ArchivedPoint
		if err := rows.Scan(&p.Pool, &p.TimestampMs, &p.Price, &p.Liquidity); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points: %w", err)
	}
	return points, nil
}
