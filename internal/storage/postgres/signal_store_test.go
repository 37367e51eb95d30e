package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xbxaxd26/pump-swap-screen/internal/domain"
	"github.com/xbxaxd26/pump-swap-screen/internal/storage"
	"github.com/xbxaxd26/pump-swap-screen/internal/storage/postgres"
)

func TestSignalStore_InsertAndGetByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewSignalStore(pool)
	ctx := context.Background()

	sig := domain.TradingSignal{
		Mint:       "mintA",
		Signal:     domain.SignalBuy,
		Confidence: 35,
		Reasons:    []string{"Strong price increase: 25.00%", "Liquidity inflow: 30.00%"},
		Timestamp:  1700000000000,
	}
	require.NoError(t, store.Insert(ctx, sig))

	got, err := store.GetByMint(ctx, "mintA", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, sig.Mint, got[0].Mint)
	assert.Equal(t, sig.Signal, got[0].Signal)
	assert.Equal(t, sig.Confidence, got[0].Confidence)
	assert.Equal(t, sig.Reasons, got[0].Reasons)
	assert.Equal(t, sig.Timestamp, got[0].Timestamp)
}

func TestSignalStore_InsertInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewSignalStore(pool)
	err := store.Insert(context.Background(), domain.TradingSignal{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestSignalStore_AppendOnlyNewestFirst(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewSignalStore(pool)
	ctx := context.Background()

	for i, class := range []domain.SignalClass{domain.SignalHold, domain.SignalBuy, domain.SignalStrongBuy} {
		sig := domain.TradingSignal{
			Mint:       "mintA",
			Signal:     class,
			Confidence: float64(i * 20),
			Reasons:    []string{"test"},
			Timestamp:  1700000000000 + int64(i)*60000,
		}
		require.NoError(t, store.Insert(ctx, sig))
	}

	got, err := store.GetByMint(ctx, "mintA", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first; every computation is kept.
	assert.Equal(t, domain.SignalStrongBuy, got[0].Signal)
	assert.Equal(t, domain.SignalBuy, got[1].Signal)
	assert.Equal(t, domain.SignalHold, got[2].Signal)
}

func TestSignalStore_GetByMintLimit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewSignalStore(pool)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		sig := domain.TradingSignal{
			Mint:      "mintA",
			Signal:    domain.SignalHold,
			Reasons:   []string{},
			Timestamp: 1700000000000 + int64(i),
		}
		require.NoError(t, store.Insert(ctx, sig))
	}

	got, err := store.GetByMint(ctx, "mintA", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(1700000000004), got[0].Timestamp)
}

func TestSignalStore_GetRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewSignalStore(pool)
	ctx := context.Background()

	mints := []string{"mintA", "mintB", "mintC"}
	for i, mint := range mints {
		sig := domain.TradingSignal{
			Mint:      mint,
			Signal:    domain.SignalHold,
			Reasons:   []string{},
			Timestamp: 1700000000000 + int64(i)*1000,
		}
		require.NoError(t, store.Insert(ctx, sig))
	}

	got, err := store.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "mintC", got[0].Mint)
	assert.Equal(t, "mintB", got[1].Mint)
}
