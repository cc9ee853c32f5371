package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/evarb/internal/domain"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(id string, ts time.Time) domain.ResultRecord {
	return domain.ResultRecord{
		SignalID:       id,
		MarketTitle:    "BTC above 100k",
		Timestamp:      ts,
		Investment:     1000,
		Spot:           100000,
		PolyYesPrice:   0.55,
		DeribitProb:    0.475,
		ExpectedPnlYes: 75,
		TotalCosts:     9.05,
		EV:             65.95,
		IM:             700,
		EVIMRatio:      0.0942,
		EvYes:          65.95,
		EvNo:           -84.05,
		Suggest1:       "buy YES @ 0.550 (long_yes, 1818.2 shares)",
		Suggest2:       "EV 65.95 USD",
	}
}

func TestSQLite_RecordRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, s.SaveRecord(ctx, sampleRecord("sig-1", now)))
	require.NoError(t, s.SaveRecord(ctx, sampleRecord("sig-2", now.Add(time.Minute))))

	records, err := s.GetRecords(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, records, 2)

	// más recientes primero
	assert.Equal(t, "sig-2", records[0].SignalID)
	got := records[1]
	assert.Equal(t, "BTC above 100k", got.MarketTitle)
	assert.Equal(t, 0.475, got.DeribitProb)
	assert.Equal(t, 65.95, got.EV)
	assert.Equal(t, 700.0, got.IM)
}

func TestSQLite_RecordsAreAppendOnly(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.SaveRecord(ctx, sampleRecord("sig-1", now)))
	// mismo signal_id: rechazado, nunca sobreescrito
	assert.Error(t, s.SaveRecord(ctx, sampleRecord("sig-1", now)))
}

func TestSQLite_SnapshotRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	snap := domain.PnlSnapshot{
		Timestamp:             now,
		TotalPositions:        3,
		TotalCostBasisUSD:     1500,
		TotalUnrealizedPnlUSD: 42.5,
		ShadowPnlUSD:          50,
		RealPnlUSD:            42.5,
		DiffUSD:               -7.5,
		OpenPositions:         2,
		ClosedPositions:       1,
	}
	require.NoError(t, s.SaveSnapshot(ctx, snap))

	snaps, err := s.GetSnapshots(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	got := snaps[0]
	assert.Equal(t, 3, got.TotalPositions)
	assert.Equal(t, -7.5, got.DiffUSD)
	assert.InDelta(t, got.RealPnlUSD-got.ShadowPnlUSD, got.DiffUSD, 1e-12)
}

func TestSQLite_PositionLedgerViews(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	closed := now.Add(time.Hour)

	require.NoError(t, s.InsertPosition(ctx, "real", domain.Position{
		MarketID:   "mkt-1",
		Side:       "YES",
		Strategy:   domain.StrategyLongYes,
		Size:       100,
		EntryPrice: 0.50,
		Status:     domain.PositionOpen,
		OpenedAt:   now,
	}))
	require.NoError(t, s.InsertPosition(ctx, "shadow", domain.Position{
		MarketID:   "mkt-1",
		Side:       "NO",
		Strategy:   domain.StrategyShortYes,
		Size:       100,
		EntryPrice: 0.45,
		Status:     domain.PositionClosed,
		OpenedAt:   now,
		ClosedAt:   &closed,
		ExitPrice:  0.40,
	}))

	real, err := s.RealPositions(ctx)
	require.NoError(t, err)
	require.Len(t, real, 1)
	assert.Equal(t, "YES", real[0].Side)
	assert.Equal(t, domain.StrategyLongYes, real[0].Strategy)
	assert.Equal(t, domain.PositionOpen, real[0].Status)
	assert.Nil(t, real[0].ClosedAt)

	shadow, err := s.ShadowPositions(ctx)
	require.NoError(t, err)
	require.Len(t, shadow, 1)
	assert.Equal(t, domain.StrategyShortYes, shadow[0].Strategy)
	assert.Equal(t, domain.PositionClosed, shadow[0].Status)
	require.NotNil(t, shadow[0].ClosedAt)
	assert.Equal(t, 0.40, shadow[0].ExitPrice)
}

func TestSQLite_EmptyRanges(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now().UTC()

	records, err := s.GetRecords(ctx, now, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, records)

	snaps, err := s.GetSnapshots(ctx, now, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, snaps)
}
