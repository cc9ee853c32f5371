package reconcile_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/evarb/internal/domain"
	"github.com/alejandrodnm/evarb/internal/reconcile"
)

type mockHistory struct {
	records   []domain.ResultRecord
	snapshots []domain.PnlSnapshot
	err       error

	from, to time.Time
}

func (m *mockHistory) GetRecords(_ context.Context, from, to time.Time) ([]domain.ResultRecord, error) {
	m.from, m.to = from, to
	return m.records, m.err
}

func (m *mockHistory) GetSnapshots(_ context.Context, from, to time.Time) ([]domain.PnlSnapshot, error) {
	return m.snapshots, m.err
}

type mockNotifier struct {
	records   []domain.ResultRecord
	snapshots []domain.PnlSnapshot
}

func (m *mockNotifier) Notify(_ context.Context, records []domain.ResultRecord) error {
	m.records = append(m.records, records...)
	return nil
}

func (m *mockNotifier) NotifySnapshot(_ context.Context, s domain.PnlSnapshot) error {
	m.snapshots = append(m.snapshots, s)
	return nil
}

func TestDailyReport_DeliversLastDay(t *testing.T) {
	now := time.Date(2025, 6, 27, 12, 0, 0, 0, time.UTC)
	history := &mockHistory{
		records: []domain.ResultRecord{
			{SignalID: "sig-1", MarketTitle: "BTC above 100k", Timestamp: now.Add(-time.Hour)},
			{SignalID: "sig-2", MarketTitle: "ETH above 4k", Timestamp: now.Add(-2 * time.Hour)},
		},
		snapshots: []domain.PnlSnapshot{
			{Timestamp: now.Add(-time.Hour), RealPnlUSD: 42.5, ShadowPnlUSD: 50, DiffUSD: -7.5},
		},
	}
	notifier := &mockNotifier{}

	require.NoError(t, reconcile.DailyReport(context.Background(), history, notifier, now))

	assert.Equal(t, now.Add(-24*time.Hour), history.from)
	assert.Equal(t, now, history.to)
	assert.Len(t, notifier.records, 2)
	require.Len(t, notifier.snapshots, 1)
	assert.Equal(t, -7.5, notifier.snapshots[0].DiffUSD)
}

func TestDailyReport_EmptyHistory(t *testing.T) {
	notifier := &mockNotifier{}
	require.NoError(t, reconcile.DailyReport(context.Background(), &mockHistory{}, notifier, time.Now()))

	assert.Empty(t, notifier.records)
	assert.Empty(t, notifier.snapshots)
}

func TestDailyReport_HistoryError(t *testing.T) {
	history := &mockHistory{err: errors.New("db locked")}
	err := reconcile.DailyReport(context.Background(), history, &mockNotifier{}, time.Now())
	assert.Error(t, err)
}
