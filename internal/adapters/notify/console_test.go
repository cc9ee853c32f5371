package notify

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/evarb/internal/domain"
)

func sampleRecords() []domain.ResultRecord {
	return []domain.ResultRecord{
		{
			SignalID:     "sig-1",
			MarketTitle:  "BTC above 100k",
			Timestamp:    time.Now(),
			Investment:   1000,
			PolyYesPrice: 0.55,
			DeribitProb:  0.475,
			EV:           65.95,
			IM:           700,
			EVIMRatio:    0.094,
			Suggest1:     "buy YES @ 0.550 (long_yes, 1818.2 shares)",
			Suggest2:     "EV 65.95 USD",
		},
		{
			SignalID:    "sig-2",
			MarketTitle: "ETH above 4k",
			Timestamp:   time.Now(),
			Investment:  1000,
			Suggest1:    domain.SuggestNoSignal,
			Suggest2:    "probability model returned the no-signal sentinel",
		},
	}
}

func TestConsole_CompactOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false, 0)

	require.NoError(t, c.Notify(context.Background(), sampleRecords()))

	out := buf.String()
	assert.Contains(t, out, "2 records")
	assert.Contains(t, out, "actionable:1")
	assert.Contains(t, out, "BTC above 100k")
	// los no accionables no aparecen en el compacto
	assert.NotContains(t, out, "ETH above 4k")
}

func TestConsole_TableOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, true, 0)

	require.NoError(t, c.Notify(context.Background(), sampleRecords()))

	out := buf.String()
	assert.Contains(t, out, "BTC above 100k")
	assert.Contains(t, out, "ETH above 4k")
	assert.Contains(t, out, "buy YES")
}

func TestConsole_NotifyThresholdHidesLowEV(t *testing.T) {
	var buf bytes.Buffer
	// sig-1 tiene EV 65.95: por debajo del umbral no se destaca
	c := NewConsoleWriter(&buf, false, 100)

	require.NoError(t, c.Notify(context.Background(), sampleRecords()))

	out := buf.String()
	assert.Contains(t, out, "actionable:1")
	assert.NotContains(t, out, "BTC above 100k")
}

func TestConsole_EmptyTick(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false, 0)

	require.NoError(t, c.Notify(context.Background(), nil))
	assert.Contains(t, buf.String(), "no records this tick")
}

func TestConsole_Snapshot(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleWriter(&buf, false, 0)

	snap := domain.PnlSnapshot{
		Timestamp:       time.Now(),
		TotalPositions:  3,
		OpenPositions:   2,
		ClosedPositions: 1,
		RealPnlUSD:      42.5,
		ShadowPnlUSD:    50,
		DiffUSD:         -7.5,
	}
	require.NoError(t, c.NotifySnapshot(context.Background(), snap))

	out := buf.String()
	assert.Contains(t, out, "real $42.50")
	assert.Contains(t, out, "diff $-7.50")
}
