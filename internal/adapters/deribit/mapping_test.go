package deribit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInstrumentName(t *testing.T) {
	expiry := time.Date(2025, 6, 27, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, "BTC-27JUN25-100000-C", InstrumentName("BTC", 100000, expiry))
	assert.Equal(t, "ETH-27JUN25-4000-C", InstrumentName("eth", 4000, expiry))

	// Día de un solo dígito sin cero a la izquierda
	early := time.Date(2025, 7, 4, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "BTC-4JUL25-105000-C", InstrumentName("BTC", 105000, early))
}

func TestIndexName(t *testing.T) {
	assert.Equal(t, "btc_usd", IndexName("BTC"))
	assert.Equal(t, "eth_usd", IndexName("eth"))
}

func TestTickerToDomain(t *testing.T) {
	raw := tickerResult{
		MarkIV:          58.3,
		BestBidPrice:    0.048,
		BestAskPrice:    0.052,
		LastPrice:       0.05,
		MarkPrice:       0.0501,
		UnderlyingPrice: 101234.5,
	}

	snap := raw.toDomain("BTC-27JUN25-100000-C")
	assert.Equal(t, "BTC-27JUN25-100000-C", snap.InstrumentName)
	assert.Equal(t, 58.3, snap.MarkIV)
	assert.Equal(t, 101234.5, snap.UnderlyingPrice)
	assert.False(t, snap.StableSettled)
}

func TestTickerToDomain_StableSettled(t *testing.T) {
	snap := tickerResult{IndexPrice: 4000}.toDomain("ETH_USDC-27JUN25-4000-C")

	assert.True(t, snap.StableSettled)
	// underlying ausente: cae al index price
	assert.Equal(t, 4000.0, snap.UnderlyingPrice)
}
