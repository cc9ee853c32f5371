package polymarket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookToDomain_SortsAndFilters(t *testing.T) {
	raw := bookResponse{
		Bids: []rawLevel{
			{Price: "0.51", Size: "100"},
			{Price: "0.53", Size: "200"}, // mejor bid, llega desordenado
			{Price: "0", Size: "50"},     // nivel sin precio: descartado
		},
		Asks: []rawLevel{
			{Price: "0.58", Size: "300"},
			{Price: "0.55", Size: "150"}, // mejor ask
			{Price: "0.56", Size: ""},    // tamaño ilegible: descartado
		},
	}

	book := raw.toDomain("0xyes")
	assert.Equal(t, "0xyes", book.AssetID)

	require.Len(t, book.Bids, 2)
	assert.Equal(t, 0.53, book.BestBid())

	require.Len(t, book.Asks, 2)
	assert.Equal(t, 0.55, book.BestAsk())
	assert.InDelta(t, 0.54, book.Midpoint(), 1e-9)
}

func TestBookToDomain_Empty(t *testing.T) {
	book := bookResponse{}.toDomain("0xempty")
	assert.Zero(t, book.BestBid())
	assert.Zero(t, book.BestAsk())
	assert.Zero(t, book.Midpoint())
}
