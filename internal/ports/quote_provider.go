package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// OptionQuoteProvider obtiene snapshots de la cadena de opciones (estilo
// Deribit). El engine nunca hace I/O de red directamente: este es el único
// punto de suspensión del lado de opciones.
type OptionQuoteProvider interface {
	// FetchOptionSnapshot devuelve el snapshot del instrumento construido
	// a partir de asset, strike y expiración.
	FetchOptionSnapshot(ctx context.Context, asset string, strike float64, expiry time.Time) (domain.OptionSnapshot, error)

	// FetchIndexPrice devuelve el precio del índice subyacente (USD).
	FetchIndexPrice(ctx context.Context, asset string) (float64, error)
}

// PredictionQuoteProvider obtiene el orderbook del mercado de predicción.
type PredictionQuoteProvider interface {
	// FetchOrderBook devuelve el book del token dado, bids y asks ordenados.
	FetchOrderBook(ctx context.Context, assetID string) (domain.OrderBook, error)
}
