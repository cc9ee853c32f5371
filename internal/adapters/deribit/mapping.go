package deribit

import (
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// InstrumentName construye el nombre canónico del call europeo:
// "BTC-27JUN25-100000-C". Los strikes fraccionales (< 1 USD no existen en
// Deribit) se truncan a entero.
func InstrumentName(asset string, strike float64, expiry time.Time) string {
	return fmt.Sprintf("%s-%s-%d-C",
		strings.ToUpper(asset),
		strings.ToUpper(expiry.Format("2Jan06")),
		int64(strike),
	)
}

// IndexName construye el nombre del índice spot: "btc_usd".
func IndexName(asset string) string {
	return strings.ToLower(asset) + "_usd"
}

// tickerResponse es el envelope JSON-RPC de /public/ticker.
type tickerResponse struct {
	Result tickerResult `json:"result"`
}

type tickerResult struct {
	InstrumentName  string  `json:"instrument_name"`
	MarkIV          float64 `json:"mark_iv"`
	BestBidPrice    float64 `json:"best_bid_price"`
	BestAskPrice    float64 `json:"best_ask_price"`
	LastPrice       float64 `json:"last_price"`
	MarkPrice       float64 `json:"mark_price"`
	UnderlyingPrice float64 `json:"underlying_price"`
	IndexPrice      float64 `json:"index_price"`
}

// toDomain mapea el ticker crudo al snapshot del dominio. Los instrumentos
// USDC-settled llevan sufijo de moneda en el nombre.
func (t tickerResult) toDomain(instrument string) domain.OptionSnapshot {
	underlying := t.UnderlyingPrice
	if underlying <= 0 {
		underlying = t.IndexPrice
	}
	return domain.OptionSnapshot{
		InstrumentName:  instrument,
		MarkIV:          t.MarkIV,
		BidPrice:        t.BestBidPrice,
		AskPrice:        t.BestAskPrice,
		LastPrice:       t.LastPrice,
		MarkPrice:       t.MarkPrice,
		UnderlyingPrice: underlying,
		StableSettled:   strings.Contains(instrument, "USDC"),
	}
}

// indexResponse es el envelope JSON-RPC de /public/get_index_price.
type indexResponse struct {
	Result struct {
		IndexPrice float64 `json:"index_price"`
	} `json:"result"`
}
