package engine

import (
	"time"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// Event es la definición de un evento monitorizado: el umbral del mercado
// de predicción y los strikes del bracket de opciones.
type Event struct {
	Name       string
	Asset      string
	PmAssetID  string
	K1Strike   float64
	K2Strike   float64
	Expiration time.Time
}

// Normalizer convierte los snapshots crudos de las dos fuentes en un
// EventQuotes congelado. Toda evaluación del tick consume cotizaciones con
// el mismo CapturedAt: mezclar ticks para un mismo evento es un defecto.
type Normalizer struct {
	riskFreeRate float64
	fallbackVol  float64 // volatilidad anualizada si la fuente no da mark_iv
}

// NewNormalizer crea un Normalizer con los parámetros del modelo.
func NewNormalizer(riskFreeRate, fallbackVol float64) *Normalizer {
	return &Normalizer{riskFreeRate: riskFreeRate, fallbackVol: fallbackVol}
}

// Normalize construye el EventQuotes de un evento a partir del snapshot de
// opciones y el book del mercado de predicción.
//
// Requiere underlying_price y (mark_iv o probabilidad directa) del lado de
// opciones, y bid/ask del lado de predicción. Cualquier campo ausente
// devuelve DataUnavailableError: el evento se salta, el batch continúa.
func (n *Normalizer) Normalize(
	event Event,
	snap domain.OptionSnapshot,
	book domain.OrderBook,
	now time.Time,
) (domain.EventQuotes, error) {
	if snap.UnderlyingPrice <= 0 {
		return domain.EventQuotes{}, &domain.DataUnavailableError{Event: event.Name, Field: "underlying_price"}
	}
	// mark_iv llega en % (60 = 0.6 anualizada); sin mark_iv se usa la
	// volatilidad de configuración como fallback.
	vol := snap.MarkIV / 100
	if vol <= 0 {
		vol = n.fallbackVol
	}
	if vol <= 0 && snap.Probability <= 0 {
		return domain.EventQuotes{}, &domain.DataUnavailableError{Event: event.Name, Field: "mark_iv"}
	}

	bid := book.BestBid()
	ask := book.BestAsk()
	if bid <= 0 || ask <= 0 {
		return domain.EventQuotes{}, &domain.DataUnavailableError{Event: event.Name, Field: "prediction bid/ask"}
	}

	prob := snap.Probability
	if prob <= 0 {
		timeToExpiry := event.Expiration.Sub(now).Hours() / 24 / 365
		prob = domain.ProbabilityAbove(snap.UnderlyingPrice, event.K1Strike, timeToExpiry, vol, n.riskFreeRate)
	}

	optionMid := snap.MarkPrice
	if optionMid <= 0 {
		optionMid = (snap.BidPrice + snap.AskPrice) / 2
	}

	return domain.EventQuotes{
		EventName: event.Name,
		Asset:     event.Asset,
		Option: domain.MarketQuote{
			InstrumentID:       snap.InstrumentName,
			MidPrice:           optionMid,
			Bid:                snap.BidPrice,
			Ask:                snap.AskPrice,
			ImpliedProbability: prob,
			UnderlyingPrice:    snap.UnderlyingPrice,
			Timestamp:          now,
		},
		Prediction: domain.MarketQuote{
			InstrumentID:       book.AssetID,
			MidPrice:           book.Midpoint(),
			Bid:                bid,
			Ask:                ask,
			ImpliedProbability: book.Midpoint(),
			Timestamp:          now,
		},
		Spot:          snap.UnderlyingPrice,
		StableSettled: snap.StableSettled,
		ExpiresAt:     event.Expiration,
		CapturedAt:    now,
	}, nil
}
