package domain

import "time"

// MarketQuote es la cotización normalizada de un instrumento en un tick.
// Inmutable una vez creada: una por instrumento por tick.
type MarketQuote struct {
	InstrumentID       string
	MidPrice           float64
	Bid                float64
	Ask                float64
	ImpliedProbability float64 // probabilidad de que el umbral se cruce (0-1)
	UnderlyingPrice    float64
	Timestamp          time.Time
}

// HasSignal devuelve true si la cotización lleva una probabilidad utilizable.
// El 0.0 exacto es el sentinel "sin señal" del modelo de probabilidad.
func (q MarketQuote) HasSignal() bool {
	return q.ImpliedProbability > 0
}

// OptionSnapshot es el payload crudo de la fuente de opciones (estilo Deribit).
// El engine exige al menos UnderlyingPrice y MarkIV o una probabilidad directa.
type OptionSnapshot struct {
	InstrumentName  string
	MarkIV          float64 // volatilidad implícita en % (60 = 0.6 anualizada)
	BidPrice        float64
	AskPrice        float64
	LastPrice       float64
	MarkPrice       float64
	UnderlyingPrice float64
	Probability     float64 // si > 0, probabilidad precalculada de una superficie IV
	StableSettled   bool    // liquidación en stablecoin (afecta al cap de fees)
}

// EventQuotes es el par de cotizaciones congeladas de un evento en un tick.
// CapturedAt es el tiempo lógico del snapshot: todas las evaluaciones del
// tick usan cotizaciones con el mismo CapturedAt.
type EventQuotes struct {
	EventName     string
	Asset         string
	Option        MarketQuote
	Prediction    MarketQuote
	Spot          float64
	StableSettled bool // el instrumento de opciones liquida en stablecoin
	ExpiresAt     time.Time
	CapturedAt    time.Time
}
