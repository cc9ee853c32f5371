package domain

import (
	"fmt"
	"time"
)

// Sugerencias "no trade": siempre es más seguro emitir un registro que
// explique por qué no se actúa que omitir el evento.
const (
	SuggestNoSignal    = "no trade: no probability signal"
	SuggestNegativeEV  = "no trade: best EV is non-positive"
	SuggestBelowMinEV  = "no trade: EV below configured minimum"
	SuggestBelowMinROI = "no trade: ROI below configured minimum"
	SuggestPriceBounds = "no trade: prediction price outside configured bounds"
	SuggestDailyLimit  = "no trade: daily trade limit reached"
)

// ResultRecord es el contrato de salida del evaluador: un registro inmutable
// por (evento, tick), append-only en el decision log.
//
// Invariantes: EV = max(EvYes, EvNo) y EVIMRatio = EV / IM, donde IM es el
// margen de la estrategia ganadora.
type ResultRecord struct {
	SignalID       string
	MarketTitle    string
	Timestamp      time.Time
	Investment     float64
	Spot           float64
	PolyYesPrice   float64
	DeribitProb    float64
	ExpectedPnlYes float64
	TotalCosts     float64
	EV             float64
	IM             float64
	EVIMRatio      float64
	EvYes          float64 // EV de long_yes, retenido para auditar la estrategia rechazada
	EvNo           float64 // EV de short_yes
	Suggest1       string
	Suggest2       string
}

// Validate comprueba los campos obligatorios antes de persistir.
// Un registro a medio construir nunca debe llegar al log.
func (r ResultRecord) Validate() error {
	if r.SignalID == "" {
		return fmt.Errorf("result record: missing signal_id")
	}
	if r.MarketTitle == "" {
		return fmt.Errorf("result record: missing market_title")
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("result record: missing timestamp")
	}
	if r.Suggest1 == "" || r.Suggest2 == "" {
		return fmt.Errorf("result record: missing suggestions")
	}
	return nil
}

// IsActionable devuelve true si la sugerencia principal recomienda operar.
func (r ResultRecord) IsActionable() bool {
	switch r.Suggest1 {
	case SuggestNoSignal, SuggestNegativeEV, SuggestBelowMinEV,
		SuggestBelowMinROI, SuggestPriceBounds, SuggestDailyLimit:
		return false
	}
	return r.Suggest1 != ""
}
