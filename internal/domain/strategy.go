package domain

// StrategyID identifica una de las dos estrategias mutuamente excluyentes.
// Variante cerrada: la evaluación es una función pura por variante, nunca
// dispatch abierto sobre flags.
type StrategyID int

const (
	// StrategyLongYes compra el lado YES del mercado de predicción y cubre
	// vendiendo el spread de opciones (apuesta: poly_yes > prob implícita).
	StrategyLongYes StrategyID = iota
	// StrategyShortYes toma el lado contrario: corto en YES (largo en NO)
	// y largo en el spread de opciones.
	StrategyShortYes
)

func (s StrategyID) String() string {
	switch s {
	case StrategyLongYes:
		return "long_yes"
	case StrategyShortYes:
		return "short_yes"
	default:
		return "unknown"
	}
}

// StrategyEvaluation es el resultado de evaluar una estrategia en un tick.
// Nunca se persiste sola: siempre embebida en un ResultRecord.
type StrategyEvaluation struct {
	Strategy      StrategyID
	ExpectedValue float64
	Margin        float64
	EVMarginRatio float64
}

// Margin calcula el margen inicial de una pata: tamaño × (prima + factor de riesgo).
func Margin(contractSize, premium, riskFactor float64) float64 {
	return contractSize * (premium + riskFactor)
}

// ExpectedValueLongYes es el EV de la estrategia long_yes:
// inversión × (poly_yes − prob_implícita) − costes totales.
func ExpectedValueLongYes(polyYesPrice, impliedProb, investment, totalCosts float64) float64 {
	return investment*(polyYesPrice-impliedProb) - totalCosts
}

// ExpectedValueShortYes es el espejo de long_yes con el signo del diff
// invertido y las patas intercambiadas: corto en YES equivale
// económicamente a largo en NO.
func ExpectedValueShortYes(polyYesPrice, impliedProb, investment, totalCosts float64) float64 {
	return investment*(impliedProb-polyYesPrice) - totalCosts
}

// PickBest devuelve la evaluación ganadora entre las dos estrategias y
// verifica el margen del ganador.
//
// Invariantes: EV = max(ev_yes, ev_no) y ratio = EV / IM del ganador.
// Si el IM del ganador es 0 devuelve DegenerateMarginError en lugar de
// dividir: el ratio sería indefinido.
func PickBest(event string, longYes, shortYes StrategyEvaluation) (StrategyEvaluation, error) {
	best := longYes
	if shortYes.ExpectedValue > longYes.ExpectedValue {
		best = shortYes
	}
	if best.Margin == 0 {
		return StrategyEvaluation{}, &DegenerateMarginError{Event: event, Strategy: best.Strategy}
	}
	best.EVMarginRatio = best.ExpectedValue / best.Margin
	return best, nil
}
