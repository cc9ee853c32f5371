package domain

import "math"

// FeeCombination decide cómo se combinan el cap y el fee proporcional por leg.
// Deribit publica el cap como máximo (min(cap, rate*precio)), pero existe la
// variante pesimista max(cap, rate*precio); la política es configurable y
// explícita, nunca un default silencioso.
type FeeCombination string

const (
	FeeCombineMin FeeCombination = "min" // mejor caso: el cap limita el fee
	FeeCombineMax FeeCombination = "max" // peor caso: el cap es el suelo del fee
)

// Valid devuelve true si la política es una de las dos variantes soportadas.
func (f FeeCombination) Valid() bool {
	return f == FeeCombineMin || f == FeeCombineMax
}

// CostParameters es la configuración de costes de todo el proceso.
// Se carga una vez al arrancar y es de solo lectura: una misma instancia
// se comparte entre todas las evaluaciones concurrentes de un tick.
type CostParameters struct {
	FeeCap            float64 // cap por leg en moneda de liquidación (ej. 0.0003 BTC)
	FeeRate           float64 // fee proporcional al precio del instrumento (ej. 0.125)
	GasOpen           float64 // gas fijo de apertura (USD)
	GasClose          float64 // gas fijo de cierre (USD)
	MarginRequirement float64 // margen base (USD) para el carry si el IM calculado no está disponible
	RiskFreeRate      float64 // tasa anualizada para coste de carry
	TxFeeRate         float64 // fee de red/plataforma proporcional a la inversión
	BaseFee           float64 // fee de red/plataforma fijo (USD)
	FeeCombination    FeeCombination
}

// LegFee calcula el fee de una pata de opción.
//
// fee = combine(cap, FeeRate × instrumentPrice) × size, donde el cap está
// denominado en la moneda de liquidación nativa; si el instrumento liquida
// en stablecoin, el cap se convierte con el precio del índice subyacente.
func (c CostParameters) LegFee(instrumentPrice, size, indexPrice float64, stableSettled bool) float64 {
	if size <= 0 || instrumentPrice < 0 {
		return 0
	}
	cap := c.FeeCap
	if stableSettled {
		cap = c.FeeCap * indexPrice
	}
	rated := c.FeeRate * instrumentPrice

	var perLeg float64
	switch c.FeeCombination {
	case FeeCombineMax:
		perLeg = math.Max(cap, rated)
	default:
		perLeg = math.Min(cap, rated)
	}
	return perLeg * size
}

// NetworkFee es el fee estimado de red/plataforma para una inversión dada.
func (c CostParameters) NetworkFee(investment float64) float64 {
	if investment <= 0 {
		return c.BaseFee
	}
	return investment*c.TxFeeRate + c.BaseFee
}

// TotalCosts suma los tres componentes de coste de una operación:
// fees de opciones por leg, gas de apertura+cierre y fee de red.
// El evaluador consume el total sin modificarlo.
func (c CostParameters) TotalCosts(investment float64, legFees ...float64) float64 {
	total := c.GasOpen + c.GasClose + c.NetworkFee(investment)
	for _, f := range legFees {
		total += f
	}
	return total
}

// CarryCost es el coste de mantener margen e inversión inmovilizados
// durante daysHeld días a la tasa libre de riesgo (aproximación lineal).
func (c CostParameters) CarryCost(marginUSD, investmentUSD, daysHeld float64) float64 {
	factor := math.Max(0, daysHeld) / 365.0
	return (marginUSD + investmentUSD) * c.RiskFreeRate * factor
}
