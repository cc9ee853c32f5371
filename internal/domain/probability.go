package domain

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// stdNormal es la normal estándar compartida por todo el modelo.
// distuv.Normal es inmutable, segura para uso concurrente.
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// ProbabilityAbove devuelve P(S_T > K) bajo difusión lognormal: Φ(d2).
//
// Entradas degeneradas (spot, strike, volatility o timeToExpiry <= 0)
// devuelven exactamente 0.0 — es el sentinel "sin señal", no un error.
// Los consumidores tratan 0.0 como "incomparable, saltar este evento".
func ProbabilityAbove(spot, strike, timeToExpiry, volatility, rate float64) float64 {
	if spot <= 0 || strike <= 0 || volatility <= 0 || timeToExpiry <= 0 {
		return 0.0
	}
	sqrtT := math.Sqrt(timeToExpiry)
	d1 := (math.Log(spot/strike) + (rate+0.5*volatility*volatility)*timeToExpiry) / (volatility * sqrtT)
	d2 := d1 - volatility*sqrtT
	return stdNormal.CDF(d2)
}

// IntervalProbabilities son las probabilidades de las cuatro bandas de precio
// al vencimiento, normalizadas para sumar 1.
type IntervalProbabilities struct {
	BelowK1  float64 // S_T < K1
	K1ToPoly float64 // K1 <= S_T < K_poly
	PolyToK2 float64 // K_poly <= S_T < K2
	AboveK2  float64 // S_T >= K2
}

// ComputeIntervalProbabilities calcula las bandas a partir de Φ(d2) en cada
// strike. Si alguna entrada es degenerada devuelve el zero value (sin señal).
func ComputeIntervalProbabilities(spot, k1, kPoly, k2, timeToExpiry, volatility, rate float64) IntervalProbabilities {
	pGeK1 := ProbabilityAbove(spot, k1, timeToExpiry, volatility, rate)
	pGeKp := ProbabilityAbove(spot, kPoly, timeToExpiry, volatility, rate)
	pGeK2 := ProbabilityAbove(spot, k2, timeToExpiry, volatility, rate)
	if pGeK1 == 0 && pGeKp == 0 && pGeK2 == 0 {
		return IntervalProbabilities{}
	}

	ip := IntervalProbabilities{
		BelowK1:  1.0 - pGeK1,
		K1ToPoly: math.Max(0, pGeK1-pGeKp),
		PolyToK2: math.Max(0, pGeKp-pGeK2),
		AboveK2:  pGeK2,
	}

	// Renormalizar para garantizar suma 1 pese al clamping
	total := ip.BelowK1 + ip.K1ToPoly + ip.PolyToK2 + ip.AboveK2
	if total > 0 {
		ip.BelowK1 /= total
		ip.K1ToPoly /= total
		ip.PolyToK2 /= total
		ip.AboveK2 /= total
	}
	return ip
}
