package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbabilityAbove_Range(t *testing.T) {
	cases := []struct {
		name                        string
		spot, strike, tte, vol, rate float64
	}{
		{"deep ITM", 120000, 80000, 0.1, 0.5, 0.05},
		{"deep OTM", 50000, 120000, 0.1, 0.5, 0.05},
		{"ATM short expiry", 100000, 100000, 0.01, 0.6, 0.05},
		{"high vol", 100000, 100000, 0.5, 2.0, 0.0},
		{"low vol", 100000, 101000, 0.5, 0.05, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ProbabilityAbove(tc.spot, tc.strike, tc.tte, tc.vol, tc.rate)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		})
	}
}

func TestProbabilityAbove_DegenerateInputsReturnZero(t *testing.T) {
	// El 0.0 exacto es el sentinel "sin señal": downstream lo trata como
	// "saltar este evento", por eso nunca es un error.
	assert.Zero(t, ProbabilityAbove(0, 100000, 0.1, 0.6, 0.05))
	assert.Zero(t, ProbabilityAbove(-1, 100000, 0.1, 0.6, 0.05))
	assert.Zero(t, ProbabilityAbove(100000, 0, 0.1, 0.6, 0.05))
	assert.Zero(t, ProbabilityAbove(100000, 100000, 0, 0.6, 0.05))
	assert.Zero(t, ProbabilityAbove(100000, 100000, -0.1, 0.6, 0.05))
	assert.Zero(t, ProbabilityAbove(100000, 100000, 0.1, 0, 0.05))
}

func TestProbabilityAbove_AtTheMoney(t *testing.T) {
	// ATM con σ²/2 > r: el drift del log es negativo, Φ(d2) queda
	// ligeramente por debajo de 0.5.
	// d2 = (0 + (0.05 - 0.18)·0.0833) / (0.6·√0.0833) ≈ -0.0626
	p := ProbabilityAbove(100000, 100000, 0.0833, 0.6, 0.05)
	assert.InDelta(t, 0.475, p, 0.005)
}

func TestProbabilityAbove_MonotonicInSpot(t *testing.T) {
	prev := 0.0
	for spot := 80000.0; spot <= 120000; spot += 5000 {
		p := ProbabilityAbove(spot, 100000, 0.1, 0.6, 0.05)
		assert.GreaterOrEqual(t, p, prev, "probability must not decrease as spot rises")
		prev = p
	}
}

func TestComputeIntervalProbabilities_SumToOne(t *testing.T) {
	ip := ComputeIntervalProbabilities(100000, 95000, 100000, 105000, 0.0833, 0.6, 0.05)

	total := ip.BelowK1 + ip.K1ToPoly + ip.PolyToK2 + ip.AboveK2
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Greater(t, ip.BelowK1, 0.0)
	assert.Greater(t, ip.AboveK2, 0.0)
}

func TestComputeIntervalProbabilities_Degenerate(t *testing.T) {
	ip := ComputeIntervalProbabilities(0, 95000, 100000, 105000, 0.0833, 0.6, 0.05)
	assert.Equal(t, IntervalProbabilities{}, ip)
}
