package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedValueLongYes_Scenario(t *testing.T) {
	// poly_yes=0.65, prob=0.50, inversión=100, costes=5 → 100·0.15 − 5 = 10
	ev := ExpectedValueLongYes(0.65, 0.50, 100, 5)
	assert.InDelta(t, 10.0, ev, 1e-12)
}

func TestExpectedValueShortYes_MirrorsLongYes(t *testing.T) {
	// Espejo: mismo diff con signo invertido, mismos costes
	evYes := ExpectedValueLongYes(0.65, 0.50, 100, 5)
	evNo := ExpectedValueShortYes(0.65, 0.50, 100, 5)
	assert.InDelta(t, -(evYes + 5), evNo-(-5), 1e-12)
	assert.InDelta(t, -20.0, evNo, 1e-12) // 100·(0.50−0.65) − 5
}

func TestMargin(t *testing.T) {
	// tamaño × (prima + factor de riesgo)
	assert.InDelta(t, 1*(0.03+0.02), Margin(1, 0.03, 0.02), 1e-12)
	assert.Zero(t, Margin(0, 0.03, 0.02))
}

func TestPickBest_EVIsMax(t *testing.T) {
	longYes := StrategyEvaluation{Strategy: StrategyLongYes, ExpectedValue: 10, Margin: 50}
	shortYes := StrategyEvaluation{Strategy: StrategyShortYes, ExpectedValue: -20, Margin: 40}

	best, err := PickBest("BTC > $100k", longYes, shortYes)
	require.NoError(t, err)

	assert.Equal(t, StrategyLongYes, best.Strategy)
	assert.InDelta(t, 10.0, best.ExpectedValue, 1e-12)
	// ratio × IM == EV
	assert.InDelta(t, best.ExpectedValue, best.EVMarginRatio*best.Margin, 1e-9)
}

func TestPickBest_ShortYesWins(t *testing.T) {
	longYes := StrategyEvaluation{Strategy: StrategyLongYes, ExpectedValue: -3, Margin: 50}
	shortYes := StrategyEvaluation{Strategy: StrategyShortYes, ExpectedValue: 7, Margin: 35}

	best, err := PickBest("ETH > $5k", longYes, shortYes)
	require.NoError(t, err)

	assert.Equal(t, StrategyShortYes, best.Strategy)
	assert.InDelta(t, 0.2, best.EVMarginRatio, 1e-12)
}

func TestPickBest_DegenerateMargin(t *testing.T) {
	longYes := StrategyEvaluation{Strategy: StrategyLongYes, ExpectedValue: 10, Margin: 0}
	shortYes := StrategyEvaluation{Strategy: StrategyShortYes, ExpectedValue: -2, Margin: 40}

	_, err := PickBest("BTC > $100k", longYes, shortYes)
	require.Error(t, err)

	var dme *DegenerateMarginError
	require.ErrorAs(t, err, &dme)
	assert.Equal(t, StrategyLongYes, dme.Strategy)
	assert.Equal(t, "BTC > $100k", dme.Event)
}

func TestStrategyID_String(t *testing.T) {
	assert.Equal(t, "long_yes", StrategyLongYes.String())
	assert.Equal(t, "short_yes", StrategyShortYes.String())
	assert.Equal(t, "unknown", StrategyID(99).String())
}
