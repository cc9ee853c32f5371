package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeCostParams(combine FeeCombination) CostParameters {
	return CostParameters{
		FeeCap:         0.0003,
		FeeRate:        0.125,
		GasOpen:        0.025,
		GasClose:       0.025,
		RiskFreeRate:   0.05,
		TxFeeRate:      0.001,
		BaseFee:        5,
		FeeCombination: combine,
	}
}

func TestLegFee_MinPolicy(t *testing.T) {
	c := makeCostParams(FeeCombineMin)

	// rate·price = 0.125·0.001 = 0.000125 < cap 0.0003 → gana el proporcional
	fee := c.LegFee(0.001, 10, 100000, false)
	assert.InDelta(t, 0.000125*10, fee, 1e-12)

	// rate·price = 0.125·0.01 = 0.00125 > cap → el cap limita
	fee = c.LegFee(0.01, 10, 100000, false)
	assert.InDelta(t, 0.0003*10, fee, 1e-12)
}

func TestLegFee_MaxPolicy(t *testing.T) {
	c := makeCostParams(FeeCombineMax)

	// Variante pesimista: el cap es el suelo del fee
	fee := c.LegFee(0.001, 10, 100000, false)
	assert.InDelta(t, 0.0003*10, fee, 1e-12)

	fee = c.LegFee(0.01, 10, 100000, false)
	assert.InDelta(t, 0.00125*10, fee, 1e-12)
}

func TestLegFee_StableSettledConvertsCap(t *testing.T) {
	c := makeCostParams(FeeCombineMin)

	// Con liquidación en stablecoin el cap se convierte a USD con el índice:
	// cap = 0.0003 × 100000 = 30 USD, rate·price = 0.125·40 = 5 → gana 5
	fee := c.LegFee(40, 1, 100000, true)
	assert.InDelta(t, 5.0, fee, 1e-12)
}

func TestLegFee_MonotonicInSize(t *testing.T) {
	for _, combine := range []FeeCombination{FeeCombineMin, FeeCombineMax} {
		c := makeCostParams(combine)
		prev := 0.0
		for size := 1.0; size <= 100; size += 7 {
			fee := c.LegFee(0.005, size, 100000, false)
			assert.GreaterOrEqual(t, fee, prev,
				"fee must not decrease as size grows (policy %s)", combine)
			prev = fee
		}
	}
}

func TestLegFee_ZeroSize(t *testing.T) {
	c := makeCostParams(FeeCombineMin)
	assert.Zero(t, c.LegFee(0.005, 0, 100000, false))
	assert.Zero(t, c.LegFee(0.005, -3, 100000, false))
}

func TestNetworkFee(t *testing.T) {
	c := makeCostParams(FeeCombineMin)
	// investment·tx_fee_rate + base_fee
	assert.InDelta(t, 100*0.001+5, c.NetworkFee(100), 1e-12)
	assert.InDelta(t, 5.0, c.NetworkFee(0), 1e-12)
}

func TestTotalCosts_SumsThreeComponents(t *testing.T) {
	c := makeCostParams(FeeCombineMin)

	total := c.TotalCosts(100, 1.5, 2.5)
	// legs (1.5+2.5) + gas (0.025+0.025) + red (100·0.001+5)
	assert.InDelta(t, 4.0+0.05+5.1, total, 1e-12)
}

func TestCarryCost(t *testing.T) {
	c := makeCostParams(FeeCombineMin)

	// (margen + inversión) · r · días/365
	got := c.CarryCost(200, 100, 36.5)
	assert.InDelta(t, 300*0.05*0.1, got, 1e-12)
	assert.Zero(t, c.CarryCost(200, 100, -5)+c.CarryCost(0, 0, 10))
}

func TestFeeCombination_Valid(t *testing.T) {
	assert.True(t, FeeCombineMin.Valid())
	assert.True(t, FeeCombineMax.Valid())
	assert.False(t, FeeCombination("avg").Valid())
	assert.False(t, FeeCombination("").Valid())
}
