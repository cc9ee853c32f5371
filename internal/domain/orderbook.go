package domain

import (
	"sort"
	"strconv"
)

// OrderBook representa el libro de órdenes de un token del mercado de predicción.
type OrderBook struct {
	AssetID string
	Bids    []BookEntry // ordenados mayor a menor precio
	Asks    []BookEntry // ordenados menor a mayor precio
}

// BookEntry es un nivel de precio en el orderbook.
type BookEntry struct {
	Price float64
	Size  float64
}

// BestBid devuelve el mejor precio de compra (mayor bid).
// Devuelve 0 si el book está vacío.
func (ob OrderBook) BestBid() float64 {
	if len(ob.Bids) == 0 {
		return 0
	}
	return ob.Bids[0].Price
}

// BestAsk devuelve el mejor precio de venta (menor ask).
// Devuelve 0 si el book está vacío.
func (ob OrderBook) BestAsk() float64 {
	if len(ob.Asks) == 0 {
		return 0
	}
	return ob.Asks[0].Price
}

// Midpoint devuelve el punto medio entre best bid y best ask.
func (ob OrderBook) Midpoint() float64 {
	bid := ob.BestBid()
	ask := ob.BestAsk()
	if bid == 0 || ask == 0 {
		return 0
	}
	return (bid + ask) / 2
}

// SlippageResult es el resultado de llenar un notional contra los asks.
type SlippageResult struct {
	AvgPrice     float64 // precio medio ponderado por volumen
	SharesBought float64 // shares adquiridos con el notional
	SlippagePct  float64 // (avg - best) / best × 100
}

// WalkAsks recorre los asks en orden ascendente de precio hasta llenar
// notionalUSD. Determinista sobre un book fijo: llamadas repetidas con el
// mismo (book, notional) devuelven el mismo resultado.
//
// Si el book se agota antes de llenar el notional devuelve
// InsufficientLiquidityError con lo que sí se pudo llenar.
func (ob OrderBook) WalkAsks(notionalUSD float64) (SlippageResult, error) {
	if len(ob.Asks) == 0 || notionalUSD <= 0 {
		return SlippageResult{}, &InsufficientLiquidityError{
			AssetID:     ob.AssetID,
			NotionalUSD: notionalUSD,
		}
	}

	// No asumir que el proveedor ordenó los asks: el walk exige orden
	// ascendente por precio.
	asks := make([]BookEntry, len(ob.Asks))
	copy(asks, ob.Asks)
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })

	totalCost := 0.0
	totalShares := 0.0
	remaining := notionalUSD

	for _, level := range asks {
		levelValue := level.Price * level.Size
		if remaining > levelValue {
			totalCost += levelValue
			totalShares += level.Size
			remaining -= levelValue
			continue
		}
		// Fill parcial del último nivel necesario
		totalShares += remaining / level.Price
		totalCost += remaining
		remaining = 0
		break
	}

	if remaining > 0 || totalShares == 0 {
		return SlippageResult{}, &InsufficientLiquidityError{
			AssetID:     ob.AssetID,
			NotionalUSD: notionalUSD,
			FilledUSD:   totalCost,
		}
	}

	avg := totalCost / totalShares
	best := asks[0].Price
	return SlippageResult{
		AvgPrice:     avg,
		SharesBought: totalShares,
		SlippagePct:  (avg - best) / best * 100,
	}, nil
}

// ParsePrice convierte un string de precio a float64.
// Usado en el mapping de la API.
func ParsePrice(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
