package domain

import "fmt"

// DataUnavailableError indica una cotización ausente o incompleta para un
// evento. El evento se salta en el tick actual y el batch continúa.
type DataUnavailableError struct {
	Event string
	Field string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable for event %q: missing %s", e.Event, e.Field)
}

// DegenerateMarginError indica margen cero en el cálculo del ratio EV/IM.
// El ratio sería indefinido: se señala explícitamente en lugar de producir
// inf/NaN silenciosos.
type DegenerateMarginError struct {
	Event    string
	Strategy StrategyID
}

func (e *DegenerateMarginError) Error() string {
	return fmt.Sprintf("degenerate margin for event %q: strategy %s has IM == 0", e.Event, e.Strategy)
}

// InsufficientLiquidityError indica que el walk de slippage agotó el book
// antes de llenar el notional objetivo. Es reportable, nunca un crash.
type InsufficientLiquidityError struct {
	AssetID     string
	NotionalUSD float64
	FilledUSD   float64
}

func (e *InsufficientLiquidityError) Error() string {
	return fmt.Sprintf("insufficient liquidity for %s: filled $%.2f of $%.2f",
		e.AssetID, e.FilledUSD, e.NotionalUSD)
}
