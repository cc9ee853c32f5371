package domain

import "time"

// PositionStatus es el ciclo de vida de una exposición.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "OPEN"
	PositionClosed PositionStatus = "CLOSED"
)

// Position es una exposición abierta o cerrada. La muta exclusivamente la
// capa de ejecución externa; el engine solo la lee y deriva PnL.
type Position struct {
	MarketID   string
	Side       string // "YES" | "NO"
	Strategy   StrategyID
	Size       float64 // shares
	EntryPrice float64
	Status     PositionStatus
	OpenedAt   time.Time
	ClosedAt   *time.Time
	ExitPrice  float64 // solo con Status == CLOSED
}

// CostBasis devuelve el capital invertido al abrir la posición.
func (p Position) CostBasis() float64 {
	return p.Size * p.EntryPrice
}

// UnrealizedPnl devuelve el PnL no realizado a un precio mid actual.
// Para posiciones cerradas devuelve el PnL realizado contra el exit price.
func (p Position) UnrealizedPnl(midPrice float64) float64 {
	mark := midPrice
	if p.Status == PositionClosed {
		mark = p.ExitPrice
	}
	pnl := p.Size * (mark - p.EntryPrice)
	if p.Side == "NO" {
		pnl = -pnl
	}
	return pnl
}

// PnlSnapshot es el rollup periódico del reconciliador: inmutable una vez
// escrito, forma una serie temporal append-only. Una corrección exige un
// snapshot nuevo con timestamp posterior, nunca una revisión retroactiva.
//
// Invariante: DiffUSD = RealPnlUSD − ShadowPnlUSD.
type PnlSnapshot struct {
	Timestamp             time.Time
	TotalPositions        int
	TotalCostBasisUSD     float64
	TotalUnrealizedPnlUSD float64
	ShadowPnlUSD          float64
	RealPnlUSD            float64
	DiffUSD               float64
	OpenPositions         int
	ClosedPositions       int
}
