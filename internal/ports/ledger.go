package ports

import (
	"context"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// PositionLedger expone el estado de posiciones que mantiene la capa de
// ejecución externa. El reconciliador lo lee; nunca lo muta.
type PositionLedger interface {
	// RealPositions devuelve las posiciones realmente ejecutadas.
	RealPositions(ctx context.Context) ([]domain.Position, error)

	// ShadowPositions devuelve las posiciones teóricas derivadas de las
	// recomendaciones, ignorando fills reales.
	ShadowPositions(ctx context.Context) ([]domain.Position, error)
}

// MarkPriceSource devuelve el precio mid actual de un mercado, usado por
// el reconciliador para valorar posiciones abiertas.
type MarkPriceSource interface {
	MidPrice(ctx context.Context, marketID string) (float64, error)
}
