package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/alejandrodnm/evarb/internal/domain"
	"github.com/alejandrodnm/evarb/internal/ports"
)

// Config contiene la configuración del reconciliador.
type Config struct {
	// DiffToleranceUSD es el drift shadow-vs-real a partir del cual la
	// divergencia es reportable. Nunca es fatal.
	DiffToleranceUSD float64
}

// Reconciler deriva snapshots de PnL del ledger de posiciones. Lee el
// ledger y los mids actuales; nunca muta estado de posiciones. Corre en su
// propia cadencia, independiente del tick loop del engine.
type Reconciler struct {
	cfg      Config
	ledger   ports.PositionLedger
	marks    ports.MarkPriceSource
	sink     ports.SnapshotSink
	notifier ports.Notifier
}

// New crea un Reconciler con todas las dependencias inyectadas.
func New(
	cfg Config,
	ledger ports.PositionLedger,
	marks ports.MarkPriceSource,
	sink ports.SnapshotSink,
	notifier ports.Notifier,
) *Reconciler {
	return &Reconciler{
		cfg:      cfg,
		ledger:   ledger,
		marks:    marks,
		sink:     sink,
		notifier: notifier,
	}
}

// Reconcile ejecuta un ciclo de reconciliación: valora las vistas real y
// shadow de forma independiente y emite un PnlSnapshot inmutable.
//
// Invariante del snapshot: DiffUSD = RealPnlUSD − ShadowPnlUSD. Un drift
// por encima de la tolerancia se reporta, no aborta.
func (r *Reconciler) Reconcile(ctx context.Context) (domain.PnlSnapshot, error) {
	real, err := r.ledger.RealPositions(ctx)
	if err != nil {
		return domain.PnlSnapshot{}, fmt.Errorf("reconcile: fetch real positions: %w", err)
	}
	shadow, err := r.ledger.ShadowPositions(ctx)
	if err != nil {
		return domain.PnlSnapshot{}, fmt.Errorf("reconcile: fetch shadow positions: %w", err)
	}

	realView, err := r.valuate(ctx, real)
	if err != nil {
		return domain.PnlSnapshot{}, err
	}
	shadowView, err := r.valuate(ctx, shadow)
	if err != nil {
		return domain.PnlSnapshot{}, err
	}

	snapshot := domain.PnlSnapshot{
		Timestamp:             time.Now(),
		TotalPositions:        len(real),
		TotalCostBasisUSD:     realView.costBasis,
		TotalUnrealizedPnlUSD: realView.openPnl,
		ShadowPnlUSD:          shadowView.totalPnl,
		RealPnlUSD:            realView.totalPnl,
		DiffUSD:               realView.totalPnl - shadowView.totalPnl,
		OpenPositions:         realView.open,
		ClosedPositions:       realView.closed,
	}

	if r.cfg.DiffToleranceUSD > 0 && math.Abs(snapshot.DiffUSD) > r.cfg.DiffToleranceUSD {
		slog.Warn("shadow/real pnl drift beyond tolerance",
			"diff_usd", snapshot.DiffUSD,
			"tolerance_usd", r.cfg.DiffToleranceUSD,
			"real_pnl_usd", snapshot.RealPnlUSD,
			"shadow_pnl_usd", snapshot.ShadowPnlUSD,
		)
	}

	if err := r.sink.SaveSnapshot(ctx, snapshot); err != nil {
		return domain.PnlSnapshot{}, fmt.Errorf("reconcile: save snapshot: %w", err)
	}

	if r.notifier != nil {
		if err := r.notifier.NotifySnapshot(ctx, snapshot); err != nil {
			slog.Warn("snapshot notifier error", "err", err)
		}
	}

	slog.Info("reconciliation complete",
		"positions", snapshot.TotalPositions,
		"open", snapshot.OpenPositions,
		"closed", snapshot.ClosedPositions,
		"real_pnl_usd", snapshot.RealPnlUSD,
		"shadow_pnl_usd", snapshot.ShadowPnlUSD,
		"diff_usd", snapshot.DiffUSD,
	)
	return snapshot, nil
}

// view es la valoración agregada de una lista de posiciones.
type view struct {
	costBasis float64
	openPnl   float64 // PnL no realizado de posiciones abiertas
	totalPnl  float64 // abiertas a mid + cerradas a exit price
	open      int
	closed    int
}

// valuate suma el PnL de cada posición: las abiertas al mid actual del
// mercado, las cerradas a su precio de salida.
func (r *Reconciler) valuate(ctx context.Context, positions []domain.Position) (view, error) {
	var v view
	for _, pos := range positions {
		mid := 0.0
		if pos.Status == domain.PositionOpen {
			m, err := r.marks.MidPrice(ctx, pos.MarketID)
			if err != nil {
				return view{}, fmt.Errorf("reconcile: mid price for %s: %w", pos.MarketID, err)
			}
			mid = m
		}

		pnl := pos.UnrealizedPnl(mid)
		v.totalPnl += pnl
		v.costBasis += pos.CostBasis()

		switch pos.Status {
		case domain.PositionOpen:
			v.open++
			v.openPnl += pnl
		case domain.PositionClosed:
			v.closed++
		}
	}
	return v, nil
}
