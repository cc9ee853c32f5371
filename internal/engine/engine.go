package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/evarb/internal/domain"
	"github.com/alejandrodnm/evarb/internal/ports"
)

// Config contiene la configuración del engine.
type Config struct {
	Events        []Event
	Investments   []float64
	CheckInterval time.Duration
	TickTimeout   time.Duration
	Workers       int
	// Once ejecuta exactamente un tick y termina (modo -once / dry run).
	Once bool
}

// Engine es el orquestador del loop de ticks: captura cotizaciones, evalúa
// eventos en paralelo y entrega los registros al recorder y al notifier.
type Engine struct {
	cfg        Config
	options    ports.OptionQuoteProvider
	prediction ports.PredictionQuoteProvider
	normalizer *Normalizer
	evaluator  *Evaluator
	recorder   *Recorder
	notifier   ports.Notifier
}

// New crea un Engine con todas las dependencias inyectadas.
func New(
	cfg Config,
	options ports.OptionQuoteProvider,
	prediction ports.PredictionQuoteProvider,
	normalizer *Normalizer,
	evaluator *Evaluator,
	recorder *Recorder,
	notifier ports.Notifier,
) *Engine {
	return &Engine{
		cfg:        cfg,
		options:    options,
		prediction: prediction,
		normalizer: normalizer,
		evaluator:  evaluator,
		recorder:   recorder,
		notifier:   notifier,
	}
}

// Run ejecuta el loop de ticks hasta que el contexto se cancele.
// Si cfg.Once está activo, ejecuta exactamente un tick.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting",
		"events", len(e.cfg.Events),
		"interval", e.cfg.CheckInterval,
		"once", e.cfg.Once,
	)

	if err := e.runTick(ctx); err != nil {
		slog.Error("tick failed", "err", err)
		if e.cfg.Once {
			return err
		}
	}

	if e.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(e.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("engine stopped")
			return nil
		case <-ticker.C:
			if err := e.runTick(ctx); err != nil {
				slog.Error("tick failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un tick y devuelve el report.
func (e *Engine) RunOnce(ctx context.Context) (*TickReport, error) {
	return e.tick(ctx)
}

// runTick ejecuta un tick completo y entrega los resultados.
func (e *Engine) runTick(ctx context.Context) error {
	report, err := e.tick(ctx)
	if err != nil {
		return err
	}

	for _, rec := range report.Records {
		if err := e.recorder.Record(ctx, rec); err != nil {
			slog.Warn("record error", "signal_id", rec.SignalID, "err", err)
		}
	}

	if err := e.notifier.Notify(ctx, report.Records); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	for _, f := range report.Failures {
		slog.Warn("event skipped", "event", f.Event, "err", f.Err)
	}

	slog.Info("tick complete",
		"events", report.EventsTotal,
		"records", len(report.Records),
		"actionable", report.Actionable(),
		"failures", len(report.Failures),
		"duration", report.Duration.Round(time.Millisecond),
	)
	return nil
}

// tick captura y evalúa todos los eventos bajo el deadline del tick.
func (e *Engine) tick(ctx context.Context) (*TickReport, error) {
	start := time.Now()

	tctx := ctx
	if e.cfg.TickTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, e.cfg.TickTimeout)
		defer cancel()
	}

	// start es el tiempo lógico del tick: todas las cotizaciones del batch
	// se congelan con el mismo CapturedAt.
	report := e.evaluateEventsConcurrent(tctx, start)
	report.StartedAt = start
	report.Duration = time.Since(start)
	return report, nil
}

// evaluateEvent ejecuta el pipeline de un evento: fetch → normalize →
// evaluate por cada tamaño de inversión. Todas las evaluaciones del evento
// usan cotizaciones congeladas con el mismo CapturedAt.
func (e *Engine) evaluateEvent(ctx context.Context, ev Event, capturedAt time.Time) ([]domain.ResultRecord, error) {
	snap, err := e.options.FetchOptionSnapshot(ctx, ev.Asset, ev.K1Strike, ev.Expiration)
	if err != nil {
		return nil, fmt.Errorf("engine.evaluateEvent: fetch option snapshot: %w", err)
	}

	// Algunos tickers llegan sin underlying: el índice spot es el fallback.
	if snap.UnderlyingPrice <= 0 {
		idx, err := e.options.FetchIndexPrice(ctx, ev.Asset)
		if err != nil {
			return nil, fmt.Errorf("engine.evaluateEvent: fetch index price: %w", err)
		}
		snap.UnderlyingPrice = idx
	}

	book, err := e.prediction.FetchOrderBook(ctx, ev.PmAssetID)
	if err != nil {
		return nil, fmt.Errorf("engine.evaluateEvent: fetch order book: %w", err)
	}

	quotes, err := e.normalizer.Normalize(ev, snap, book, capturedAt)
	if err != nil {
		return nil, err
	}

	records := make([]domain.ResultRecord, 0, len(e.cfg.Investments))
	var lastErr error
	for _, investment := range e.cfg.Investments {
		rec, err := e.evaluator.Evaluate(quotes, book, investment)
		if err != nil {
			slog.Debug("evaluation failed",
				"event", ev.Name,
				"investment", investment,
				"err", err,
			)
			lastErr = err
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return records, nil
}
