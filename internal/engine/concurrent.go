package engine

// concurrent.go — worker pool para la evaluación paralela de eventos.
//
// Cada evento es independiente: su evaluación es pura y solo comparte
// CostParameters de solo lectura, así que el pool no necesita más
// sincronización que los channels.

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// outcome es el resultado de un evento en un tick: registros o un fallo
// etiquetado, nunca ambos.
type outcome struct {
	event   string
	records []domain.ResultRecord
	err     error
}

// evaluateEventsConcurrent evalúa todos los eventos en paralelo usando un
// worker pool. Si workers <= 0 usa runtime.NumCPU() × 2. capturedAt es el
// tiempo lógico compartido por todas las cotizaciones del tick.
func (e *Engine) evaluateEventsConcurrent(ctx context.Context, capturedAt time.Time) *TickReport {
	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	workCh := make(chan Event, len(e.cfg.Events))
	resultCh := make(chan outcome, len(e.cfg.Events))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range workCh {
				select {
				case <-ctx.Done():
					// Tick abandonado: los eventos no procesados se saltan,
					// los ya registrados siguen siendo válidos.
					resultCh <- outcome{event: ev.Name, err: ctx.Err()}
					continue
				default:
				}
				records, err := e.evaluateEvent(ctx, ev, capturedAt)
				resultCh <- outcome{event: ev.Name, records: records, err: err}
			}
		}()
	}

	for _, ev := range e.cfg.Events {
		workCh <- ev
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	report := &TickReport{EventsTotal: len(e.cfg.Events)}
	for out := range resultCh {
		if out.err != nil {
			report.Failures = append(report.Failures, EventFailure{Event: out.event, Err: out.err})
			continue
		}
		report.Records = append(report.Records, out.records...)
	}
	return report
}
