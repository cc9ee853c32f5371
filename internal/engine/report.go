package engine

import (
	"time"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// EventFailure etiqueta un evento que no produjo registros en un tick y
// la causa tipada (DataUnavailableError, DegenerateMarginError, ...).
type EventFailure struct {
	Event string
	Err   error
}

// TickReport es el resultado agregado de un tick: cada evento termina como
// registros o como fallo etiquetado, nunca desaparece en silencio.
type TickReport struct {
	StartedAt   time.Time
	Duration    time.Duration
	EventsTotal int
	Records     []domain.ResultRecord
	Failures    []EventFailure
}

// Actionable devuelve cuántos registros del tick recomiendan operar.
func (r TickReport) Actionable() int {
	n := 0
	for _, rec := range r.Records {
		if rec.IsActionable() {
			n++
		}
	}
	return n
}
