package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/alejandrodnm/evarb/internal/domain"
	"github.com/alejandrodnm/evarb/internal/ports"
)

// Recorder es la costura de salida del evaluador: valida y hace fan-out a
// los sinks de persistencia. Sin lógica de negocio.
type Recorder struct {
	sinks []ports.RecordSink
}

// NewRecorder crea un Recorder sobre los sinks dados.
func NewRecorder(sinks ...ports.RecordSink) *Recorder {
	return &Recorder{sinks: sinks}
}

// Record valida el registro y lo entrega a todos los sinks. Un registro a
// medio construir nunca se persiste; un sink que falla no impide que los
// demás reciban el registro.
func (r *Recorder) Record(ctx context.Context, rec domain.ResultRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("recorder: reject record: %w", err)
	}

	var errs []error
	for _, sink := range r.sinks {
		if err := sink.SaveRecord(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("recorder: sink failed for %s: %w", rec.SignalID, err))
		}
	}
	return errors.Join(errs...)
}
