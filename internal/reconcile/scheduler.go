package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler ejecuta el reconciliador en una cadencia cron propia, sin
// bloquear nunca el tick loop del engine.
type Scheduler struct {
	cron       *cron.Cron
	reconciler *Reconciler
}

// NewScheduler registra el reconciliador bajo la expresión cron dada
// (por ejemplo "@hourly" o "0 */6 * * *").
func NewScheduler(schedule string, reconciler *Reconciler) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := reconciler.Reconcile(context.Background()); err != nil {
			slog.Error("reconciliation failed", "err", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile.NewScheduler: invalid schedule %q: %w", schedule, err)
	}

	slog.Info("reconciler scheduled", "schedule", schedule)
	return &Scheduler{cron: c, reconciler: reconciler}, nil
}

// Start arranca la cadencia en background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop detiene la cadencia y espera a que termine el ciclo en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("reconciler scheduler stopped")
}

// RunNow ejecuta un ciclo inmediatamente, fuera de la cadencia.
func (s *Scheduler) RunNow(ctx context.Context) error {
	_, err := s.reconciler.Reconcile(ctx)
	return err
}
