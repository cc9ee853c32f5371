package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/evarb/internal/ports"
)

// reportWindow es la ventana del rollup diario.
const reportWindow = 24 * time.Hour

// DailyReport consulta el histórico de las últimas 24 horas (decision log y
// serie de PnL) y lo entrega al notifier. Solo lee: el rollup nunca muta el
// histórico.
func DailyReport(ctx context.Context, history ports.HistoryReader, notifier ports.Notifier, now time.Time) error {
	from := now.Add(-reportWindow)

	records, err := history.GetRecords(ctx, from, now)
	if err != nil {
		return fmt.Errorf("reconcile.DailyReport: fetch records: %w", err)
	}
	snapshots, err := history.GetSnapshots(ctx, from, now)
	if err != nil {
		return fmt.Errorf("reconcile.DailyReport: fetch snapshots: %w", err)
	}

	if err := notifier.Notify(ctx, records); err != nil {
		return fmt.Errorf("reconcile.DailyReport: notify records: %w", err)
	}
	for _, snap := range snapshots {
		if err := notifier.NotifySnapshot(ctx, snap); err != nil {
			return fmt.Errorf("reconcile.DailyReport: notify snapshot: %w", err)
		}
	}

	slog.Info("daily report",
		"from", from.Format(time.RFC3339),
		"to", now.Format(time.RFC3339),
		"records", len(records),
		"snapshots", len(snapshots),
	)
	return nil
}
