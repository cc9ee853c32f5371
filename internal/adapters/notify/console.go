package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// Console implementa ports.Notifier escribiendo a stdout.
type Console struct {
	out   io.Writer
	table bool
	// minEv es el EV neto mínimo (USD) para destacar un registro en el modo
	// compacto (notify_net_ev_min). No afecta a la tabla completa.
	minEv float64
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool, minEv float64) *Console {
	return &Console{out: os.Stdout, table: table, minEv: minEv}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool, minEv float64) *Console {
	return &Console{out: w, table: table, minEv: minEv}
}

// Notify imprime los registros del tick en el modo configurado.
func (c *Console) Notify(_ context.Context, records []domain.ResultRecord) error {
	if len(records) == 0 {
		fmt.Fprintf(c.out, "[%s] no records this tick\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printTable(records)
	} else {
		c.printCompact(records)
	}
	return nil
}

// NotifySnapshot imprime el resumen de un snapshot de PnL.
func (c *Console) NotifySnapshot(_ context.Context, snap domain.PnlSnapshot) error {
	fmt.Fprintf(c.out,
		"[%s][PNL] pos:%d (open:%d closed:%d) | basis $%.2f | real $%.2f | shadow $%.2f | diff $%.2f\n",
		snap.Timestamp.Format("15:04:05"),
		snap.TotalPositions, snap.OpenPositions, snap.ClosedPositions,
		snap.TotalCostBasisUSD, snap.RealPnlUSD, snap.ShadowPnlUSD, snap.DiffUSD,
	)
	return nil
}

// printCompact imprime lo esencial en una línea por tick.
func (c *Console) printCompact(records []domain.ResultRecord) {
	now := time.Now().Format("15:04:05")
	actionable := 0
	for _, rec := range records {
		if rec.IsActionable() {
			actionable++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d records → actionable:%d", now, len(records), actionable)

	shown := 0
	for _, rec := range records {
		if !rec.IsActionable() || rec.EV < c.minEv || shown >= 3 {
			continue
		}
		fmt.Fprintf(&sb, " | %s inv$%.0f ev$%.2f ratio%.3f",
			truncate(rec.MarketTitle, 25), rec.Investment, rec.EV, rec.EVIMRatio)
		shown++
	}

	fmt.Fprintln(c.out, sb.String())
}

// printTable imprime la tabla completa del tick.
func (c *Console) printTable(records []domain.ResultRecord) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %d records\n", now, len(records))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Market", "Inv$", "Poly YES", "Prob", "Costs$", "EV$", "IM$", "EV/IM", "Suggest")

	for i, rec := range records {
		table.Append(
			fmt.Sprintf("%d", i+1),
			truncate(rec.MarketTitle, 30),
			fmt.Sprintf("%.0f", rec.Investment),
			fmt.Sprintf("%.3f", rec.PolyYesPrice),
			fmt.Sprintf("%.3f", rec.DeribitProb),
			fmt.Sprintf("%.2f", rec.TotalCosts),
			fmt.Sprintf("%.2f", rec.EV),
			fmt.Sprintf("%.2f", rec.IM),
			fmt.Sprintf("%.3f", rec.EVIMRatio),
			truncate(rec.Suggest1, 40),
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  EV = max(ev_yes, ev_no) | EV/IM = ratio sobre el margen de la estrategia ganadora")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
