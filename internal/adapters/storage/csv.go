package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// csvHeader es el header fijo del decision log. El orden de las columnas
// es parte del contrato del archivo: los consumidores lo parsean por
// posición, no por nombre.
var csvHeader = []string{
	"signal_id", "market_title", "timestamp", "investment", "spot",
	"poly_yes_price", "deribit_prob", "expected_pnl_yes", "total_costs",
	"ev", "im", "ev_im_ratio", "ev_yes", "ev_no", "suggest1", "suggest2",
}

// CSVLog es el decision log en CSV, append-only. Implementa
// ports.RecordSink como sink secundario junto a SQLite: el CSV es el
// formato que consumen los notebooks de análisis.
type CSVLog struct {
	path string
	mu   sync.Mutex
}

// NewCSVLog crea (o reabre) el log en la ruta dada. Si el archivo no
// existe escribe el header.
func NewCSVLog(path string) (*CSVLog, error) {
	l := &CSVLog{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := l.writeHeader(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// SaveRecord añade una fila al final del log.
func (l *CSVLog) SaveRecord(_ context.Context, rec domain.ResultRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("storage.CSVLog: open %q: %w", l.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(recordRow(rec)); err != nil {
		return fmt.Errorf("storage.CSVLog: write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("storage.CSVLog: flush: %w", err)
	}
	return nil
}

func (l *CSVLog) writeHeader() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("storage.CSVLog: create %q: %w", l.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("storage.CSVLog: write header: %w", err)
	}
	w.Flush()
	return w.Error()
}

func recordRow(rec domain.ResultRecord) []string {
	return []string{
		rec.SignalID,
		rec.MarketTitle,
		rec.Timestamp.UTC().Format(time.RFC3339),
		ftoa(rec.Investment),
		ftoa(rec.Spot),
		ftoa(rec.PolyYesPrice),
		ftoa(rec.DeribitProb),
		ftoa(rec.ExpectedPnlYes),
		ftoa(rec.TotalCosts),
		ftoa(rec.EV),
		ftoa(rec.IM),
		ftoa(rec.EVIMRatio),
		ftoa(rec.EvYes),
		ftoa(rec.EvNo),
		rec.Suggest1,
		rec.Suggest2,
	}
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
