package storage

// sqlite.go — persistencia durable del decision log y la serie de PnL.
//
// Tablas:
//   - `records`: un ResultRecord por fila, append-only. Nunca se actualiza:
//     una corrección es un registro nuevo con otro signal_id.
//   - `pnl_snapshots`: serie temporal append-only del reconciliador.
//   - `positions`: ledger de posiciones escrito por la capa de ejecución
//     externa; este proceso solo lo lee (vistas real y shadow).

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/evarb/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
    signal_id        TEXT PRIMARY KEY,
    market_title     TEXT     NOT NULL,
    created_at       DATETIME NOT NULL,
    investment       REAL     NOT NULL DEFAULT 0,
    spot             REAL     NOT NULL DEFAULT 0,
    poly_yes_price   REAL     NOT NULL DEFAULT 0,
    deribit_prob     REAL     NOT NULL DEFAULT 0,
    expected_pnl_yes REAL     NOT NULL DEFAULT 0,
    total_costs      REAL     NOT NULL DEFAULT 0,
    ev               REAL     NOT NULL DEFAULT 0,
    im               REAL     NOT NULL DEFAULT 0,
    ev_im_ratio      REAL     NOT NULL DEFAULT 0,
    ev_yes           REAL     NOT NULL DEFAULT 0,
    ev_no            REAL     NOT NULL DEFAULT 0,
    suggest1         TEXT     NOT NULL,
    suggest2         TEXT     NOT NULL
);

CREATE TABLE IF NOT EXISTS pnl_snapshots (
    id                       INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at               DATETIME NOT NULL,
    total_positions          INTEGER  NOT NULL DEFAULT 0,
    total_cost_basis_usd     REAL     NOT NULL DEFAULT 0,
    total_unrealized_pnl_usd REAL     NOT NULL DEFAULT 0,
    shadow_pnl_usd           REAL     NOT NULL DEFAULT 0,
    real_pnl_usd             REAL     NOT NULL DEFAULT 0,
    diff_usd                 REAL     NOT NULL DEFAULT 0,
    open_positions           INTEGER  NOT NULL DEFAULT 0,
    closed_positions         INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS positions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    source      TEXT     NOT NULL CHECK (source IN ('real', 'shadow')),
    market_id   TEXT     NOT NULL,
    side        TEXT     NOT NULL,
    strategy    TEXT     NOT NULL,
    size        REAL     NOT NULL,
    entry_price REAL     NOT NULL,
    status      TEXT     NOT NULL,
    opened_at   DATETIME NOT NULL,
    closed_at   DATETIME,
    exit_price  REAL     NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_records_at   ON records(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_snapshots_at ON pnl_snapshots(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_pos_source   ON positions(source, status);
`

// SQLiteStorage implementa los ports RecordSink, SnapshotSink,
// HistoryReader y PositionLedger usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// SaveRecord inserta un ResultRecord. Append-only: un signal_id duplicado
// es un error, nunca un update.
func (s *SQLiteStorage) SaveRecord(ctx context.Context, rec domain.ResultRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records
			(signal_id, market_title, created_at, investment, spot,
			 poly_yes_price, deribit_prob, expected_pnl_yes, total_costs,
			 ev, im, ev_im_ratio, ev_yes, ev_no, suggest1, suggest2)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SignalID, rec.MarketTitle, rec.Timestamp.UTC(), rec.Investment, rec.Spot,
		rec.PolyYesPrice, rec.DeribitProb, rec.ExpectedPnlYes, rec.TotalCosts,
		rec.EV, rec.IM, rec.EVIMRatio, rec.EvYes, rec.EvNo, rec.Suggest1, rec.Suggest2,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveRecord: insert %s: %w", rec.SignalID, err)
	}
	return nil
}

// SaveSnapshot inserta un PnlSnapshot en la serie temporal.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snap domain.PnlSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pnl_snapshots
			(created_at, total_positions, total_cost_basis_usd,
			 total_unrealized_pnl_usd, shadow_pnl_usd, real_pnl_usd, diff_usd,
			 open_positions, closed_positions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.Timestamp.UTC(), snap.TotalPositions, snap.TotalCostBasisUSD,
		snap.TotalUnrealizedPnlUSD, snap.ShadowPnlUSD, snap.RealPnlUSD, snap.DiffUSD,
		snap.OpenPositions, snap.ClosedPositions,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: insert: %w", err)
	}
	return nil
}

// GetRecords devuelve los registros cuyo timestamp está en el rango dado,
// los más recientes primero.
func (s *SQLiteStorage) GetRecords(ctx context.Context, from, to time.Time) ([]domain.ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT signal_id, market_title, created_at, investment, spot,
		       poly_yes_price, deribit_prob, expected_pnl_yes, total_costs,
		       ev, im, ev_im_ratio, ev_yes, ev_no, suggest1, suggest2
		FROM records
		WHERE created_at BETWEEN ? AND ?
		ORDER BY created_at DESC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.GetRecords: query: %w", err)
	}
	defer rows.Close()

	var records []domain.ResultRecord
	for rows.Next() {
		var rec domain.ResultRecord
		if err := rows.Scan(
			&rec.SignalID, &rec.MarketTitle, &rec.Timestamp, &rec.Investment, &rec.Spot,
			&rec.PolyYesPrice, &rec.DeribitProb, &rec.ExpectedPnlYes, &rec.TotalCosts,
			&rec.EV, &rec.IM, &rec.EVIMRatio, &rec.EvYes, &rec.EvNo,
			&rec.Suggest1, &rec.Suggest2,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRecords: scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetSnapshots devuelve los snapshots del rango dado en orden cronológico,
// para rollups diarios y reporting.
func (s *SQLiteStorage) GetSnapshots(ctx context.Context, from, to time.Time) ([]domain.PnlSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT created_at, total_positions, total_cost_basis_usd,
		       total_unrealized_pnl_usd, shadow_pnl_usd, real_pnl_usd, diff_usd,
		       open_positions, closed_positions
		FROM pnl_snapshots
		WHERE created_at BETWEEN ? AND ?
		ORDER BY created_at ASC
	`, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("storage.GetSnapshots: query: %w", err)
	}
	defer rows.Close()

	var snaps []domain.PnlSnapshot
	for rows.Next() {
		var snap domain.PnlSnapshot
		if err := rows.Scan(
			&snap.Timestamp, &snap.TotalPositions, &snap.TotalCostBasisUSD,
			&snap.TotalUnrealizedPnlUSD, &snap.ShadowPnlUSD, &snap.RealPnlUSD, &snap.DiffUSD,
			&snap.OpenPositions, &snap.ClosedPositions,
		); err != nil {
			return nil, fmt.Errorf("storage.GetSnapshots: scan row: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// RealPositions devuelve las posiciones ejecutadas del ledger.
func (s *SQLiteStorage) RealPositions(ctx context.Context) ([]domain.Position, error) {
	return s.positions(ctx, "real")
}

// ShadowPositions devuelve las posiciones teóricas derivadas de las
// recomendaciones.
func (s *SQLiteStorage) ShadowPositions(ctx context.Context) ([]domain.Position, error) {
	return s.positions(ctx, "shadow")
}

func (s *SQLiteStorage) positions(ctx context.Context, source string) ([]domain.Position, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT market_id, side, strategy, size, entry_price, status,
		       opened_at, closed_at, exit_price
		FROM positions
		WHERE source = ?
		ORDER BY opened_at ASC
	`, source)
	if err != nil {
		return nil, fmt.Errorf("storage.positions: query %s: %w", source, err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var pos domain.Position
		var strategy string
		var closedAt sql.NullTime
		if err := rows.Scan(
			&pos.MarketID, &pos.Side, &strategy, &pos.Size, &pos.EntryPrice,
			&pos.Status, &pos.OpenedAt, &closedAt, &pos.ExitPrice,
		); err != nil {
			return nil, fmt.Errorf("storage.positions: scan row: %w", err)
		}
		if strategy == domain.StrategyShortYes.String() {
			pos.Strategy = domain.StrategyShortYes
		}
		if closedAt.Valid {
			t := closedAt.Time
			pos.ClosedAt = &t
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

// InsertPosition inserta una posición en el ledger. En producción escribe
// la capa de ejecución externa; aquí existe para seeds y tests.
func (s *SQLiteStorage) InsertPosition(ctx context.Context, source string, pos domain.Position) error {
	var closedAt *time.Time
	if pos.ClosedAt != nil {
		t := pos.ClosedAt.UTC()
		closedAt = &t
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions
			(source, market_id, side, strategy, size, entry_price, status,
			 opened_at, closed_at, exit_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		source, pos.MarketID, pos.Side, pos.Strategy.String(), pos.Size,
		pos.EntryPrice, string(pos.Status), pos.OpenedAt.UTC(), closedAt, pos.ExitPrice,
	)
	if err != nil {
		return fmt.Errorf("storage.InsertPosition: insert: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
