package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// RecordSink persiste ResultRecords en un log append-only.
// El recorder valida antes de llamar: el sink nunca recibe registros
// a medio construir.
type RecordSink interface {
	SaveRecord(ctx context.Context, record domain.ResultRecord) error
}

// SnapshotSink persiste PnlSnapshots como serie temporal append-only.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, snapshot domain.PnlSnapshot) error
}

// HistoryReader consulta el histórico persistido para reporting.
type HistoryReader interface {
	GetRecords(ctx context.Context, from, to time.Time) ([]domain.ResultRecord, error)
	GetSnapshots(ctx context.Context, from, to time.Time) ([]domain.PnlSnapshot, error)
}
