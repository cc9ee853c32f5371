package ports

import (
	"context"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// Notifier recibe los registros de un tick para presentarlos al usuario.
type Notifier interface {
	Notify(ctx context.Context, records []domain.ResultRecord) error

	// NotifySnapshot presenta un snapshot de PnL del reconciliador.
	NotifySnapshot(ctx context.Context, snapshot domain.PnlSnapshot) error
}
