package transaction

import (
	"context"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repositorios de venta, stock, libro, reservas y consecutivos. La venta, sus
// líneas y sus reservas se confirman o revierten como una sola unidad.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		batchRepo repository.StockBatchRepository,
		ledgerRepo repository.LedgerRepository,
		resRepo repository.ReservationRepository,
		txRepo repository.TransactionRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}
