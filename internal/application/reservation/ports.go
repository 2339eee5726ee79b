package reservation

import (
	"time"

	appinventory "github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// LedgerService interfaz para integrar el gestor de reservas con el libro de
// inventario. ApplyMovementInTx aplica el movimiento usando los repositorios
// del caller (misma transacción); si retorna error el caller hace rollback.
type LedgerService interface {
	ApplyMovementInTx(
		batchRepo repository.StockBatchRepository,
		ledgerRepo repository.LedgerRepository,
		input appinventory.MovementInput,
		now time.Time,
	) (*appinventory.MovementResult, error)
}
