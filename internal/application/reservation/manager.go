package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	dominventory "github.com/jhoicas/PuntoVenta-api/internal/domain/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// Manager gestiona el ciclo de vida de las reservas de stock: calcula el
// disponible real (cantidad - reservas activas), asigna cantidades entre
// lotes con política FIFO-por-vencimiento y confirma o libera las retenciones.
// Invariante que protege: la suma de reservas ACTIVE sobre un lote nunca
// supera la cantidad del lote.
type Manager struct {
	resRepo   repository.ReservationRepository // lecturas fuera de transacción
	batchRepo repository.StockBatchRepository  // lecturas fuera de transacción
	ledger    LedgerService
}

// NewManager construye el gestor de reservas.
func NewManager(
	resRepo repository.ReservationRepository,
	batchRepo repository.StockBatchRepository,
	ledger LedgerService,
) *Manager {
	return &Manager{resRepo: resRepo, batchRepo: batchRepo, ledger: ledger}
}

// Allocation par (producto, lote, cantidad) elegido para una línea de venta.
type Allocation struct {
	ProductID string
	BatchID   string
	Quantity  int64
}

// BatchAvailability disponible real de un lote.
type BatchAvailability struct {
	Batch     *entity.StockBatch
	Reserved  int64
	Available int64
}

// Availability resumen de disponibilidad de un producto.
type Availability struct {
	ProductID     string
	TotalStock    int64
	TotalReserved int64
	PerBatch      []BatchAvailability
}

// GetAvailability calcula la disponibilidad del producto contando reservas
// activas. Lectura informativa: la verificación autoritativa ocurre dentro de
// la transacción de asignación, con las filas de lote bloqueadas.
func (m *Manager) GetAvailability(ctx context.Context, productID string) (*Availability, error) {
	batches, err := m.batchRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(batches))
	for _, b := range batches {
		ids = append(ids, b.ID)
	}
	reserved, err := m.resRepo.SumActiveByBatch(ids)
	if err != nil {
		return nil, err
	}

	out := &Availability{ProductID: productID}
	for _, b := range batches {
		r := reserved[b.ID]
		out.TotalStock += b.Quantity
		out.TotalReserved += r
		out.PerBatch = append(out.PerBatch, BatchAvailability{
			Batch:     b,
			Reserved:  r,
			Available: b.Quantity - r,
		})
	}
	return out, nil
}

// AllocateInTx asigna la cantidad solicitada entre los lotes del producto
// usando los repositorios del caller (misma transacción). Bloquea todos los
// lotes candidatos (SELECT FOR UPDATE) antes de leer las reservas activas,
// así dos ventas concurrentes sobre el mismo producto se serializan y no
// pueden sobre-reservar. batchID no vacío restringe a ese único lote.
// pending descuenta por lote las asignaciones de la misma venta que todavía
// no se persistieron como reservas (se insertan después de la cabecera).
// Retorna las asignaciones y los lotes involucrados (para tomar precios).
func (m *Manager) AllocateInTx(
	batchRepo repository.StockBatchRepository,
	resRepo repository.ReservationRepository,
	productID string,
	requested int64,
	batchID string,
	pending map[string]int64,
) ([]Allocation, map[string]*entity.StockBatch, error) {
	locked, err := batchRepo.ListByProductForUpdate(productID)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]*entity.StockBatch, len(locked))
	ids := make([]string, 0, len(locked))
	for _, b := range locked {
		if batchID != "" && b.ID != batchID {
			continue
		}
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}
	if len(ids) == 0 {
		return nil, nil, domain.ErrOutOfStock
	}

	reserved, err := resRepo.SumActiveByBatch(ids)
	if err != nil {
		return nil, nil, err
	}

	candidates := make([]dominventory.BatchAvailability, 0, len(ids))
	for _, id := range ids {
		b := byID[id]
		candidates = append(candidates, dominventory.BatchAvailability{
			BatchID:   b.ID,
			Available: b.Quantity - reserved[b.ID] - pending[b.ID],
			ExpiresAt: b.ExpiresAt,
			CreatedAt: b.CreatedAt,
		})
	}

	allocs, err := dominventory.Allocate(productID, candidates, requested)
	if err != nil {
		return nil, nil, err
	}

	out := make([]Allocation, 0, len(allocs))
	for _, a := range allocs {
		out = append(out, Allocation{ProductID: productID, BatchID: a.BatchID, Quantity: a.Quantity})
	}
	return out, byID, nil
}

// HoldInTx crea una reserva ACTIVE por asignación, con vencimiento en
// expiresAt. Solo inserta: no toca el stock (la retención es contable).
func (m *Manager) HoldInTx(
	resRepo repository.ReservationRepository,
	transactionID string,
	allocations []Allocation,
	expiresAt time.Time,
	now time.Time,
) ([]*entity.Reservation, error) {
	if len(allocations) == 0 {
		return nil, domain.ErrInvalidInput
	}
	reservations := make([]*entity.Reservation, 0, len(allocations))
	for _, a := range allocations {
		reservations = append(reservations, &entity.Reservation{
			ID:            uuid.New().String(),
			TransactionID: transactionID,
			ProductID:     a.ProductID,
			BatchID:       a.BatchID,
			Quantity:      a.Quantity,
			Status:        entity.ReservationActive,
			ExpiresAt:     expiresAt,
			CreatedAt:     now,
		})
	}
	if err := resRepo.CreateBatch(reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// ConfirmInTx convierte las reservas ACTIVE de la venta en descuentos
// definitivos de stock: por cada una escribe un movimiento OUT con la venta
// como referencia y pasa la reserva a CONFIRMED. Todo-o-nada: cualquier error
// revierte la transacción completa del caller.
func (m *Manager) ConfirmInTx(
	batchRepo repository.StockBatchRepository,
	ledgerRepo repository.LedgerRepository,
	resRepo repository.ReservationRepository,
	transactionID string,
	actorID string,
	now time.Time,
) ([]*entity.LedgerEntry, error) {
	active, err := resRepo.ListActiveByTransaction(transactionID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, domain.ErrNothingToConfirm
	}

	entries := make([]*entity.LedgerEntry, 0, len(active))
	for _, r := range active {
		batch, err := batchRepo.GetByID(r.BatchID)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			return nil, domain.ErrNotFound
		}
		result, err := m.ledger.ApplyMovementInTx(batchRepo, ledgerRepo, appinventory.MovementInput{
			ProductID: r.ProductID,
			BatchCode: batch.BatchCode,
			Type:      entity.MovementOUT,
			Quantity:  r.Quantity,
			Reference: transactionID,
			ActorID:   actorID,
		}, now)
		if err != nil {
			return nil, err
		}
		entries = append(entries, result.Entry)

		confirmedAt := now
		if err := resRepo.UpdateStatus(r.ID, entity.ReservationConfirmed, &confirmedAt); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// ReleaseInTx pasa las reservas ACTIVE de la venta al estado terminal dado
// (CANCELLED o EXPIRED). No toca el stock: las unidades retenidas nunca se
// descontaron, liberar es solo un cambio de estado.
func (m *Manager) ReleaseInTx(
	resRepo repository.ReservationRepository,
	transactionID string,
	status string,
) (int64, error) {
	if status != entity.ReservationCancelled && status != entity.ReservationExpired {
		return 0, domain.ErrInvalidInput
	}
	return resRepo.ReleaseByTransaction(transactionID, status)
}

// FindExpiredTransactions devuelve los IDs de venta con reservas ACTIVE ya
// vencidas. Lo que ya se liberó no vuelve a aparecer.
func (m *Manager) FindExpiredTransactions(ctx context.Context, asOf time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	return m.resRepo.ListExpiredTransactionIDs(asOf, limit)
}
