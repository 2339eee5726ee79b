package reconciler

import (
	"context"
	"time"

	appinventory "github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/application/reservation"
	"github.com/jhoicas/PuntoVenta-api/internal/application/transaction"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/pkg/logger"
)

const pageSize = 50

// Summary resultado de un barrido, para logging.
type Summary struct {
	Processed int // ítems procesados con éxito
	Total     int // ítems encontrados (procesados + fallidos)
}

// Reconciler ejecuta los barridos periódicos de expiración: da de baja lotes
// vencidos (movimiento EXPIRED en el libro) y libera reservas cuya ventana de
// retención terminó, venciendo la venta dueña. Mejor-esfuerzo: la falla de un
// ítem se registra y se salta, el resto del barrido continúa; la siguiente
// corrida reintenta lo que siga vencido.
type Reconciler struct {
	ledger    *appinventory.LedgerUseCase
	orders    *transaction.UseCase
	holds     *reservation.Manager
	log       *logger.Logger
	itemDelay time.Duration // pausa entre ítems para reducir contención de locks
}

// New construye el reconciliador.
func New(
	ledger *appinventory.LedgerUseCase,
	orders *transaction.UseCase,
	holds *reservation.Manager,
	log *logger.Logger,
	itemDelay time.Duration,
) *Reconciler {
	return &Reconciler{ledger: ledger, orders: orders, holds: holds, log: log, itemDelay: itemDelay}
}

// StockSweep da de baja los lotes vencidos con stock positivo, los más
// urgentes primero. Procesa por páginas reconsultando tras cada una: los
// lotes ya dados de baja salen del predicado, y los fallidos se saltan con
// el offset, así el recorrido es reiniciable y no se atasca.
func (r *Reconciler) StockSweep(ctx context.Context) (Summary, error) {
	now := time.Now()
	var sum Summary
	failed := 0

	for {
		batches, err := r.ledger.ListExpiredBatches(now, pageSize, failed)
		if err != nil {
			return sum, err
		}
		if len(batches) == 0 {
			break
		}
		for _, b := range batches {
			sum.Total++
			_, err := r.ledger.RegisterMovement(ctx, appinventory.MovementInput{
				ProductID: b.ProductID,
				BatchCode: b.BatchCode,
				Type:      entity.MovementEXPIRED,
				Notes:     "baja automática por vencimiento",
			})
			if err != nil {
				failed++
				r.log.Warn().Err(err).
					Str("product_id", b.ProductID).
					Str("batch_code", b.BatchCode).
					Msg("barrido de stock: falló la baja del lote, se salta")
			} else {
				sum.Processed++
			}
			if !r.pause(ctx) {
				return sum, ctx.Err()
			}
		}
	}
	return sum, nil
}

// ReservationSweep libera las reservas vencidas agrupadas por venta y vence
// la venta dueña (reservas EXPIRED + venta EXPIRED en una transacción por
// venta). Idempotente: una segunda corrida sin vencimientos nuevos no
// procesa nada.
func (r *Reconciler) ReservationSweep(ctx context.Context) (Summary, error) {
	now := time.Now()
	var sum Summary
	seen := make(map[string]bool)

	for {
		ids, err := r.holds.FindExpiredTransactions(ctx, now, pageSize)
		if err != nil {
			return sum, err
		}
		progress := false
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			progress = true
			sum.Total++
			if err := r.orders.Expire(ctx, id); err != nil {
				r.log.Warn().Err(err).
					Str("transaction_id", id).
					Msg("barrido de reservas: falló el vencimiento de la venta, se salta")
			} else {
				sum.Processed++
			}
			if !r.pause(ctx) {
				return sum, ctx.Err()
			}
		}
		if !progress {
			break
		}
	}
	return sum, nil
}

// pause espera el delay entre ítems; retorna false si el contexto se canceló.
func (r *Reconciler) pause(ctx context.Context) bool {
	if r.itemDelay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(r.itemDelay):
		return true
	}
}
