package repository

import (
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia para reservas de stock.
// Las reservas solo se mutan a través del gestor de reservas.
type ReservationRepository interface {
	CreateBatch(reservations []*entity.Reservation) error
	ListActiveByTransaction(transactionID string) ([]*entity.Reservation, error)
	// SumActiveByBatch suma las cantidades de reservas ACTIVE por lote.
	// Lotes sin reservas activas no aparecen en el mapa.
	SumActiveByBatch(batchIDs []string) (map[string]int64, error)
	SumActiveByProduct(productID string) (int64, error)
	// UpdateStatus cambia el estado de una reserva (confirmedAt solo para CONFIRMED).
	UpdateStatus(id, status string, confirmedAt *time.Time) error
	// ReleaseByTransaction pasa todas las reservas ACTIVE de la venta al estado
	// terminal dado. Retorna cuántas cambió.
	ReleaseByTransaction(transactionID, status string) (int64, error)
	// ListExpiredTransactionIDs devuelve los IDs de venta (sin duplicados) con
	// reservas ACTIVE vencidas a la fecha dada.
	ListExpiredTransactionIDs(asOf time.Time, limit int) ([]string, error)
}
