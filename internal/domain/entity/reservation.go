package entity

import "time"

// Estados de una reserva de stock.
const (
	ReservationActive    = "ACTIVE"    // retiene unidades de un lote para una venta pendiente
	ReservationConfirmed = "CONFIRMED" // pago confirmado; el stock ya fue descontado
	ReservationExpired   = "EXPIRED"   // la ventana de retención venció sin confirmar
	ReservationCancelled = "CANCELLED" // la venta fue anulada explícitamente
)

// Reservation retiene N unidades de un lote específico a nombre de una venta
// pendiente, para impedir que otra venta asigne las mismas unidades.
// CONFIRMED, EXPIRED y CANCELLED son terminales.
type Reservation struct {
	ID            string
	TransactionID string
	ProductID     string
	BatchID       string
	Quantity      int64
	Status        string
	ExpiresAt     time.Time
	ConfirmedAt   *time.Time
	CreatedAt     time.Time
}

// Terminal indica si la reserva ya no admite transiciones.
func (r *Reservation) Terminal() bool {
	return r.Status != ReservationActive
}
