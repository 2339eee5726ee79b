package entity

import "time"

// Tipos de movimiento del libro de inventario.
const (
	MovementIN         = "IN"         // entrada por compra
	MovementOUT        = "OUT"        // salida (venta confirmada u otra salida)
	MovementSALE       = "SALE"       // venta directa en caja (misma regla que OUT)
	MovementADJUSTMENT = "ADJUSTMENT" // ajuste absoluto: fija la cantidad
	MovementEXPIRED    = "EXPIRED"    // baja total por vencimiento
	MovementRETURN     = "RETURN"     // devolución (reingresa unidades)
)

// ValidMovementKind verifica que el tipo pertenezca a la taxonomía.
func ValidMovementKind(kind string) bool {
	switch kind {
	case MovementIN, MovementOUT, MovementSALE, MovementADJUSTMENT, MovementEXPIRED, MovementRETURN:
		return true
	}
	return false
}

// LedgerEntry es un registro inmutable del libro de inventario: un movimiento
// de stock con foto antes/después. Invariante: QuantityAfter = QuantityBefore + Quantity.
// Nunca se actualiza ni se borra.
type LedgerEntry struct {
	ID             string
	ProductID      string
	BatchCode      string
	Type           string // IN, OUT, SALE, ADJUSTMENT, EXPIRED, RETURN
	Quantity       int64  // delta con signo
	QuantityBefore int64
	QuantityAfter  int64
	Reference      string // id externo (ej. venta) que originó el movimiento
	Notes          string
	CreatedBy      string // UserID, vacío en movimientos automáticos (barrido)
	CreatedAt      time.Time
}
