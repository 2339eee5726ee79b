package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta (Transaction).
const (
	TransactionPending   = "PENDING"   // creada, con reservas activas
	TransactionCompleted = "COMPLETED" // pago confirmado, stock descontado
	TransactionCancelled = "CANCELLED" // anulada antes del pago
	TransactionExpired   = "EXPIRED"   // la ventana de retención venció
	TransactionRefunded  = "REFUNDED"  // devolución posterior (la fija otro proceso)
)

// Métodos de pago aceptados en caja.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
	PaymentQR       = "QR"
)

// ValidPaymentMethod verifica que el método de pago sea aceptado.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentQR:
		return true
	}
	return false
}

// Transaction representa una venta: cabecera con totales, método de pago y
// estado. PENDING es el único estado no terminal.
// Invariantes: Total = Subtotal - Discount; en CASH PaymentAmount >= Total y
// ChangeAmount = PaymentAmount - Total; en otros métodos PaymentAmount = Total.
type Transaction struct {
	ID            string
	InvoiceNumber string // consecutivo por día: POS-20250115-0001
	UserID        string // vendedor que registró la venta, puede ser vacío
	CustomerID    string // cliente registrado, vacío para venta de mostrador
	GuestName     string
	GuestPhone    string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	PaymentAmount decimal.Decimal
	ChangeAmount  decimal.Decimal
	Status        string
	ExpiresAt     *time.Time // solo para métodos no-efectivo: fin de la ventana de retención
	Notes         string
	Items         []*TransactionItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TransactionItem es una línea de la venta: producto, lote asignado y precio
// unitario tomado del primer lote asignado.
type TransactionItem struct {
	ID            string
	TransactionID string
	ProductID     string
	BatchID       string
	Quantity      int64
	UnitPrice     decimal.Decimal
	Subtotal      decimal.Decimal
}

// CanTransition valida la máquina de estados de la venta:
// PENDING -> COMPLETED | CANCELLED | EXPIRED. Los demás estados son terminales.
func (t *Transaction) CanTransition(to string) bool {
	if t.Status != TransactionPending {
		return false
	}
	switch to {
	case TransactionCompleted, TransactionCancelled, TransactionExpired:
		return true
	}
	return false
}
