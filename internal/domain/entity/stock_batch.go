package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBatch representa un lote de compra de un producto: cantidad actual,
// código de lote opcional y fecha de vencimiento opcional.
// Invariante: un solo lote por (ProductID, BatchCode); BatchCode vacío es el lote por defecto.
// Los lotes nunca se borran físicamente; la cantidad puede quedar en cero.
type StockBatch struct {
	ID            string
	ProductID     string
	BatchCode     string          // vacío = lote por defecto del producto
	Quantity      int64           // unidades enteras, >= 0
	PurchasePrice decimal.Decimal // costo de compra del lote
	SellingPrice  decimal.Decimal // precio de venta del lote
	ExpiresAt     *time.Time      // nil = no vence
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expired indica si el lote está vencido respecto a asOf.
func (b *StockBatch) Expired(asOf time.Time) bool {
	return b.ExpiresAt != nil && b.ExpiresAt.Before(asOf)
}
