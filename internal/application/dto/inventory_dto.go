package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/stock/movements.
// batch_code vacío usa el lote por defecto del producto. purchase_price,
// selling_price y expires_at solo aplican al crear lote en entradas (IN).
type RegisterMovementRequest struct {
	ProductID     string           `json:"product_id"`
	BatchCode     string           `json:"batch_code,omitempty"`
	Type          string           `json:"type"` // IN, OUT, SALE, ADJUSTMENT, RETURN
	Quantity      int64            `json:"quantity"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	SellingPrice  *decimal.Decimal `json:"selling_price,omitempty"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// StockBatchResponse representa un lote en las respuestas de consulta de stock.
type StockBatchResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	BatchCode     string          `json:"batch_code,omitempty"`
	Quantity      int64           `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LedgerEntryResponse representa un movimiento del libro de inventario.
type LedgerEntryResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	BatchCode      string    `json:"batch_code,omitempty"`
	Type           string    `json:"type"`
	Quantity       int64     `json:"quantity"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityAfter  int64     `json:"quantity_after"`
	Reference      string    `json:"reference,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedBy      string    `json:"created_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// BatchAvailabilityResponse disponible real de un lote: cantidad - reservas activas.
type BatchAvailabilityResponse struct {
	BatchID   string     `json:"batch_id"`
	BatchCode string     `json:"batch_code,omitempty"`
	Quantity  int64      `json:"quantity"`
	Reserved  int64      `json:"reserved"`
	Available int64      `json:"available"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// AvailabilityResponse disponibilidad de un producto contando las reservas activas.
type AvailabilityResponse struct {
	ProductID     string                      `json:"product_id"`
	TotalStock    int64                       `json:"total_stock"`
	TotalReserved int64                       `json:"total_reserved"`
	PerBatch      []BatchAvailabilityResponse `json:"per_batch"`
}
