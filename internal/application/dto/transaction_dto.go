package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionItemRequest línea de una venta. batch_id opcional fuerza el lote.
type TransactionItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	BatchID   string `json:"batch_id,omitempty"`
}

// CreateTransactionRequest body para POST /api/transactions.
type CreateTransactionRequest struct {
	Items         []TransactionItemRequest `json:"items"`
	PaymentMethod string                   `json:"payment_method"` // CASH, CARD, TRANSFER, QR
	PaymentAmount decimal.Decimal          `json:"payment_amount"`
	Discount      decimal.Decimal          `json:"discount"`
	CustomerID    string                   `json:"customer_id,omitempty"`
	GuestName     string                   `json:"guest_name,omitempty"`
	GuestPhone    string                   `json:"guest_phone,omitempty"`
	Notes         string                   `json:"notes,omitempty"`
}

// CancelTransactionRequest body para POST /api/transactions/:id/cancel.
type CancelTransactionRequest struct {
	Reason string `json:"reason"`
}

// TransactionItemResponse línea persistida de la venta.
type TransactionItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	BatchID   string          `json:"batch_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// TransactionResponse venta completa con líneas.
type TransactionResponse struct {
	ID            string                    `json:"id"`
	InvoiceNumber string                    `json:"invoice_number"`
	UserID        string                    `json:"user_id,omitempty"`
	CustomerID    string                    `json:"customer_id,omitempty"`
	GuestName     string                    `json:"guest_name,omitempty"`
	GuestPhone    string                    `json:"guest_phone,omitempty"`
	Subtotal      decimal.Decimal           `json:"subtotal"`
	Discount      decimal.Decimal           `json:"discount"`
	Total         decimal.Decimal           `json:"total"`
	PaymentMethod string                    `json:"payment_method"`
	PaymentAmount decimal.Decimal           `json:"payment_amount"`
	ChangeAmount  decimal.Decimal           `json:"change_amount"`
	Status        string                    `json:"status"`
	ExpiresAt     *time.Time                `json:"expires_at,omitempty"`
	Notes         string                    `json:"notes,omitempty"`
	Items         []TransactionItemResponse `json:"items"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}
