package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists     = errors.New("el email ya está registrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrOutOfStock             = errors.New("producto sin stock disponible")
	ErrInvalidMovementKind    = errors.New("tipo de movimiento inválido")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")
	ErrInsufficientPayment    = errors.New("pago insuficiente")
	ErrEmptyOrder             = errors.New("la venta no tiene ítems")
	ErrNothingToConfirm       = errors.New("la venta no tiene reservas activas")
)

// InsufficientStockError reporta el faltante cuando lo solicitado supera lo disponible.
// Unwrap permite errors.Is(err, ErrInsufficientStock).
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
