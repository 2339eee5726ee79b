package repository

import (
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// LedgerRepository define el puerto de persistencia del libro de inventario.
// Solo inserta y lee: las entradas nunca se actualizan ni se borran.
type LedgerRepository interface {
	Create(entry *entity.LedgerEntry) error
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error)
	// ListByReference lista los movimientos originados por una venta u otra
	// referencia externa, en orden de creación.
	ListByReference(reference string) ([]*entity.LedgerEntry, error)
}
