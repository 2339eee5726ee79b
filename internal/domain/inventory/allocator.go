package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
)

// BatchAvailability es la vista de un lote candidato al momento de asignar:
// disponible = cantidad del lote - reservas activas sobre él.
type BatchAvailability struct {
	BatchID   string
	Available int64
	ExpiresAt *time.Time
	CreatedAt time.Time
}

// Allocation es el par (lote, cantidad) elegido para cubrir una línea de venta.
type Allocation struct {
	BatchID  string
	Quantity int64
}

// Allocate reparte la cantidad solicitada entre los lotes candidatos con
// política FIFO-por-vencimiento: primero el lote que vence antes (sin
// vencimiento al final), desempate por fecha de creación. Determinista: el
// mismo estado de lotes produce siempre la misma asignación.
// Retorna ErrOutOfStock si ningún lote tiene disponible, o
// InsufficientStockError con el faltante si la suma no alcanza.
func Allocate(productID string, candidates []BatchAvailability, requested int64) ([]Allocation, error) {
	if requested <= 0 {
		return nil, domain.ErrInvalidInput
	}

	ordered := make([]BatchAvailability, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		switch {
		case a.ExpiresAt == nil && b.ExpiresAt == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.ExpiresAt == nil:
			return false // sin vencimiento va al final
		case b.ExpiresAt == nil:
			return true
		case !a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.ExpiresAt.Before(*b.ExpiresAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})

	var allocations []Allocation
	remaining := requested
	for _, c := range ordered {
		if c.Available <= 0 {
			continue
		}
		take := c.Available
		if remaining < take {
			take = remaining
		}
		allocations = append(allocations, Allocation{BatchID: c.BatchID, Quantity: take})
		remaining -= take
		if remaining == 0 {
			return allocations, nil
		}
	}

	if len(allocations) == 0 {
		return nil, domain.ErrOutOfStock
	}
	return nil, &domain.InsufficientStockError{
		ProductID: productID,
		Requested: requested,
		Available: requested - remaining,
	}
}
