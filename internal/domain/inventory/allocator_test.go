package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests de Allocate: política FIFO-por-vencimiento.
//
// El orden de asignación es el corazón de la caja: el lote que vence antes se
// vende primero, con desempate por fecha de creación y los lotes sin
// vencimiento al final. Si alguien cambia el orden, estos tests fallan.
// ──────────────────────────────────────────────────────────────────────────────

var base = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func days(n int) *time.Time {
	t := base.AddDate(0, 0, n)
	return &t
}

func TestAllocate_EscenarioDosLotes(t *testing.T) {
	// Producto con lote A (10 uds, vence en 5 días) y lote B (10 uds, vence en 30).
	// Pedir 15 debe dar [(A,10), (B,5)].
	candidates := []inventory.BatchAvailability{
		{BatchID: "B", Available: 10, ExpiresAt: days(30), CreatedAt: base},
		{BatchID: "A", Available: 10, ExpiresAt: days(5), CreatedAt: base},
	}

	allocs, err := inventory.Allocate("prod-1", candidates, 15)
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, inventory.Allocation{BatchID: "A", Quantity: 10}, allocs[0],
		"el lote que vence antes se asigna primero")
	assert.Equal(t, inventory.Allocation{BatchID: "B", Quantity: 5}, allocs[1])
}

func TestAllocate_Determinista(t *testing.T) {
	candidates := []inventory.BatchAvailability{
		{BatchID: "C", Available: 3, ExpiresAt: nil, CreatedAt: base.Add(2 * time.Hour)},
		{BatchID: "A", Available: 4, ExpiresAt: days(10), CreatedAt: base.Add(time.Hour)},
		{BatchID: "B", Available: 4, ExpiresAt: days(10), CreatedAt: base},
	}

	first, err := inventory.Allocate("prod-1", candidates, 9)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := inventory.Allocate("prod-1", candidates, 9)
		require.NoError(t, err)
		assert.Equal(t, first, again, "misma entrada debe dar la misma asignación")
	}
	// Mismo vencimiento: desempata la fecha de creación (B antes que A); sin vencimiento al final.
	assert.Equal(t, "B", first[0].BatchID)
	assert.Equal(t, "A", first[1].BatchID)
	assert.Equal(t, "C", first[2].BatchID)
}

func TestAllocate_SinVencimientoVaAlFinal(t *testing.T) {
	candidates := []inventory.BatchAvailability{
		{BatchID: "sin-fecha", Available: 10, ExpiresAt: nil, CreatedAt: base},
		{BatchID: "vence", Available: 2, ExpiresAt: days(3), CreatedAt: base.Add(time.Hour)},
	}

	allocs, err := inventory.Allocate("prod-1", candidates, 5)
	require.NoError(t, err)
	assert.Equal(t, "vence", allocs[0].BatchID)
	assert.Equal(t, int64(2), allocs[0].Quantity)
	assert.Equal(t, "sin-fecha", allocs[1].BatchID)
	assert.Equal(t, int64(3), allocs[1].Quantity)
}

func TestAllocate_SinDisponible_OutOfStock(t *testing.T) {
	candidates := []inventory.BatchAvailability{
		{BatchID: "A", Available: 0, ExpiresAt: days(5), CreatedAt: base},
	}

	_, err := inventory.Allocate("prod-1", candidates, 1)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
}

func TestAllocate_FaltanteReportado(t *testing.T) {
	candidates := []inventory.BatchAvailability{
		{BatchID: "A", Available: 4, ExpiresAt: days(5), CreatedAt: base},
		{BatchID: "B", Available: 3, ExpiresAt: days(7), CreatedAt: base},
	}

	_, err := inventory.Allocate("prod-1", candidates, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &insErr))
	assert.Equal(t, int64(10), insErr.Requested)
	assert.Equal(t, int64(7), insErr.Available, "debe reportar cuánto sí había disponible")
}

func TestAllocate_CantidadInvalida(t *testing.T) {
	_, err := inventory.Allocate("prod-1", nil, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = inventory.Allocate("prod-1", nil, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
