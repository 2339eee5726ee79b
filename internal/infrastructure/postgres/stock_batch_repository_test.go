package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

func TestSearchStockQuery_SinFiltrosSoloPagina(t *testing.T) {
	query, args := searchStockQuery(repository.StockFilter{Limit: 50, Offset: 10})

	assert.NotContains(t, query, "AND s.product_id")
	assert.Contains(t, query, "LIMIT $1 OFFSET $2")
	assert.Equal(t, []any{50, 10}, args)
}

func TestSearchStockQuery_NumeraLosPredicadosEnOrden(t *testing.T) {
	code := "L-01"
	threshold := int64(5)
	query, args := searchStockQuery(repository.StockFilter{
		ProductID:         "p1",
		BatchCode:         &code,
		NameSearch:        "leche",
		LowStock:          true,
		LowStockThreshold: &threshold,
		Limit:             20,
	})

	assert.Contains(t, query, "s.product_id = $1")
	assert.Contains(t, query, "COALESCE(s.batch_code, '') = $2")
	assert.Contains(t, query, "p.name ILIKE $3")
	assert.Contains(t, query, "s.quantity <= $4")
	assert.Contains(t, query, "LIMIT $5 OFFSET $6")
	assert.Equal(t, []any{"p1", "L-01", "%leche%", int64(5), 20, 0}, args)
}

func TestSearchStockQuery_StockBajoSinUmbralUsaElMinimoDelProducto(t *testing.T) {
	query, args := searchStockQuery(repository.StockFilter{LowStock: true, Limit: 20})

	assert.Contains(t, query, "s.quantity <= p.min_stock")
	assert.Equal(t, []any{20, 0}, args, "sin umbral explícito no se agregan parámetros")
}

func TestSearchStockQuery_PorVencerLigaElEnteroDirecto(t *testing.T) {
	days := 7
	query, args := searchStockQuery(repository.StockFilter{ExpiringWithinDays: &days, Limit: 20})

	// make_interval tipa el parámetro como entero; concatenarlo a texto
	// (`($1 || ' days')::interval`) rompe la codificación del driver
	assert.Contains(t, query, "make_interval(days => $1)")
	assert.NotContains(t, query, "|| ' days'")
	require.Len(t, args, 3)
	assert.Equal(t, 7, args[0])
}
