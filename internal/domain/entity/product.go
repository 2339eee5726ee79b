package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El stock vive en StockBatch
// (por lote); aquí solo queda la identidad, el umbral de stock mínimo y el
// flag de activo que consulta el núcleo de inventario.
type Product struct {
	ID          string
	CategoryID  string
	SKU         string // código único
	Name        string
	Description string
	UnitMeasure string          // unidad, caja, kg...
	Price       decimal.Decimal // precio de venta de referencia (el precio real sale del lote)
	MinStock    int64           // umbral para el reporte de stock bajo
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
