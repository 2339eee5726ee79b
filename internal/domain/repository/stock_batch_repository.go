package repository

import (
	"time"

	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// StockFilter filtro estructurado para consultar lotes de stock. Todos los
// campos son opcionales; cada uno agrega un predicado a la consulta.
type StockFilter struct {
	ProductID          string
	BatchCode          *string // nil = sin filtro; "" = lote por defecto
	NameSearch         string  // búsqueda por nombre de producto
	LowStockThreshold  *int64  // 0 < quantity <= threshold; nil usa min_stock del producto si LowStock
	LowStock           bool    // 0 < quantity <= products.min_stock
	ExpiringWithinDays *int    // vence entre hoy y hoy+N, quantity > 0
	Limit              int
	Offset             int
}

// StockBatchRepository define el puerto de persistencia para lotes de stock.
// Las filas de stocks solo se mutan a través del libro de inventario, siempre
// bajo bloqueo de fila (variantes ForUpdate dentro de una transacción).
type StockBatchRepository interface {
	GetByID(id string) (*entity.StockBatch, error)
	GetByIDForUpdate(id string) (*entity.StockBatch, error)
	// GetByProductAndCodeForUpdate bloquea (SELECT FOR UPDATE) el lote del
	// producto con ese código. Retorna nil si no existe.
	GetByProductAndCodeForUpdate(productID, batchCode string) (*entity.StockBatch, error)
	// ListByProductForUpdate bloquea todos los lotes con quantity > 0 del
	// producto, ordenados por vencimiento asc (nulls last) y creación asc.
	// Serializa asignaciones concurrentes sobre el mismo producto.
	ListByProductForUpdate(productID string) ([]*entity.StockBatch, error)
	ListByProduct(productID string) ([]*entity.StockBatch, error)
	Create(batch *entity.StockBatch) error
	UpdateQuantity(id string, quantity int64, updatedAt time.Time) error
	// ListExpired pagina lotes con expiry < asOf y quantity > 0, ordenados por
	// vencimiento asc y creación asc (los más urgentes primero).
	ListExpired(asOf time.Time, limit, offset int) ([]*entity.StockBatch, error)
	Search(filter StockFilter) ([]*entity.StockBatch, error)
}
