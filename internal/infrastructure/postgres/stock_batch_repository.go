package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.StockBatchRepository = (*StockBatchRepo)(nil)

// StockBatchRepo implementación de StockBatchRepository sobre PostgreSQL (usable con pool o tx).
type StockBatchRepo struct {
	q Querier
}

// NewStockBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewStockBatchRepository(q Querier) *StockBatchRepo {
	return &StockBatchRepo{q: q}
}

const batchColumns = `id, product_id, batch_code, quantity, purchase_price, selling_price, expires_at, created_at, updated_at`

func scanBatch(row pgx.Row) (*entity.StockBatch, error) {
	var b entity.StockBatch
	var code *string
	err := row.Scan(
		&b.ID, &b.ProductID, &code, &b.Quantity,
		&b.PurchasePrice, &b.SellingPrice, &b.ExpiresAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.BatchCode = derefStr(code)
	return &b, nil
}

// GetByID obtiene un lote por ID.
func (r *StockBatchRepo) GetByID(id string) (*entity.StockBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM stocks WHERE id = $1`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock batch: %w", err)
	}
	return b, nil
}

// GetByIDForUpdate obtiene un lote por ID y bloquea la fila (SELECT FOR UPDATE).
func (r *StockBatchRepo) GetByIDForUpdate(id string) (*entity.StockBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM stocks WHERE id = $1 FOR UPDATE`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock batch for update: %w", err)
	}
	return b, nil
}

// GetByProductAndCodeForUpdate bloquea el lote (producto, código) para el
// read-modify-write del libro. Código vacío es el lote por defecto.
func (r *StockBatchRepo) GetByProductAndCodeForUpdate(productID, batchCode string) (*entity.StockBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM stocks
		WHERE product_id = $1 AND COALESCE(batch_code, '') = $2
		FOR UPDATE`
	b, err := scanBatch(r.q.QueryRow(context.Background(), query, productID, batchCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock batch for update: %w", err)
	}
	return b, nil
}

// ListByProduct lista todos los lotes de un producto, vencimiento asc (nulls last).
func (r *StockBatchRepo) ListByProduct(productID string) ([]*entity.StockBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM stocks
		WHERE product_id = $1
		ORDER BY expires_at ASC NULLS LAST, created_at ASC`
	return r.list(query, productID)
}

// ListByProductForUpdate bloquea todos los lotes con stock del producto
// (SELECT FOR UPDATE) en el orden de asignación. Dos asignaciones
// concurrentes sobre el mismo producto se serializan en estos locks.
func (r *StockBatchRepo) ListByProductForUpdate(productID string) ([]*entity.StockBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM stocks
		WHERE product_id = $1 AND quantity > 0
		ORDER BY expires_at ASC NULLS LAST, created_at ASC
		FOR UPDATE`
	return r.list(query, productID)
}

// Create inserta un lote nuevo. La unicidad (producto, código) la protege la BD.
func (r *StockBatchRepo) Create(batch *entity.StockBatch) error {
	query := `
		INSERT INTO stocks (id, product_id, batch_code, quantity, purchase_price, selling_price, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.ProductID, nullIfEmpty(batch.BatchCode), batch.Quantity,
		batch.PurchasePrice, batch.SellingPrice, batch.ExpiresAt,
		batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lote duplicado para el producto: %w", err)
		}
		return fmt.Errorf("insert stock batch: %w", err)
	}
	return nil
}

// UpdateQuantity fija la cantidad del lote (la fila ya debe estar bloqueada por el caller).
func (r *StockBatchRepo) UpdateQuantity(id string, quantity int64, updatedAt time.Time) error {
	query := `UPDATE stocks SET quantity = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, quantity, updatedAt)
	if err != nil {
		return fmt.Errorf("update stock batch quantity: %w", err)
	}
	return nil
}

// ListExpired pagina lotes vencidos con stock positivo, los más urgentes primero.
func (r *StockBatchRepo) ListExpired(asOf time.Time, limit, offset int) ([]*entity.StockBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM stocks
		WHERE expires_at IS NOT NULL AND expires_at < $1 AND quantity > 0
		ORDER BY expires_at ASC, created_at ASC
		LIMIT $2 OFFSET $3`
	return r.list(query, asOf, limit, offset)
}

// Search consulta lotes con el filtro estructurado. Cada campo presente
// agrega un predicado parametrizado; no se concatena entrada del usuario.
func (r *StockBatchRepo) Search(filter repository.StockFilter) ([]*entity.StockBatch, error) {
	query, args := searchStockQuery(filter)
	return r.list(query, args...)
}

func searchStockQuery(filter repository.StockFilter) (string, []any) {
	query := `
		SELECT s.id, s.product_id, s.batch_code, s.quantity, s.purchase_price, s.selling_price, s.expires_at, s.created_at, s.updated_at
		FROM stocks s
		JOIN products p ON p.id = s.product_id
		WHERE 1=1`
	var args []any
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND s.product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.BatchCode != nil {
		query += fmt.Sprintf(" AND COALESCE(s.batch_code, '') = $%d", pos)
		args = append(args, *filter.BatchCode)
		pos++
	}
	if filter.NameSearch != "" {
		query += fmt.Sprintf(" AND p.name ILIKE $%d", pos)
		args = append(args, "%"+filter.NameSearch+"%")
		pos++
	}
	if filter.LowStock {
		if filter.LowStockThreshold != nil {
			query += fmt.Sprintf(" AND s.quantity > 0 AND s.quantity <= $%d", pos)
			args = append(args, *filter.LowStockThreshold)
			pos++
		} else {
			query += " AND s.quantity > 0 AND s.quantity <= p.min_stock"
		}
	}
	if filter.ExpiringWithinDays != nil {
		query += fmt.Sprintf(" AND s.quantity > 0 AND s.expires_at IS NOT NULL AND s.expires_at >= now() AND s.expires_at < now() + make_interval(days => $%d)", pos)
		args = append(args, *filter.ExpiringWithinDays)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY s.expires_at ASC NULLS LAST, s.created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	return query, args
}

func (r *StockBatchRepo) list(query string, args ...any) ([]*entity.StockBatch, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockBatch
	for rows.Next() {
		var b entity.StockBatch
		var code *string
		if err := rows.Scan(&b.ID, &b.ProductID, &code, &b.Quantity,
			&b.PurchasePrice, &b.SellingPrice, &b.ExpiresAt,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock batch: %w", err)
		}
		b.BatchCode = derefStr(code)
		list = append(list, &b)
	}
	return list, rows.Err()
}
