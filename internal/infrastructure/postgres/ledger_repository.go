package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación del libro de inventario sobre PostgreSQL
// (usable con pool o tx). Solo INSERT y SELECT: el libro es inmutable.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create persiste una entrada del libro.
func (r *LedgerRepo) Create(entry *entity.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory (id, product_id, batch_code, type, quantity, quantity_before, quantity_after, reference, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.ProductID, nullIfEmpty(entry.BatchCode), entry.Type,
		entry.Quantity, entry.QuantityBefore, entry.QuantityAfter,
		nullIfEmpty(entry.Reference), nullIfEmpty(entry.Notes), nullIfEmpty(entry.CreatedBy),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

const ledgerColumns = `id, product_id, batch_code, type, quantity, quantity_before, quantity_after, reference, notes, created_by, created_at`

// ListByProduct lista el libro de un producto en un rango de fechas, lo más reciente primero.
func (r *LedgerRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM inventory WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.list(query, args...)
}

// ListByReference lista los movimientos originados por una venta, en orden de creación.
func (r *LedgerRepo) ListByReference(reference string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM inventory WHERE reference = $1 ORDER BY created_at ASC`
	return r.list(query, reference)
}

func (r *LedgerRepo) list(query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var code, ref, notes, createdBy *string
		if err := rows.Scan(&e.ID, &e.ProductID, &code, &e.Type,
			&e.Quantity, &e.QuantityBefore, &e.QuantityAfter,
			&ref, &notes, &createdBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.BatchCode = derefStr(code)
		e.Reference = derefStr(ref)
		e.Notes = derefStr(notes)
		e.CreatedBy = derefStr(createdBy)
		list = append(list, &e)
	}
	return list, rows.Err()
}
