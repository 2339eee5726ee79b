package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación de TransactionRepository sobre PostgreSQL
// (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const transactionColumns = `id, invoice_number, user_id, customer_id, guest_name, guest_phone,
	subtotal, discount, total, payment_method, payment_amount, change_amount,
	status, expires_at, notes, created_at, updated_at`

// Create inserta la cabecera de la venta.
func (r *TransactionRepo) Create(tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.InvoiceNumber, nullIfEmpty(tx.UserID), nullIfEmpty(tx.CustomerID),
		nullIfEmpty(tx.GuestName), nullIfEmpty(tx.GuestPhone),
		tx.Subtotal, tx.Discount, tx.Total, tx.PaymentMethod, tx.PaymentAmount, tx.ChangeAmount,
		tx.Status, tx.ExpiresAt, nullIfEmpty(tx.Notes), tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número de factura duplicado: %w", err)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// CreateItem inserta una línea de la venta.
func (r *TransactionRepo) CreateItem(item *entity.TransactionItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transaction_items (id, transaction_id, product_id, batch_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.TransactionID, item.ProductID, item.BatchID,
		item.Quantity, item.UnitPrice, item.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert transaction item: %w", err)
	}
	return nil
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var userID, customerID, guestName, guestPhone, notes *string
	err := row.Scan(
		&t.ID, &t.InvoiceNumber, &userID, &customerID, &guestName, &guestPhone,
		&t.Subtotal, &t.Discount, &t.Total, &t.PaymentMethod, &t.PaymentAmount, &t.ChangeAmount,
		&t.Status, &t.ExpiresAt, &notes, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.UserID = derefStr(userID)
	t.CustomerID = derefStr(customerID)
	t.GuestName = derefStr(guestName)
	t.GuestPhone = derefStr(guestPhone)
	t.Notes = derefStr(notes)
	return &t, nil
}

// GetByID obtiene la cabecera de una venta. Retorna nil si no existe.
func (r *TransactionRepo) GetByID(id string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// GetByIDForUpdate bloquea la cabecera (SELECT FOR UPDATE) para el cambio de estado.
func (r *TransactionRepo) GetByIDForUpdate(id string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`
	t, err := scanTransaction(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction for update: %w", err)
	}
	return t, nil
}

// GetItems lista las líneas de una venta en orden de inserción.
func (r *TransactionRepo) GetItems(transactionID string) ([]*entity.TransactionItem, error) {
	query := `
		SELECT id, transaction_id, product_id, batch_id, quantity, unit_price, subtotal
		FROM transaction_items
		WHERE transaction_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()
	var items []*entity.TransactionItem
	for rows.Next() {
		var it entity.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.BatchID,
			&it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// UpdateStatus cambia el estado de la venta.
func (r *TransactionRepo) UpdateStatus(id, status string, updatedAt time.Time) error {
	query := `UPDATE transactions SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	return nil
}

// AppendNotes agrega una línea a las notas de la venta.
func (r *TransactionRepo) AppendNotes(id, notes string, updatedAt time.Time) error {
	query := `
		UPDATE transactions
		SET notes = CASE WHEN notes IS NULL OR notes = '' THEN $2 ELSE notes || E'\n' || $2 END,
		    updated_at = $3
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, notes, updatedAt)
	if err != nil {
		return fmt.Errorf("append transaction notes: %w", err)
	}
	return nil
}

// List consulta ventas con filtro estructurado, las más recientes primero.
func (r *TransactionRepo) List(filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	var args []any
	pos := 1
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		var t entity.Transaction
		var userID, customerID, guestName, guestPhone, notes *string
		if err := rows.Scan(&t.ID, &t.InvoiceNumber, &userID, &customerID, &guestName, &guestPhone,
			&t.Subtotal, &t.Discount, &t.Total, &t.PaymentMethod, &t.PaymentAmount, &t.ChangeAmount,
			&t.Status, &t.ExpiresAt, &notes, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.UserID = derefStr(userID)
		t.CustomerID = derefStr(customerID)
		t.GuestName = derefStr(guestName)
		t.GuestPhone = derefStr(guestPhone)
		t.Notes = derefStr(notes)
		list = append(list, &t)
	}
	return list, rows.Err()
}
