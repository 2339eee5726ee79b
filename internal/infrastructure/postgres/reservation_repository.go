package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL
// (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// CreateBatch inserta las reservas de una venta.
func (r *ReservationRepo) CreateBatch(reservations []*entity.Reservation) error {
	query := `
		INSERT INTO reservations (id, transaction_id, product_id, batch_id, quantity, status, expires_at, confirmed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, res := range reservations {
		if res.ID == "" {
			res.ID = uuid.New().String()
		}
		_, err := r.q.Exec(context.Background(), query,
			res.ID, res.TransactionID, res.ProductID, res.BatchID,
			res.Quantity, res.Status, res.ExpiresAt, res.ConfirmedAt, res.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
	}
	return nil
}

const reservationColumns = `id, transaction_id, product_id, batch_id, quantity, status, expires_at, confirmed_at, created_at`

// ListActiveByTransaction lista las reservas ACTIVE de una venta en orden de creación.
func (r *ReservationRepo) ListActiveByTransaction(transactionID string) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE transaction_id = $1 AND status = $2
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, transactionID, entity.ReservationActive)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(&res.ID, &res.TransactionID, &res.ProductID, &res.BatchID,
			&res.Quantity, &res.Status, &res.ExpiresAt, &res.ConfirmedAt, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}

// SumActiveByBatch suma las cantidades retenidas (status ACTIVE) por lote.
func (r *ReservationRepo) SumActiveByBatch(batchIDs []string) (map[string]int64, error) {
	held := make(map[string]int64)
	if len(batchIDs) == 0 {
		return held, nil
	}
	query := `
		SELECT batch_id, COALESCE(SUM(quantity), 0)
		FROM reservations
		WHERE status = $1 AND batch_id = ANY($2)
		GROUP BY batch_id`
	rows, err := r.q.Query(context.Background(), query, entity.ReservationActive, batchIDs)
	if err != nil {
		return nil, fmt.Errorf("sum active reservations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var batchID string
		var sum int64
		if err := rows.Scan(&batchID, &sum); err != nil {
			return nil, fmt.Errorf("scan reservation sum: %w", err)
		}
		held[batchID] = sum
	}
	return held, rows.Err()
}

// SumActiveByProduct suma todas las unidades retenidas de un producto.
func (r *ReservationRepo) SumActiveByProduct(productID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM reservations
		WHERE status = $1 AND product_id = $2`
	var sum int64
	err := r.q.QueryRow(context.Background(), query, entity.ReservationActive, productID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum active reservations by product: %w", err)
	}
	return sum, nil
}

// UpdateStatus cambia el estado de una reserva.
func (r *ReservationRepo) UpdateStatus(id, status string, confirmedAt *time.Time) error {
	query := `UPDATE reservations SET status = $2, confirmed_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, status, confirmedAt)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	return nil
}

// ReleaseByTransaction pasa todas las reservas ACTIVE de la venta al estado dado.
func (r *ReservationRepo) ReleaseByTransaction(transactionID, status string) (int64, error) {
	query := `UPDATE reservations SET status = $2 WHERE transaction_id = $1 AND status = $3`
	tag, err := r.q.Exec(context.Background(), query, transactionID, status, entity.ReservationActive)
	if err != nil {
		return 0, fmt.Errorf("release reservations: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListExpiredTransactionIDs devuelve ventas distintas con reservas ACTIVE vencidas.
func (r *ReservationRepo) ListExpiredTransactionIDs(asOf time.Time, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT transaction_id
		FROM reservations
		WHERE status = $1 AND expires_at < $2
		ORDER BY transaction_id
		LIMIT $3`
	rows, err := r.q.Query(context.Background(), query, entity.ReservationActive, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired reservations: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan transaction id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
