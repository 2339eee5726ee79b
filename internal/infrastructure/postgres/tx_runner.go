package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	appinventory "github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	apptransaction "github.com/jhoicas/PuntoVenta-api/internal/application/transaction"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

var _ appinventory.TxRunner = (*TxRunner)(nil)
var _ apptransaction.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL: el
// "scoped unit of work" de la app. Todo camino de salida hace Commit o
// Rollback, incluidos los caminos de error.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repos del libro de inventario y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	batchRepo repository.StockBatchRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStockBatchRepository(tx), NewLedgerRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunOrder inicia una transacción con los repos del ciclo de venta
// (stock, libro, reservas, ventas y consecutivos) y hace Commit o Rollback.
func (r *TxRunner) RunOrder(ctx context.Context, fn func(
	batchRepo repository.StockBatchRepository,
	ledgerRepo repository.LedgerRepository,
	resRepo repository.ReservationRepository,
	txRepo repository.TransactionRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewStockBatchRepository(tx),
		NewLedgerRepository(tx),
		NewReservationRepository(tx),
		NewTransactionRepository(tx),
		NewSequenceRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
