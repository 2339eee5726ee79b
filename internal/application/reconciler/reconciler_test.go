package reconciler_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/application/reconciler"
	"github.com/jhoicas/PuntoVenta-api/internal/application/reservation"
	"github.com/jhoicas/PuntoVenta-api/internal/application/transaction"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
	"github.com/jhoicas/PuntoVenta-api/pkg/logger"
)

// Mundo mínimo en memoria para ejercitar los barridos de punta a punta,
// con los casos de uso reales por encima.

type world struct {
	products     map[string]*entity.Product
	batches      map[string]*entity.StockBatch
	entries      []*entity.LedgerEntry
	reservations []*entity.Reservation
	sales        map[string]*entity.Transaction
}

type productRepo struct{ w *world }

func (r *productRepo) Create(p *entity.Product) error           { r.w.products[p.ID] = p; return nil }
func (r *productRepo) GetByID(id string) (*entity.Product, error) { return r.w.products[id], nil }
func (r *productRepo) GetBySKU(string) (*entity.Product, error) { return nil, nil }
func (r *productRepo) Update(p *entity.Product) error           { r.w.products[p.ID] = p; return nil }
func (r *productRepo) SetActive(string, bool) error             { return nil }
func (r *productRepo) List(repository.ProductFilter) ([]*entity.Product, error) { return nil, nil }

type batchRepo struct{ w *world }

func (r *batchRepo) GetByID(id string) (*entity.StockBatch, error)          { return r.w.batches[id], nil }
func (r *batchRepo) GetByIDForUpdate(id string) (*entity.StockBatch, error) { return r.w.batches[id], nil }
func (r *batchRepo) GetByProductAndCodeForUpdate(productID, code string) (*entity.StockBatch, error) {
	for _, b := range r.w.batches {
		if b.ProductID == productID && b.BatchCode == code {
			return b, nil
		}
	}
	return nil, nil
}
func (r *batchRepo) ListByProductForUpdate(productID string) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	for _, b := range r.w.batches {
		if b.ProductID == productID && b.Quantity > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}
func (r *batchRepo) ListByProduct(productID string) ([]*entity.StockBatch, error) {
	return r.ListByProductForUpdate(productID)
}
func (r *batchRepo) Create(b *entity.StockBatch) error { r.w.batches[b.ID] = b; return nil }
func (r *batchRepo) UpdateQuantity(id string, quantity int64, updatedAt time.Time) error {
	b, ok := r.w.batches[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Quantity = quantity
	b.UpdatedAt = updatedAt
	return nil
}
func (r *batchRepo) ListExpired(asOf time.Time, limit, offset int) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	for _, b := range r.w.batches {
		if b.ExpiresAt != nil && b.ExpiresAt.Before(asOf) && b.Quantity > 0 {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
func (r *batchRepo) Search(repository.StockFilter) ([]*entity.StockBatch, error) { return nil, nil }

type ledgerRepo struct{ w *world }

func (r *ledgerRepo) Create(e *entity.LedgerEntry) error {
	r.w.entries = append(r.w.entries, e)
	return nil
}
func (r *ledgerRepo) ListByProduct(string, *time.Time, *time.Time, int, int) ([]*entity.LedgerEntry, error) {
	return nil, nil
}
func (r *ledgerRepo) ListByReference(string) ([]*entity.LedgerEntry, error) { return nil, nil }

type reservationRepo struct{ w *world }

func (r *reservationRepo) CreateBatch(rs []*entity.Reservation) error {
	r.w.reservations = append(r.w.reservations, rs...)
	return nil
}
func (r *reservationRepo) ListActiveByTransaction(transactionID string) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	for _, res := range r.w.reservations {
		if res.TransactionID == transactionID && res.Status == entity.ReservationActive {
			out = append(out, res)
		}
	}
	return out, nil
}
func (r *reservationRepo) SumActiveByBatch([]string) (map[string]int64, error) {
	return map[string]int64{}, nil
}
func (r *reservationRepo) SumActiveByProduct(string) (int64, error) { return 0, nil }
func (r *reservationRepo) UpdateStatus(id, status string, confirmedAt *time.Time) error {
	for _, res := range r.w.reservations {
		if res.ID == id {
			res.Status = status
			res.ConfirmedAt = confirmedAt
			return nil
		}
	}
	return domain.ErrNotFound
}
func (r *reservationRepo) ReleaseByTransaction(transactionID, status string) (int64, error) {
	var n int64
	for _, res := range r.w.reservations {
		if res.TransactionID == transactionID && res.Status == entity.ReservationActive {
			res.Status = status
			n++
		}
	}
	return n, nil
}
func (r *reservationRepo) ListExpiredTransactionIDs(asOf time.Time, limit int) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, res := range r.w.reservations {
		if res.Status == entity.ReservationActive && res.ExpiresAt.Before(asOf) && !seen[res.TransactionID] {
			seen[res.TransactionID] = true
			out = append(out, res.TransactionID)
			if len(out) == limit {
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

type salesRepo struct{ w *world }

func (r *salesRepo) Create(tx *entity.Transaction) error        { r.w.sales[tx.ID] = tx; return nil }
func (r *salesRepo) CreateItem(*entity.TransactionItem) error   { return nil }
func (r *salesRepo) GetByID(id string) (*entity.Transaction, error) { return r.w.sales[id], nil }
func (r *salesRepo) GetByIDForUpdate(id string) (*entity.Transaction, error) {
	return r.w.sales[id], nil
}
func (r *salesRepo) GetItems(string) ([]*entity.TransactionItem, error) { return nil, nil }
func (r *salesRepo) UpdateStatus(id, status string, updatedAt time.Time) error {
	sale, ok := r.w.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	sale.Status = status
	sale.UpdatedAt = updatedAt
	return nil
}
func (r *salesRepo) AppendNotes(id, notes string, updatedAt time.Time) error { return nil }
func (r *salesRepo) List(repository.TransactionFilter) ([]*entity.Transaction, error) {
	return nil, nil
}

type sequenceRepo struct{ n int64 }

func (r *sequenceRepo) Next(string, time.Time) (int64, error) { r.n++; return r.n, nil }

type movementRunner struct{ w *world }

func (r *movementRunner) Run(ctx context.Context, fn func(
	batchRepo repository.StockBatchRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return fn(&batchRepo{r.w}, &ledgerRepo{r.w})
}

type orderRunner struct {
	w   *world
	seq *sequenceRepo
}

func (r *orderRunner) RunOrder(ctx context.Context, fn func(
	batchRepo repository.StockBatchRepository,
	ledgerRepo repository.LedgerRepository,
	resRepo repository.ReservationRepository,
	txRepo repository.TransactionRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	return fn(&batchRepo{r.w}, &ledgerRepo{r.w}, &reservationRepo{r.w}, &salesRepo{r.w}, r.seq)
}

func newFixture(w *world) *reconciler.Reconciler {
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	ledgerUC := inventory.NewLedgerUseCase(&movementRunner{w}, &productRepo{w}, &batchRepo{w}, &ledgerRepo{w})
	manager := reservation.NewManager(&reservationRepo{w}, &batchRepo{w}, ledgerUC)
	orders := transaction.NewUseCase(
		&orderRunner{w: w, seq: &sequenceRepo{}},
		&productRepo{w},
		nil,
		&salesRepo{w},
		manager,
		transaction.Config{},
	)
	return reconciler.New(ledgerUC, orders, manager, log, 0)
}

func vencido(horas int) *time.Time {
	t := time.Now().Add(-time.Duration(horas) * time.Hour)
	return &t
}

func TestStockSweep_DaDeBajaLotesVencidosYSaltaFallas(t *testing.T) {
	w := &world{
		products: map[string]*entity.Product{
			"p1": {ID: "p1", Name: "Yogur", Active: true},
			"p2": {ID: "p2", Name: "Queso", Active: false}, // la baja falla, el barrido sigue
			"p3": {ID: "p3", Name: "Kumis", Active: true},
		},
		batches: map[string]*entity.StockBatch{
			"b1": {ID: "b1", ProductID: "p1", BatchCode: "Y-01", Quantity: 5, ExpiresAt: vencido(24)},
			"b2": {ID: "b2", ProductID: "p2", BatchCode: "Q-01", Quantity: 3, ExpiresAt: vencido(48)},
			"b3": {ID: "b3", ProductID: "p3", BatchCode: "K-01", Quantity: 8, ExpiresAt: vencido(2)},
		},
		sales: map[string]*entity.Transaction{},
	}
	recon := newFixture(w)

	sum, err := recon.StockSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, int64(0), w.batches["b1"].Quantity)
	assert.Equal(t, int64(3), w.batches["b2"].Quantity, "el lote fallido queda para la próxima corrida")
	assert.Equal(t, int64(0), w.batches["b3"].Quantity)

	require.Len(t, w.entries, 2)
	for _, e := range w.entries {
		assert.Equal(t, entity.MovementEXPIRED, e.Type)
		assert.Empty(t, e.CreatedBy, "movimiento automático, sin actor")
	}
}

func TestStockSweep_SinVencidosNoHaceNada(t *testing.T) {
	futuro := time.Now().Add(240 * time.Hour)
	w := &world{
		products: map[string]*entity.Product{"p1": {ID: "p1", Active: true}},
		batches: map[string]*entity.StockBatch{
			"b1": {ID: "b1", ProductID: "p1", Quantity: 5, ExpiresAt: &futuro},
			"b2": {ID: "b2", ProductID: "p1", BatchCode: "X", Quantity: 4}, // sin vencimiento
		},
		sales: map[string]*entity.Transaction{},
	}
	recon := newFixture(w)

	sum, err := recon.StockSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Total)
	assert.Empty(t, w.entries)
}

func TestReservationSweep_VenceVentasConReservasVencidas(t *testing.T) {
	w := &world{
		products: map[string]*entity.Product{"p1": {ID: "p1", Active: true}},
		batches: map[string]*entity.StockBatch{
			"b1": {ID: "b1", ProductID: "p1", Quantity: 10},
		},
		sales: map[string]*entity.Transaction{
			"tx1": {ID: "tx1", Status: entity.TransactionPending},
			"tx2": {ID: "tx2", Status: entity.TransactionPending},
		},
		reservations: []*entity.Reservation{
			{ID: "r1", TransactionID: "tx1", ProductID: "p1", BatchID: "b1", Quantity: 2,
				Status: entity.ReservationActive, ExpiresAt: *vencido(1)},
			{ID: "r2", TransactionID: "tx2", ProductID: "p1", BatchID: "b1", Quantity: 3,
				Status: entity.ReservationActive, ExpiresAt: *vencido(5)},
		},
	}
	recon := newFixture(w)

	sum, err := recon.ReservationSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 2, sum.Processed)
	assert.Equal(t, entity.TransactionExpired, w.sales["tx1"].Status)
	assert.Equal(t, entity.TransactionExpired, w.sales["tx2"].Status)
	for _, r := range w.reservations {
		assert.Equal(t, entity.ReservationExpired, r.Status)
	}
	assert.Equal(t, int64(10), w.batches["b1"].Quantity, "vencer reservas no toca el stock")

	// Segunda corrida: ya no hay nada vencido
	sum, err = recon.ReservationSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Total)
}

func TestReservationSweep_ContextoCanceladoDetieneElBarrido(t *testing.T) {
	w := &world{
		products: map[string]*entity.Product{"p1": {ID: "p1", Active: true}},
		batches:  map[string]*entity.StockBatch{},
		sales: map[string]*entity.Transaction{
			"tx1": {ID: "tx1", Status: entity.TransactionPending},
		},
		reservations: []*entity.Reservation{
			{ID: "r1", TransactionID: "tx1", ProductID: "p1", BatchID: "b1", Quantity: 1,
				Status: entity.ReservationActive, ExpiresAt: *vencido(1)},
		},
	}
	recon := newFixture(w)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := recon.ReservationSweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
