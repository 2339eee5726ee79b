package inventory_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func (f *fakeProductRepo) Create(p *entity.Product) error { f.products[p.ID] = p; return nil }
func (f *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return f.products[id], nil
}
func (f *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range f.products {
		if p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}
func (f *fakeProductRepo) Update(p *entity.Product) error { f.products[p.ID] = p; return nil }
func (f *fakeProductRepo) SetActive(id string, active bool) error {
	if p, ok := f.products[id]; ok {
		p.Active = active
	}
	return nil
}
func (f *fakeProductRepo) List(repository.ProductFilter) ([]*entity.Product, error) {
	return nil, nil
}

type fakeBatchRepo struct {
	batches map[string]*entity.StockBatch
}

func (f *fakeBatchRepo) GetByID(id string) (*entity.StockBatch, error) { return f.batches[id], nil }
func (f *fakeBatchRepo) GetByIDForUpdate(id string) (*entity.StockBatch, error) {
	return f.batches[id], nil
}
func (f *fakeBatchRepo) GetByProductAndCodeForUpdate(productID, batchCode string) (*entity.StockBatch, error) {
	for _, b := range f.batches {
		if b.ProductID == productID && b.BatchCode == batchCode {
			return b, nil
		}
	}
	return nil, nil
}
func (f *fakeBatchRepo) ListByProductForUpdate(productID string) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	for _, b := range f.batches {
		if b.ProductID == productID && b.Quantity > 0 {
			out = append(out, b)
		}
	}
	sortBatches(out)
	return out, nil
}
func (f *fakeBatchRepo) ListByProduct(productID string) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	for _, b := range f.batches {
		if b.ProductID == productID {
			out = append(out, b)
		}
	}
	sortBatches(out)
	return out, nil
}
func (f *fakeBatchRepo) Create(b *entity.StockBatch) error { f.batches[b.ID] = b; return nil }
func (f *fakeBatchRepo) UpdateQuantity(id string, quantity int64, updatedAt time.Time) error {
	b, ok := f.batches[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Quantity = quantity
	b.UpdatedAt = updatedAt
	return nil
}
func (f *fakeBatchRepo) ListExpired(asOf time.Time, limit, offset int) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	for _, b := range f.batches {
		if b.ExpiresAt != nil && b.ExpiresAt.Before(asOf) && b.Quantity > 0 {
			out = append(out, b)
		}
	}
	sortBatches(out)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
func (f *fakeBatchRepo) Search(repository.StockFilter) ([]*entity.StockBatch, error) {
	return nil, nil
}

func sortBatches(bs []*entity.StockBatch) {
	sort.SliceStable(bs, func(i, j int) bool {
		a, b := bs[i], bs[j]
		switch {
		case a.ExpiresAt == nil && b.ExpiresAt == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.ExpiresAt == nil:
			return false
		case b.ExpiresAt == nil:
			return true
		case !a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.ExpiresAt.Before(*b.ExpiresAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

type fakeLedgerRepo struct {
	entries []*entity.LedgerEntry
}

func (f *fakeLedgerRepo) Create(e *entity.LedgerEntry) error {
	f.entries = append(f.entries, e)
	return nil
}
func (f *fakeLedgerRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range f.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	return out, nil
}
func (f *fakeLedgerRepo) ListByReference(reference string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range f.entries {
		if e.Reference == reference {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeTxRunner ejecuta el callback directamente sobre los fakes. Si el
// callback falla simula el rollback restaurando el estado previo.
type fakeTxRunner struct {
	batches *fakeBatchRepo
	ledger  *fakeLedgerRepo
}

func (f *fakeTxRunner) Run(ctx context.Context, fn func(
	batchRepo repository.StockBatchRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	backupBatches := snapshotBatches(f.batches.batches)
	backupEntries := len(f.ledger.entries)
	if err := fn(f.batches, f.ledger); err != nil {
		f.batches.batches = backupBatches
		f.ledger.entries = f.ledger.entries[:backupEntries]
		return err
	}
	return nil
}

func snapshotBatches(in map[string]*entity.StockBatch) map[string]*entity.StockBatch {
	out := make(map[string]*entity.StockBatch, len(in))
	for k, v := range in {
		copia := *v
		out[k] = &copia
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const productoLeche = "prod-leche"

func newLedgerFixture(t *testing.T) (*inventory.LedgerUseCase, *fakeBatchRepo, *fakeLedgerRepo) {
	t.Helper()
	products := &fakeProductRepo{products: map[string]*entity.Product{
		productoLeche: {ID: productoLeche, SKU: "LECHE-1L", Name: "Leche entera 1L", Active: true},
		"prod-off":    {ID: "prod-off", SKU: "OFF", Name: "Descontinuado", Active: false},
	}}
	batches := &fakeBatchRepo{batches: map[string]*entity.StockBatch{}}
	ledger := &fakeLedgerRepo{}
	runner := &fakeTxRunner{batches: batches, ledger: ledger}
	return inventory.NewLedgerUseCase(runner, products, batches, ledger), batches, ledger
}

func registrar(t *testing.T, uc *inventory.LedgerUseCase, in inventory.MovementInput) *inventory.MovementResult {
	t.Helper()
	out, err := uc.RegisterMovement(context.Background(), in)
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_INCreaLoteYLibro(t *testing.T) {
	uc, batches, ledger := newLedgerFixture(t)
	precio := decimal.NewFromInt(4500)

	out := registrar(t, uc, inventory.MovementInput{
		ProductID:    productoLeche,
		BatchCode:    "L-01",
		Type:         entity.MovementIN,
		Quantity:     40,
		SellingPrice: &precio,
	})

	assert.Equal(t, int64(0), out.Before)
	assert.Equal(t, int64(40), out.After)
	assert.Len(t, batches.batches, 1)
	require.Len(t, ledger.entries, 1)
	entry := ledger.entries[0]
	assert.Equal(t, entity.MovementIN, entry.Type)
	assert.Equal(t, int64(40), entry.Quantity)
	assert.Equal(t, int64(0), entry.QuantityBefore)
	assert.Equal(t, int64(40), entry.QuantityAfter)
}

func TestRegisterMovement_OUTDescuentaYRegistraDeltaNegativo(t *testing.T) {
	uc, _, ledger := newLedgerFixture(t)
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementIN, Quantity: 40})

	out := registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementOUT, Quantity: 15})

	assert.Equal(t, int64(40), out.Before)
	assert.Equal(t, int64(25), out.After)
	entry := ledger.entries[len(ledger.entries)-1]
	assert.Equal(t, int64(-15), entry.Quantity, "el libro registra el delta con signo")
}

func TestRegisterMovement_OUTSinStockSuficiente(t *testing.T) {
	uc, batches, ledger := newLedgerFixture(t)
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementIN, Quantity: 10})

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInput{
		ProductID: productoLeche, Type: entity.MovementSALE, Quantity: 11,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var detalle *domain.InsufficientStockError
	require.True(t, errors.As(err, &detalle))
	assert.Equal(t, int64(11), detalle.Requested)
	assert.Equal(t, int64(10), detalle.Available)

	// Rollback: ni el lote ni el libro cambian
	for _, b := range batches.batches {
		assert.Equal(t, int64(10), b.Quantity)
	}
	assert.Len(t, ledger.entries, 1, "el movimiento fallido no escribe en el libro")
}

func TestRegisterMovement_OUTContraLoteInexistente(t *testing.T) {
	uc, _, _ := newLedgerFixture(t)

	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInput{
		ProductID: productoLeche, Type: entity.MovementOUT, Quantity: 1,
	})

	var detalle *domain.InsufficientStockError
	require.True(t, errors.As(err, &detalle))
	assert.Equal(t, int64(0), detalle.Available)
}

func TestRegisterMovement_ADJUSTMENTFijaCantidadAbsoluta(t *testing.T) {
	uc, _, ledger := newLedgerFixture(t)
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementIN, Quantity: 40})

	out := registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementADJUSTMENT, Quantity: 7})

	assert.Equal(t, int64(7), out.After, "ADJUSTMENT fija la cantidad, no suma")
	entry := ledger.entries[len(ledger.entries)-1]
	assert.Equal(t, int64(-33), entry.Quantity)
	assert.Equal(t, int64(40), entry.QuantityBefore)
	assert.Equal(t, int64(7), entry.QuantityAfter)
}

func TestRegisterMovement_EXPIREDDejaElLoteEnCero(t *testing.T) {
	uc, _, _ := newLedgerFixture(t)
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, BatchCode: "L-01", Type: entity.MovementIN, Quantity: 23})

	out := registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, BatchCode: "L-01", Type: entity.MovementEXPIRED})

	assert.Equal(t, int64(23), out.Before)
	assert.Equal(t, int64(0), out.After)
}

func TestRegisterMovement_RETURNReingresaUnidades(t *testing.T) {
	uc, _, _ := newLedgerFixture(t)
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementIN, Quantity: 10})
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementOUT, Quantity: 4})

	out := registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementRETURN, Quantity: 2})

	assert.Equal(t, int64(8), out.After)
}

func TestRegisterMovement_ElLibroReconstruyeElStock(t *testing.T) {
	uc, batches, ledger := newLedgerFixture(t)

	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementIN, Quantity: 40})
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementOUT, Quantity: 15})
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementADJUSTMENT, Quantity: 7})
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementRETURN, Quantity: 5})
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementEXPIRED})
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, Type: entity.MovementIN, Quantity: 9})

	// Rejugar el libro desde cero reproduce la cantidad actual del lote:
	// todos los asientos guardan el delta firmado (ADJUSTMENT incluido, como
	// after - before), así la suma acumulada cierra con el stock físico
	require.Len(t, ledger.entries, 6)
	var saldo int64
	for _, e := range ledger.entries {
		assert.Equal(t, saldo, e.QuantityBefore, "cada asiento encadena con el anterior")
		assert.Equal(t, e.QuantityBefore+e.Quantity, e.QuantityAfter)
		saldo += e.Quantity
	}
	assert.Equal(t, int64(9), saldo)
	for _, b := range batches.batches {
		assert.Equal(t, saldo, b.Quantity)
	}
}

func TestRegisterMovement_TipoInvalido(t *testing.T) {
	uc, _, _ := newLedgerFixture(t)
	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInput{
		ProductID: productoLeche, Type: "TRANSFER", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMovementKind)
}

func TestRegisterMovement_CantidadInvalida(t *testing.T) {
	uc, _, _ := newLedgerFixture(t)
	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInput{
		ProductID: productoLeche, Type: entity.MovementIN, Quantity: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterMovement_ProductoInactivo(t *testing.T) {
	uc, _, _ := newLedgerFixture(t)
	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInput{
		ProductID: "prod-off", Type: entity.MovementIN, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterMovement_ProductoDesconocido(t *testing.T) {
	uc, _, _ := newLedgerFixture(t)
	_, err := uc.RegisterMovement(context.Background(), inventory.MovementInput{
		ProductID: "no-existe", Type: entity.MovementIN, Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterMovement_LotesIndependientesPorCodigo(t *testing.T) {
	uc, batches, _ := newLedgerFixture(t)
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, BatchCode: "L-01", Type: entity.MovementIN, Quantity: 10})
	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, BatchCode: "L-02", Type: entity.MovementIN, Quantity: 20})

	registrar(t, uc, inventory.MovementInput{ProductID: productoLeche, BatchCode: "L-02", Type: entity.MovementOUT, Quantity: 5})

	cantidades := map[string]int64{}
	for _, b := range batches.batches {
		cantidades[b.BatchCode] = b.Quantity
	}
	assert.Equal(t, int64(10), cantidades["L-01"], "el movimiento no toca otros lotes")
	assert.Equal(t, int64(15), cantidades["L-02"])
}
