package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// LedgerUseCase es la única puerta de entrada a las filas de stocks: aplica
// movimientos (IN, OUT, SALE, ADJUSTMENT, EXPIRED, RETURN) con bloqueo de
// fila (SELECT FOR UPDATE) y escribe siempre una entrada del libro con la
// foto antes/después, todo dentro de una transacción.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	batchRepo   repository.StockBatchRepository // lecturas fuera de transacción
	ledgerRepo  repository.LedgerRepository     // lecturas fuera de transacción
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	batchRepo repository.StockBatchRepository,
	ledgerRepo repository.LedgerRepository,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		batchRepo:   batchRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// MovementInput entrada para aplicar un movimiento de stock.
// PurchasePrice, SellingPrice y ExpiresAt solo se usan si el movimiento crea el lote.
type MovementInput struct {
	ProductID     string
	BatchCode     string // vacío = lote por defecto
	Type          string
	Quantity      int64 // positivo; para ADJUSTMENT es la cantidad absoluta final; EXPIRED lo ignora
	PurchasePrice *decimal.Decimal
	SellingPrice  *decimal.Decimal
	ExpiresAt     *time.Time
	Reference     string
	Notes         string
	ActorID       string
}

// MovementResult foto del lote antes y después, más la entrada del libro escrita.
type MovementResult struct {
	Before int64
	After  int64
	Batch  *entity.StockBatch
	Entry  *entity.LedgerEntry
}

// RegisterMovement valida el movimiento, verifica que el producto exista y
// esté activo, y lo aplica dentro de una transacción (Commit o Rollback).
func (uc *LedgerUseCase) RegisterMovement(ctx context.Context, input MovementInput) (*MovementResult, error) {
	if !entity.ValidMovementKind(input.Type) {
		return nil, domain.ErrInvalidMovementKind
	}
	if input.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Type != entity.MovementEXPIRED && input.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var result *MovementResult
	err = uc.txRunner.Run(ctx, func(
		batchRepo repository.StockBatchRepository,
		ledgerRepo repository.LedgerRepository,
	) error {
		var applyErr error
		result, applyErr = uc.ApplyMovementInTx(batchRepo, ledgerRepo, input, now)
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyMovementInTx aplica un movimiento usando los repositorios del caller
// (misma transacción): bloquea la fila del lote, calcula la nueva cantidad
// según el tipo y escribe exactamente una entrada del libro con antes/después.
// Si el lote no existe, se crea con cantidad 0 antes de aplicar la regla (las
// salidas contra un lote inexistente fallan con stock insuficiente).
func (uc *LedgerUseCase) ApplyMovementInTx(
	batchRepo repository.StockBatchRepository,
	ledgerRepo repository.LedgerRepository,
	input MovementInput,
	now time.Time,
) (*MovementResult, error) {
	// Bloquea la fila del lote (SELECT FOR UPDATE) durante todo el read-modify-write
	batch, err := batchRepo.GetByProductAndCodeForUpdate(input.ProductID, input.BatchCode)
	if err != nil {
		return nil, err
	}
	created := false
	if batch == nil {
		switch input.Type {
		case entity.MovementOUT, entity.MovementSALE, entity.MovementEXPIRED:
			return nil, &domain.InsufficientStockError{
				ProductID: input.ProductID,
				Requested: input.Quantity,
				Available: 0,
			}
		}
		batch = &entity.StockBatch{
			ID:        uuid.New().String(),
			ProductID: input.ProductID,
			BatchCode: input.BatchCode,
			Quantity:  0,
			ExpiresAt: input.ExpiresAt,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if input.PurchasePrice != nil {
			batch.PurchasePrice = *input.PurchasePrice
		}
		if input.SellingPrice != nil {
			batch.SellingPrice = *input.SellingPrice
		}
		created = true
	}

	before := batch.Quantity
	var after int64
	switch input.Type {
	case entity.MovementIN, entity.MovementRETURN:
		after = before + input.Quantity
	case entity.MovementOUT, entity.MovementSALE:
		if before < input.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID: input.ProductID,
				Requested: input.Quantity,
				Available: before,
			}
		}
		after = before - input.Quantity
	case entity.MovementADJUSTMENT:
		after = input.Quantity
	case entity.MovementEXPIRED:
		after = 0 // baja total, sin importar la cantidad previa
	default:
		return nil, domain.ErrInvalidMovementKind
	}

	batch.Quantity = after
	batch.UpdatedAt = now
	if created {
		if err := batchRepo.Create(batch); err != nil {
			return nil, err
		}
	} else {
		if err := batchRepo.UpdateQuantity(batch.ID, after, now); err != nil {
			return nil, err
		}
	}

	entry := &entity.LedgerEntry{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		BatchCode:      batch.BatchCode,
		Type:           input.Type,
		Quantity:       after - before,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reference:      input.Reference,
		Notes:          input.Notes,
		CreatedBy:      input.ActorID,
		CreatedAt:      now,
	}
	if err := ledgerRepo.Create(entry); err != nil {
		return nil, err
	}

	return &MovementResult{Before: before, After: after, Batch: batch, Entry: entry}, nil
}

// QueryStock consulta lotes con el filtro estructurado (producto, código de
// lote, búsqueda por nombre, stock bajo, vence-en-N-días).
func (uc *LedgerUseCase) QueryStock(ctx context.Context, filter repository.StockFilter) ([]*entity.StockBatch, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return uc.batchRepo.Search(filter)
}

// ListExpiredBatches pagina los lotes vencidos con stock positivo, los más
// urgentes primero. Reconsultar tras procesar una página hace el recorrido
// reiniciable: los lotes ya dados de baja salen del predicado.
func (uc *LedgerUseCase) ListExpiredBatches(asOf time.Time, limit, offset int) ([]*entity.StockBatch, error) {
	return uc.batchRepo.ListExpired(asOf, limit, offset)
}

// ListMovements lista el libro de inventario de un producto en un rango de fechas.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return uc.ledgerRepo.ListByProduct(productID, from, to, limit, offset)
}

// ListMovementsByReference lista los movimientos originados por una venta.
func (uc *LedgerUseCase) ListMovementsByReference(ctx context.Context, reference string) ([]*entity.LedgerEntry, error) {
	return uc.ledgerRepo.ListByReference(reference)
}
