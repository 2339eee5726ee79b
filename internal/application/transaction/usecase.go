package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/application/reservation"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// Config parámetros del orquestador de ventas.
type Config struct {
	HoldWindowHours int    // ventana de retención para métodos de pago no-efectivo
	InvoicePrefix   string // prefijo del consecutivo de factura
}

// UseCase orquesta el ciclo de vida de la venta: crear (validar, asignar,
// retener), confirmar pago (descontar stock) y anular (liberar reservas),
// aplicando la máquina de estados PENDING -> COMPLETED | CANCELLED | EXPIRED.
type UseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	txRepo       repository.TransactionRepository // lecturas fuera de transacción
	reservations *reservation.Manager
	cfg          Config
}

// NewUseCase construye el orquestador.
func NewUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	txRepo repository.TransactionRepository,
	reservations *reservation.Manager,
	cfg Config,
) *UseCase {
	if cfg.HoldWindowHours <= 0 {
		cfg.HoldWindowHours = 24
	}
	if cfg.InvoicePrefix == "" {
		cfg.InvoicePrefix = "POS"
	}
	return &UseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		txRepo:       txRepo,
		reservations: reservations,
		cfg:          cfg,
	}
}

// Create crea una venta PENDING: asigna cada línea entre lotes (FIFO por
// vencimiento), toma el precio unitario del primer lote asignado, calcula
// totales y vuelto, numera la factura con el consecutivo del día y persiste
// cabecera + líneas + reservas en una sola transacción. Cualquier falla
// aborta la operación completa sin estado parcial.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	if !entity.ValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}
	if in.Discount.IsNegative() || in.PaymentAmount.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	// Validar productos fuera de la tx (solo lectura)
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.Active {
			return nil, domain.ErrNotFound
		}
	}
	if in.CustomerID != "" {
		customer, err := uc.customerRepo.GetByID(in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	txID := uuid.New().String()
	holdUntil := now.Add(time.Duration(uc.cfg.HoldWindowHours) * time.Hour)
	var sale *entity.Transaction

	err := uc.txRunner.RunOrder(ctx, func(
		batchRepo repository.StockBatchRepository,
		ledgerRepo repository.LedgerRepository,
		resRepo repository.ReservationRepository,
		txRepo repository.TransactionRepository,
		seqRepo repository.SequenceRepository,
	) error {
		// 1) Asignar cada línea entre lotes; bloquea los lotes del producto,
		// así dos ventas concurrentes no pueden retener las mismas unidades.
		// Las reservas recién se insertan en el paso 5 (la FK exige la venta
		// primero), por eso las asignaciones de líneas previas se descuentan
		// en memoria: si el mismo producto aparece en dos líneas, la segunda
		// asignación ya ve lo que tomó la primera.
		var items []*entity.TransactionItem
		var allocated []reservation.Allocation
		pending := map[string]int64{}
		subtotal := decimal.Zero
		for _, item := range in.Items {
			allocs, batches, err := uc.reservations.AllocateInTx(batchRepo, resRepo, item.ProductID, item.Quantity, item.BatchID, pending)
			if err != nil {
				return err
			}
			// Precio fijado al primer lote asignado (el que vence antes),
			// aunque la línea cruce varios lotes del producto.
			unitPrice := batches[allocs[0].BatchID].SellingPrice
			for _, a := range allocs {
				lineSubtotal := unitPrice.Mul(decimal.NewFromInt(a.Quantity))
				items = append(items, &entity.TransactionItem{
					ID:            uuid.New().String(),
					TransactionID: txID,
					ProductID:     a.ProductID,
					BatchID:       a.BatchID,
					Quantity:      a.Quantity,
					UnitPrice:     unitPrice,
					Subtotal:      lineSubtotal,
				})
				subtotal = subtotal.Add(lineSubtotal)
				pending[a.BatchID] += a.Quantity
			}
			allocated = append(allocated, allocs...)
		}

		// 2) Totales y regla de pago
		total := subtotal.Sub(in.Discount)
		if total.IsNegative() {
			return domain.ErrInvalidInput
		}
		payment := in.PaymentAmount
		change := decimal.Zero
		var expiresAt *time.Time
		if in.PaymentMethod == entity.PaymentCash {
			if payment.LessThan(total) {
				return domain.ErrInsufficientPayment
			}
			change = payment.Sub(total)
		} else {
			// No-efectivo: el monto queda fijado al total y la venta tiene
			// ventana de retención hasta confirmar el pago.
			payment = total
			expiresAt = &holdUntil
		}

		// 3) Consecutivo de factura por día, incrementado atómicamente en BD
		n, err := seqRepo.Next("invoice", now)
		if err != nil {
			return err
		}
		invoiceNumber := fmt.Sprintf("%s-%s-%04d", uc.cfg.InvoicePrefix, now.Format("20060102"), n)

		// 4) Persistir cabecera y líneas
		sale = &entity.Transaction{
			ID:            txID,
			InvoiceNumber: invoiceNumber,
			UserID:        userID,
			CustomerID:    in.CustomerID,
			GuestName:     in.GuestName,
			GuestPhone:    in.GuestPhone,
			Subtotal:      subtotal,
			Discount:      in.Discount,
			Total:         total,
			PaymentMethod: in.PaymentMethod,
			PaymentAmount: payment,
			ChangeAmount:  change,
			Status:        entity.TransactionPending,
			ExpiresAt:     expiresAt,
			Notes:         in.Notes,
			Items:         items,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := txRepo.Create(sale); err != nil {
			return err
		}
		for _, it := range items {
			if err := txRepo.CreateItem(it); err != nil {
				return err
			}
		}

		// 5) Reservas al final: la cabecera ya existe y la FK
		// reservations.transaction_id se satisface dentro de la misma tx.
		if _, err := uc.reservations.HoldInTx(resRepo, txID, allocated, holdUntil, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toResponse(sale), nil
}

// ConfirmPayment confirma el pago de una venta PENDING: convierte sus
// reservas en movimientos OUT del libro y pasa la venta a COMPLETED, todo en
// una transacción.
func (uc *UseCase) ConfirmPayment(ctx context.Context, transactionID, actorID string) (*dto.TransactionResponse, error) {
	var sale *entity.Transaction
	err := uc.txRunner.RunOrder(ctx, func(
		batchRepo repository.StockBatchRepository,
		ledgerRepo repository.LedgerRepository,
		resRepo repository.ReservationRepository,
		txRepo repository.TransactionRepository,
		_ repository.SequenceRepository,
	) error {
		current, err := txRepo.GetByIDForUpdate(transactionID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if !current.CanTransition(entity.TransactionCompleted) {
			return domain.ErrInvalidStateTransition
		}
		if _, err := uc.reservations.ConfirmInTx(batchRepo, ledgerRepo, resRepo, transactionID, actorID, time.Now()); err != nil {
			return err
		}
		now := time.Now()
		if err := txRepo.UpdateStatus(transactionID, entity.TransactionCompleted, now); err != nil {
			return err
		}
		current.Status = entity.TransactionCompleted
		current.UpdatedAt = now
		sale = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.withItems(sale)
}

// Cancel anula una venta PENDING: libera sus reservas como CANCELLED, agrega
// el motivo a las notas y pasa la venta a CANCELLED.
func (uc *UseCase) Cancel(ctx context.Context, transactionID, reason string) (*dto.TransactionResponse, error) {
	var sale *entity.Transaction
	err := uc.txRunner.RunOrder(ctx, func(
		_ repository.StockBatchRepository,
		_ repository.LedgerRepository,
		resRepo repository.ReservationRepository,
		txRepo repository.TransactionRepository,
		_ repository.SequenceRepository,
	) error {
		current, err := txRepo.GetByIDForUpdate(transactionID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if !current.CanTransition(entity.TransactionCancelled) {
			return domain.ErrInvalidStateTransition
		}
		if _, err := uc.reservations.ReleaseInTx(resRepo, transactionID, entity.ReservationCancelled); err != nil {
			return err
		}
		now := time.Now()
		if reason != "" {
			notes := strings.TrimSpace(current.Notes + "\nAnulada: " + reason)
			if err := txRepo.AppendNotes(transactionID, notes, now); err != nil {
				return err
			}
			current.Notes = notes
		}
		if err := txRepo.UpdateStatus(transactionID, entity.TransactionCancelled, now); err != nil {
			return err
		}
		current.Status = entity.TransactionCancelled
		current.UpdatedAt = now
		sale = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.withItems(sale)
}

// Expire vence una venta cuya ventana de retención terminó: libera las
// reservas como EXPIRED y pasa la venta a EXPIRED en la misma transacción.
// Idempotente: sobre una venta ya terminal no hace nada.
func (uc *UseCase) Expire(ctx context.Context, transactionID string) error {
	return uc.txRunner.RunOrder(ctx, func(
		_ repository.StockBatchRepository,
		_ repository.LedgerRepository,
		resRepo repository.ReservationRepository,
		txRepo repository.TransactionRepository,
		_ repository.SequenceRepository,
	) error {
		current, err := txRepo.GetByIDForUpdate(transactionID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if current.Status != entity.TransactionPending {
			// Re-ejecución tras una falla parcial: nada pendiente de vencer
			return nil
		}
		if _, err := uc.reservations.ReleaseInTx(resRepo, transactionID, entity.ReservationExpired); err != nil {
			return err
		}
		return txRepo.UpdateStatus(transactionID, entity.TransactionExpired, time.Now())
	})
}

// GetByID obtiene una venta con sus líneas.
func (uc *UseCase) GetByID(ctx context.Context, transactionID string) (*dto.TransactionResponse, error) {
	sale, err := uc.txRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return uc.withItems(sale)
}

// List lista ventas con el filtro estructurado.
func (uc *UseCase) List(ctx context.Context, filter repository.TransactionFilter) ([]*dto.TransactionResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	sales, err := uc.txRepo.List(filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TransactionResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toResponse(s))
	}
	return out, nil
}

func (uc *UseCase) withItems(sale *entity.Transaction) (*dto.TransactionResponse, error) {
	if len(sale.Items) == 0 {
		items, err := uc.txRepo.GetItems(sale.ID)
		if err != nil {
			return nil, err
		}
		sale.Items = items
	}
	return toResponse(sale), nil
}

func toResponse(t *entity.Transaction) *dto.TransactionResponse {
	resp := &dto.TransactionResponse{
		ID:            t.ID,
		InvoiceNumber: t.InvoiceNumber,
		UserID:        t.UserID,
		CustomerID:    t.CustomerID,
		GuestName:     t.GuestName,
		GuestPhone:    t.GuestPhone,
		Subtotal:      t.Subtotal,
		Discount:      t.Discount,
		Total:         t.Total,
		PaymentMethod: t.PaymentMethod,
		PaymentAmount: t.PaymentAmount,
		ChangeAmount:  t.ChangeAmount,
		Status:        t.Status,
		ExpiresAt:     t.ExpiresAt,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	for _, it := range t.Items {
		resp.Items = append(resp.Items, dto.TransactionItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			BatchID:   it.BatchID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return resp
}
