package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/PuntoVenta-api/internal/application/dto"
	"github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/application/reservation"
	"github.com/jhoicas/PuntoVenta-api/internal/domain"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP de movimientos, stock y
// disponibilidad (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
	holds  *reservation.Manager
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, holds *reservation.Manager) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, holds: holds}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  IN y RETURN suman; OUT y SALE restan (falla con 409 si no alcanza);
//               ADJUSTMENT fija la cantidad absoluta; EXPIRED la deja en cero.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type, quantity, batch_code"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.ledger.RegisterMovement(c.Context(), inventory.MovementInput{
		ProductID:     in.ProductID,
		BatchCode:     in.BatchCode,
		Type:          in.Type,
		Quantity:      in.Quantity,
		PurchasePrice: in.PurchasePrice,
		SellingPrice:  in.SellingPrice,
		ExpiresAt:     in.ExpiresAt,
		Reference:     in.Reference,
		Notes:         in.Notes,
		ActorID:       GetUserID(c),
	})
	if err != nil {
		return mapMovementError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"movement":        toLedgerEntryResponse(out.Entry),
		"quantity_before": out.Before,
		"quantity_after":  out.After,
	})
}

func mapMovementError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidMovementKind), errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado o inactivo"})
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrOutOfStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// QueryStock godoc
// @Summary      Consultar lotes de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        batch_code  query  string  false  "Código de lote (vacío = lote por defecto)"
// @Param        search      query  string  false  "Búsqueda por nombre de producto"
// @Param        low_stock   query  bool    false  "Solo lotes bajo el stock mínimo"
// @Param        threshold   query  int     false  "Umbral explícito para stock bajo"
// @Param        expiring_days  query  int  false  "Lotes que vencen en N días"
// @Success      200  {array}  dto.StockBatchResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) QueryStock(c *fiber.Ctx) error {
	filter := repository.StockFilter{
		ProductID:  c.Query("product_id"),
		NameSearch: c.Query("search"),
		LowStock:   c.QueryBool("low_stock"),
		Limit:      c.QueryInt("limit", 50),
		Offset:     c.QueryInt("offset", 0),
	}
	if code, ok := c.Queries()["batch_code"]; ok {
		filter.BatchCode = &code
	}
	if th := c.QueryInt("threshold", 0); th > 0 {
		v := int64(th)
		filter.LowStockThreshold = &v
		filter.LowStock = true
	}
	if d := c.QueryInt("expiring_days", 0); d > 0 {
		filter.ExpiringWithinDays = &d
	}
	batches, err := h.ledger.QueryStock(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.StockBatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, toStockBatchResponse(b))
	}
	return c.JSON(fiber.Map{"total": len(out), "stock": out})
}

// GetAvailability godoc
// @Summary      Disponibilidad de un producto
// @Description  Stock total, reservado y disponible por lote. Lectura
//               informativa: la verificación autoritativa ocurre al crear la venta.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.AvailabilityResponse
// @Router       /api/inventory/availability/{product_id} [get]
func (h *InventoryHandler) GetAvailability(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "product_id es requerido"})
	}
	av, err := h.holds.GetAvailability(c.Context(), productID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.AvailabilityResponse{
		ProductID:     av.ProductID,
		TotalStock:    av.TotalStock,
		TotalReserved: av.TotalReserved,
		PerBatch:      make([]dto.BatchAvailabilityResponse, 0, len(av.PerBatch)),
	}
	for _, pb := range av.PerBatch {
		out.PerBatch = append(out.PerBatch, dto.BatchAvailabilityResponse{
			BatchID:   pb.Batch.ID,
			BatchCode: pb.Batch.BatchCode,
			Quantity:  pb.Batch.Quantity,
			Reserved:  pb.Reserved,
			Available: pb.Available,
			ExpiresAt: pb.Batch.ExpiresAt,
		})
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Libro de inventario de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path   string  true   "ID del producto"
// @Param        from        query  string  false  "Fecha inicial (RFC3339)"
// @Param        to          query  string  false  "Fecha final (RFC3339)"
// @Success      200  {array}  dto.LedgerEntryResponse
// @Router       /api/inventory/ledger/{product_id} [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "product_id es requerido"})
	}
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		to = &t
	}
	entries, err := h.ledger.ListMovements(c.Context(), productID, from, to, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerEntryResponse(e))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// ListMovementsByReference godoc
// @Summary      Movimientos originados por una venta
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        reference  path  string  true  "ID de la venta de referencia"
// @Success      200  {array}  dto.LedgerEntryResponse
// @Router       /api/inventory/ledger/reference/{reference} [get]
func (h *InventoryHandler) ListMovementsByReference(c *fiber.Ctx) error {
	reference := c.Params("reference")
	if reference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "reference es requerido"})
	}
	entries, err := h.ledger.ListMovementsByReference(c.Context(), reference)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerEntryResponse(e))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

func toStockBatchResponse(b *entity.StockBatch) dto.StockBatchResponse {
	return dto.StockBatchResponse{
		ID:            b.ID,
		ProductID:     b.ProductID,
		BatchCode:     b.BatchCode,
		Quantity:      b.Quantity,
		PurchasePrice: b.PurchasePrice,
		SellingPrice:  b.SellingPrice,
		ExpiresAt:     b.ExpiresAt,
		CreatedAt:     b.CreatedAt,
	}
}

func toLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:             e.ID,
		ProductID:      e.ProductID,
		BatchCode:      e.BatchCode,
		Type:           e.Type,
		Quantity:       e.Quantity,
		QuantityBefore: e.QuantityBefore,
		QuantityAfter:  e.QuantityAfter,
		Reference:      e.Reference,
		Notes:          e.Notes,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
	}
}
