package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/PuntoVenta-api/internal/application/auth"
	"github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/application/reservation"
	"github.com/jhoicas/PuntoVenta-api/internal/application/transaction"
	"github.com/jhoicas/PuntoVenta-api/internal/application/usecase"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	CategoryUC    *usecase.CategoryUseCase
	CustomerUC    *usecase.CustomerUseCase
	LedgerUC      *inventory.LedgerUseCase
	Reservations  *reservation.Manager
	TransactionUC *transaction.UseCase
	AuthUC        *auth.AuthUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo: escritura solo admin y bodeguero, lectura cualquier rol
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), productHandler.Create)
	products.Put("/:id", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), productHandler.Update)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)

	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Inventario: movimientos manuales solo admin y bodeguero
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC, deps.Reservations)
	invGroup.Post("/movements", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), inventoryHandler.RegisterMovement)
	invGroup.Get("/stock", inventoryHandler.QueryStock)
	invGroup.Get("/availability/:product_id", inventoryHandler.GetAvailability)
	invGroup.Get("/ledger/reference/:reference", inventoryHandler.ListMovementsByReference)
	invGroup.Get("/ledger/:product_id", inventoryHandler.ListMovements)

	// Ventas: la caja la operan admin y cajero, lectura cualquier rol
	txGroup := protected.Group("/transactions")
	transactionHandler := NewTransactionHandler(deps.TransactionUC)
	txGroup.Post("/", RequireRole(entity.RoleAdmin, entity.RoleCajero), transactionHandler.Create)
	txGroup.Post("/:id/confirm", RequireRole(entity.RoleAdmin, entity.RoleCajero), transactionHandler.ConfirmPayment)
	txGroup.Post("/:id/cancel", RequireRole(entity.RoleAdmin, entity.RoleCajero), transactionHandler.Cancel)
	txGroup.Get("/", transactionHandler.List)
	txGroup.Get("/:id", transactionHandler.GetByID)
}
