// seed puebla la base con datos de demostración: un usuario admin, categorías,
// productos y lotes de stock iniciales (movimientos IN en el libro).
//
// Uso: go run ./cmd/seed
// Lee la misma configuración que la API (DATABASE_URL o DB_*).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	appinventory "github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/domain/entity"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/postgres"
	"github.com/jhoicas/PuntoVenta-api/pkg/config"
)

type seedProduct struct {
	sku       string
	name      string
	category  string
	price     string
	minStock  int64
	quantity  int64
	batchCode string
	expiresIn time.Duration // 0 = sin vencimiento
}

var products = []seedProduct{
	{"LECHE-1L", "Leche entera 1L", "LACTEOS", "4500", 10, 40, "L-2026-01", 20 * 24 * time.Hour},
	{"YOGURT-150", "Yogurt de fresa 150g", "LACTEOS", "2800", 12, 60, "Y-2026-02", 15 * 24 * time.Hour},
	{"PAN-500", "Pan tajado 500g", "PANADERIA", "6200", 8, 25, "P-2026-03", 7 * 24 * time.Hour},
	{"ARROZ-1K", "Arroz blanco 1kg", "GRANOS", "5400", 15, 120, "", 0},
	{"JABON-3P", "Jabón de baño x3", "ASEO", "9800", 5, 35, "", 0},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	batchRepo := postgres.NewStockBatchRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	ledgerUC := appinventory.NewLedgerUseCase(postgres.NewTxRunner(pool), productRepo, batchRepo, ledgerRepo)

	now := time.Now()

	// Admin inicial (idempotente: si ya existe, se conserva)
	if existing, err := userRepo.FindByEmail("admin@puntoventa.local"); err != nil {
		fail("consultar admin: %v", err)
	} else if existing == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			fail("hash de password: %v", err)
		}
		admin := &entity.User{
			ID:           uuid.New().String(),
			Email:        "admin@puntoventa.local",
			PasswordHash: string(hash),
			Name:         "Administrador",
			Role:         entity.RoleAdmin,
			Status:       "active",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := userRepo.Create(admin); err != nil {
			fail("crear admin: %v", err)
		}
		fmt.Println("usuario admin@puntoventa.local creado (password: admin123)")
	}

	categoryIDs := map[string]string{}
	for _, code := range []string{"LACTEOS", "PANADERIA", "GRANOS", "ASEO"} {
		cat, err := categoryRepo.GetByCode(code)
		if err != nil {
			fail("consultar categoría %s: %v", code, err)
		}
		if cat == nil {
			cat = &entity.Category{
				ID:        uuid.New().String(),
				Name:      code,
				Code:      code,
				Status:    "active",
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := categoryRepo.Create(cat); err != nil {
				fail("crear categoría %s: %v", code, err)
			}
		}
		categoryIDs[code] = cat.ID
	}

	for _, sp := range products {
		p, err := productRepo.GetBySKU(sp.sku)
		if err != nil {
			fail("consultar producto %s: %v", sp.sku, err)
		}
		if p != nil {
			continue
		}
		price, err := decimal.NewFromString(sp.price)
		if err != nil {
			fail("precio inválido %s: %v", sp.price, err)
		}
		p = &entity.Product{
			ID:          uuid.New().String(),
			CategoryID:  categoryIDs[sp.category],
			SKU:         sp.sku,
			Name:        sp.name,
			UnitMeasure: "unidad",
			Price:       price,
			MinStock:    sp.minStock,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := productRepo.Create(p); err != nil {
			fail("crear producto %s: %v", sp.sku, err)
		}

		purchase := price.Mul(decimal.NewFromFloat(0.7)).Round(2)
		input := appinventory.MovementInput{
			ProductID:     p.ID,
			BatchCode:     sp.batchCode,
			Type:          entity.MovementIN,
			Quantity:      sp.quantity,
			PurchasePrice: &purchase,
			SellingPrice:  &price,
			Notes:         "carga inicial",
		}
		if sp.expiresIn > 0 {
			exp := now.Add(sp.expiresIn)
			input.ExpiresAt = &exp
		}
		if _, err := ledgerUC.RegisterMovement(ctx, input); err != nil {
			fail("stock inicial %s: %v", sp.sku, err)
		}
		fmt.Printf("producto %s creado con %d unidades\n", sp.sku, sp.quantity)
	}

	fmt.Println("seed completado")
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
