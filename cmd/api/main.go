package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/PuntoVenta-api/internal/application/auth"
	appinventory "github.com/jhoicas/PuntoVenta-api/internal/application/inventory"
	"github.com/jhoicas/PuntoVenta-api/internal/application/reconciler"
	"github.com/jhoicas/PuntoVenta-api/internal/application/reservation"
	apptransaction "github.com/jhoicas/PuntoVenta-api/internal/application/transaction"
	"github.com/jhoicas/PuntoVenta-api/internal/application/usecase"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/postgres"
	"github.com/jhoicas/PuntoVenta-api/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/PuntoVenta-api/internal/interfaces/http"
	"github.com/jhoicas/PuntoVenta-api/pkg/config"
	"github.com/jhoicas/PuntoVenta-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	batchRepo := postgres.NewStockBatchRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledgerUC := appinventory.NewLedgerUseCase(txRunner, productRepo, batchRepo, ledgerRepo)
	reservations := reservation.NewManager(reservationRepo, batchRepo, ledgerUC)
	transactionUC := apptransaction.NewUseCase(
		txRunner, productRepo, customerRepo, transactionRepo, reservations,
		apptransaction.Config{
			HoldWindowHours: cfg.POS.HoldWindowHours,
			InvoicePrefix:   cfg.POS.InvoicePrefix,
		},
	)

	productUC := usecase.NewProductUseCase(productRepo, categoryRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Barridos de expiración: lotes vencidos y reservas cuya ventana terminó.
	recon := reconciler.New(ledgerUC, transactionUC, reservations, log, cfg.POS.SweepItemDelay)
	sched := scheduler.New(log)
	sched.Register(scheduler.Job{
		Name:       "stock-sweep",
		Interval:   cfg.POS.StockSweepInterval,
		RunAtStart: true,
		Run: func(ctx context.Context) error {
			sum, err := recon.StockSweep(ctx)
			if err != nil {
				return err
			}
			log.Info().Int("processed", sum.Processed).Int("total", sum.Total).Msg("barrido de lotes vencidos")
			return nil
		},
	})
	sched.Register(scheduler.Job{
		Name:       "reservation-sweep",
		Interval:   cfg.POS.ReservationSweepInterval,
		RunAtStart: true,
		Run: func(ctx context.Context) error {
			sum, err := recon.ReservationSweep(ctx)
			if err != nil {
				return err
			}
			log.Info().Int("processed", sum.Processed).Int("total", sum.Total).Msg("barrido de reservas vencidas")
			return nil
		},
	})
	sched.Start(ctx)
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PuntoVenta API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:     productUC,
		CategoryUC:    categoryUC,
		CustomerUC:    customerUC,
		LedgerUC:      ledgerUC,
		Reservations:  reservations,
		TransactionUC: transactionUC,
		AuthUC:        authUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
