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
	redis "github.com/redis/go-redis/v9"

	"github.com/invorya/pos-api/internal/application/inventory"
	"github.com/invorya/pos-api/internal/application/ports"
	"github.com/invorya/pos-api/internal/application/reporting"
	"github.com/invorya/pos-api/internal/application/sale"
	"github.com/invorya/pos-api/internal/application/shift"
	"github.com/invorya/pos-api/internal/domain/repository"
	infraaudit "github.com/invorya/pos-api/internal/infrastructure/audit"
	"github.com/invorya/pos-api/internal/infrastructure/catalog"
	infraclock "github.com/invorya/pos-api/internal/infrastructure/clock"
	"github.com/invorya/pos-api/internal/infrastructure/loyalty"
	"github.com/invorya/pos-api/internal/infrastructure/memory"
	"github.com/invorya/pos-api/internal/infrastructure/postgres"
	httpRouter "github.com/invorya/pos-api/internal/interfaces/http"
	"github.com/invorya/pos-api/pkg/config"
	"github.com/invorya/pos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	businessClock := infraclock.New(cfg.POS.Timezone, cfg.POS.BusinessDayCutoverHour)

	var (
		balanceRepo   repository.InventoryBalanceRepository
		movementRepo  repository.InventoryMovementRepository
		saleRepo      repository.SaleRepository
		shiftRepo     repository.ShiftRepository
		auditRepo     repository.AuditRepository
		reportRepo    repository.ReportRepository
		invTxRunner   inventory.TxRunner
		saleTxRunner  sale.TxRunner
		catalogSource ports.CatalogProvider
	)

	if cfg.App.Env == "demo" {
		// Modo demo: todo en memoria, sin PostgreSQL ni Redis.
		loc, err := time.LoadLocation(cfg.POS.Timezone)
		if err != nil {
			loc = time.UTC
		}
		store := memory.New(loc)
		balanceRepo = store.Balances()
		movementRepo = store.Movements()
		saleRepo = store.Sales()
		shiftRepo = store.Shifts()
		auditRepo = store.Audits()
		reportRepo = store.Reports()
		invTxRunner = store
		saleTxRunner = store
		catalogSource = catalog.NewStaticProvider()
		log.Warn().Msg("modo demo: almacenamiento en memoria, los datos se pierden al apagar")
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		balanceRepo = postgres.NewInventoryBalanceRepository(pool)
		movementRepo = postgres.NewInventoryMovementRepository(pool)
		saleRepo = postgres.NewSaleRepository(pool)
		shiftRepo = postgres.NewShiftRepository(pool)
		auditRepo = postgres.NewAuditRepository(pool)
		reportRepo = postgres.NewReportRepository(pool, cfg.POS.Timezone)
		txRunner := postgres.NewTxRunner(pool)
		invTxRunner = txRunner
		saleTxRunner = txRunner

		provider := catalog.NewPostgresProvider(pool)
		if cfg.Redis.Addr != "" {
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err := client.Ping(ctx).Err(); err != nil {
				log.Fatal().Err(err).Msg("conexión a Redis")
			}
			defer client.Close()
			ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
			catalogSource = catalog.NewCachedProvider(provider, client, ttl, log)
		} else {
			catalogSource = provider
		}
	}

	auditLogger := infraaudit.NewRepositoryLogger(auditRepo)

	var pointsReverser ports.PointsReverser = loyalty.Noop{}
	if cfg.Loyalty.BaseURL != "" {
		timeout := time.Duration(cfg.Loyalty.TimeoutSeconds) * time.Second
		pointsReverser = loyalty.NewClient(cfg.Loyalty.BaseURL, timeout, log)
	}

	ledgerUC := inventory.NewLedgerUseCase(invTxRunner, balanceRepo, movementRepo, businessClock, auditLogger, log)
	saleUC := sale.NewUseCase(
		saleTxRunner, ledgerUC, saleRepo, shiftRepo,
		catalogSource, pointsReverser, businessClock, auditLogger, log,
		sale.Policy{
			ShiftRequired:  cfg.POS.ShiftRequired,
			PointsRate:     cfg.POS.PointsRate,
			ManagerPINHash: cfg.POS.ManagerPINHash,
		},
	)
	shiftUC := shift.NewUseCase(shiftRepo, saleRepo, businessClock, auditLogger, log)
	reportUC := reporting.NewUseCase(reportRepo)

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
		Title:    cfg.App.Name,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SaleUC:      saleUC,
		ShiftUC:     shiftUC,
		InventoryUC: ledgerUC,
		ReportUC:    reportUC,
		JWTSecret:   cfg.JWT.Secret,
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
