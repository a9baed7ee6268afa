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
	"github.com/joho/godotenv"

	"github.com/Gonmore/farmasnt-sub004/internal/application/catalog"
	"github.com/Gonmore/farmasnt-sub004/internal/application/sales"
	"github.com/Gonmore/farmasnt-sub004/internal/application/stock"
	infrapdf "github.com/Gonmore/farmasnt-sub004/internal/infrastructure/pdf"
	"github.com/Gonmore/farmasnt-sub004/internal/infrastructure/postgres"
	"github.com/Gonmore/farmasnt-sub004/internal/infrastructure/realtime"
	httpRouter "github.com/Gonmore/farmasnt-sub004/internal/interfaces/http"
	"github.com/Gonmore/farmasnt-sub004/pkg/config"
	"github.com/Gonmore/farmasnt-sub004/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
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

	productRepo := postgres.NewProductRepository(pool)
	presentationRepo := postgres.NewPresentationRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	quoteRepo := postgres.NewQuoteRepository(pool)
	orderRepo := postgres.NewSalesOrderRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	requestRepo := postgres.NewStockRequestRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Canal realtime: sin REDIS_URL los eventos se descartan.
	var events interface {
		Publish(ctx context.Context, tenantID, event string, payload any)
	} = realtime.NopPublisher{}
	if cfg.Redis.URL != "" {
		rdb, err := realtime.NewClient(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		events = realtime.NewRedisPublisher(rdb, log.Component("realtime"))
	}

	productUC := catalog.NewProductUseCase(productRepo)
	presentationUC := catalog.NewPresentationUseCase(txRunner, productRepo, presentationRepo)
	customerUC := catalog.NewCustomerUseCase(customerRepo)

	quoteUC := sales.NewQuoteUseCase(txRunner, quoteRepo, customerRepo, log)
	processUC := sales.NewProcessQuoteUseCase(txRunner, events, log)
	orderUC := sales.NewOrderUseCase(txRunner, orderRepo, reservationRepo, events, log)
	shortages := sales.NewShortageCalculator(productRepo, presentationRepo, balanceRepo)
	pdfUC := sales.NewPDFUseCase(quoteRepo, customerRepo, productRepo, infrapdf.NewMarotoQuoteGenerator())

	entryUC := stock.NewEntryUseCase(txRunner, events, log)
	requestUC := stock.NewRequestUseCase(txRunner, requestRepo, events, log)
	bulkUC := stock.NewBulkUseCase(txRunner, events, log)
	batchUC := stock.NewBatchUseCase(txRunner, batchRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "FarmaSNT API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:      productUC,
		PresentationUC: presentationUC,
		CustomerUC:     customerUC,
		QuoteUC:        quoteUC,
		ProcessUC:      processUC,
		OrderUC:        orderUC,
		PDFUC:          pdfUC,
		Shortages:      shortages,
		EntryUC:        entryUC,
		RequestUC:      requestUC,
		BulkUC:         bulkUC,
		BatchUC:        batchUC,
		JWTSecret:      cfg.JWT.Secret,
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
