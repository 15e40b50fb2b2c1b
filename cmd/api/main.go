package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Facturo-api/internal/application/auth"
	"github.com/jhoicas/Facturo-api/internal/application/billing"
	"github.com/jhoicas/Facturo-api/internal/application/expense"
	"github.com/jhoicas/Facturo-api/internal/application/notification"
	"github.com/jhoicas/Facturo-api/internal/application/storage"
	"github.com/jhoicas/Facturo-api/internal/application/usecase"
	"github.com/jhoicas/Facturo-api/internal/infrastructure/authz"
	"github.com/jhoicas/Facturo-api/internal/infrastructure/email"
	"github.com/jhoicas/Facturo-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Facturo-api/internal/infrastructure/objectstore"
	"github.com/jhoicas/Facturo-api/internal/infrastructure/ocr"
	infrapdf "github.com/jhoicas/Facturo-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Facturo-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Facturo-api/internal/infrastructure/redis"
	"github.com/jhoicas/Facturo-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/Facturo-api/internal/infrastructure/xmlexport"
	httpRouter "github.com/jhoicas/Facturo-api/internal/interfaces/http"
	"github.com/jhoicas/Facturo-api/pkg/config"
	"github.com/jhoicas/Facturo-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: login y signup fallarán hasta configurarlo")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.RunMigrations {
		if err := postgres.RunMigrations(pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	tenantRepo := postgres.NewTenantRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	fileRepo := postgres.NewStorageFileRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	m := metrics.New()

	// Email: SMTP si está configurado; si no, solo se registran en el log.
	var sender notification.Sender
	if cfg.SMTP.Enabled() {
		sender = email.NewSMTPSender(email.Config{
			Host:          cfg.SMTP.Host,
			Port:          cfg.SMTP.Port,
			Username:      cfg.SMTP.Username,
			Password:      cfg.SMTP.Password,
			From:          cfg.SMTP.From,
			RatePerSecond: cfg.SMTP.RatePerSecond,
		}, log.Component("email"))
	} else {
		log.Warn().Msg("SMTP_HOST vacío: los emails solo se registran en el log")
		sender = email.NewLogSender(log.Component("email"))
	}
	renderer, err := notification.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("plantillas de email")
	}
	notifier := notification.NewService(renderer, sender, cfg.SMTP.From, log.Component("notification"))
	notifier.OnSent(m.ObserveEmail)

	var store storage.ObjectStore
	if cfg.Storage.Enabled() {
		supa, err := objectstore.NewSupabaseStore(objectstore.SupabaseConfig{
			URL:        cfg.Storage.URL,
			ServiceKey: cfg.Storage.ServiceKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("almacenamiento Supabase")
		}
		store = supa
	} else {
		log.Warn().Msg("SUPABASE_URL vacío: archivos en memoria (se pierden al reiniciar)")
		store = objectstore.NewMemoryStore()
	}
	maxUpload := int64(cfg.Storage.MaxUploadMB) << 20
	fileUC := storage.NewFileUseCase(store, fileRepo, maxUpload, log.Component("storage"))

	// Redis opcional: lock del scheduler y caché de PDFs.
	var (
		pdfCache billing.PDFCache
		locker   scheduler.Locker
	)
	if cfg.Redis.URL != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, se continúa sin caché ni lock")
		} else {
			defer rdb.Close()
			pdfCache = infraredis.NewPDFCache(rdb, "facturo:pdf:")
			locker = infraredis.NewLocker(rdb)
		}
	}

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		log.Fatal().Err(err).Msg("políticas de permisos")
	}

	pdfUC := billing.NewPDFUseCase(invoiceRepo, tenantRepo, infrapdf.NewMarotoPDFGenerator(), pdfCache, log.Component("pdf"))
	invoiceUC := billing.NewInvoiceUseCase(
		txRunner, invoiceRepo, customerRepo, productRepo, tenantRepo,
		pdfUC, notifier, cfg.App.PublicURL, log.Component("invoices"),
	)
	exportUC := billing.NewExportUseCase(invoiceRepo, tenantRepo, xmlexport.NewExporter(), fileUC)
	overdueUC := billing.NewOverdueUseCase(invoiceRepo, tenantRepo, notifier, cfg.App.PublicURL, log.Component("overdue"))

	authUC := auth.NewAuthUseCase(txRunner, userRepo, tenantRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	tenantUC := usecase.NewTenantUseCase(tenantRepo, userRepo, notifier, cfg.App.PublicURL, log.Component("tenant"))
	expenseUC := expense.NewUseCase(expenseRepo, fileUC, ocr.New(cfg.OCR.Languages), log.Component("expenses"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    int(maxUpload) + 1<<20,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.PublicURL,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(m.Middleware())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Facturo API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", m.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		TenantUC:    tenantUC,
		CustomerUC:  billing.NewCustomerUseCase(customerRepo),
		ProductUC:   usecase.NewProductUseCase(productRepo),
		InvoiceUC:   invoiceUC,
		InvoicePDF:  pdfUC,
		ExportUC:    exportUC,
		ExpenseUC:   expenseUC,
		FileUC:      fileUC,
		Permissions: enforcer,
		JWTSecret:   cfg.JWT.Secret,
	})

	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs, err = scheduler.New(cfg.Scheduler.OverdueSpec, overdueUC, locker, m, log.Component("scheduler"))
		if err != nil {
			log.Fatal().Err(err).Msg("scheduler")
		}
		jobs.Start()
		log.Info().Str("spec", cfg.Scheduler.OverdueSpec).Msg("tarea de facturas vencidas programada")
	}

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

	if jobs != nil {
		jobs.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
