package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appactivity "github.com/iwaqasmaqbool/gms-sub002/internal/application/activity"
	appcatalog "github.com/iwaqasmaqbool/gms-sub002/internal/application/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/dashboard"
	appfinance "github.com/iwaqasmaqbool/gms-sub002/internal/application/finance"
	appidentity "github.com/iwaqasmaqbool/gms-sub002/internal/application/identity"
	appinventory "github.com/iwaqasmaqbool/gms-sub002/internal/application/inventory"
	appmanufacturing "github.com/iwaqasmaqbool/gms-sub002/internal/application/manufacturing"
	appnotification "github.com/iwaqasmaqbool/gms-sub002/internal/application/notification"
	appreport "github.com/iwaqasmaqbool/gms-sub002/internal/application/report"
	appsales "github.com/iwaqasmaqbool/gms-sub002/internal/application/sales"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/auth"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/cache"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/config"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/event"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/export"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/logger"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/migration"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/persistence"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/realtime"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/scheduler"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/storage"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/telemetry"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/handler"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/middleware"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/router"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/views"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			GMS API
//	@version		1.0
//	@description	JSON endpoints of the garment manufacturing dashboard

//	@contact.name	GMS Support
//	@contact.url	https://github.com/iwaqasmaqbool/gms-sub002

//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting GMS",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Telemetry providers register themselves globally; disabled ones are no-ops
	logs, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = logs.Tee(log)
	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meter, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	// Database with a zap backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	if err := migrateSchema(db, cfg.Database, log); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if err := telemetry.InstrumentDB(db.DB, cfg.Database.DBName, log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}

	// Redis backs sessions, submit tokens and rate limits; nil means in-memory
	redisClient, err := cache.Connect(ctx, cfg.Redis, cache.WithLogger(log), cache.WithInMemoryFallback(!cfg.App.IsProduction()))
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	var revoker auth.SessionRevoker = auth.NewInMemorySessionRevoker()
	if redisClient != nil {
		revoker = auth.NewRedisSessionRevoker(redisClient)
	}
	submitTokens := cache.NewIdempotencyStore(redisClient)
	defer submitTokens.Close()

	limiter, err := middleware.NewLimiter(cfg.HTTP.RateLimit, "gms-rate", redisClient)
	if err != nil {
		log.Fatal("Invalid rate limit", zap.String("rate", cfg.HTTP.RateLimit), zap.Error(err))
	}
	loginLimiter, err := middleware.NewLimiter(cfg.HTTP.LoginRateLimit, "gms-login", redisClient)
	if err != nil {
		log.Fatal("Invalid login rate limit", zap.String("rate", cfg.HTTP.LoginRateLimit), zap.Error(err))
	}

	// Event bus: business metrics and the notification push both listen
	eventBus := event.NewInMemoryEventBus(log)
	businessMetrics, err := telemetry.NewBusinessMetrics(meter.Meter("gms"))
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}
	eventBus.Subscribe(businessMetrics, businessMetrics.EventTypes()...)

	hub := realtime.NewHub(log, realtime.WithCheckOrigin(originChecker(cfg)))
	defer hub.Close()
	eventBus.Subscribe(hub, hub.EventTypes()...)

	// Application services
	repos := persistence.NewGormRepositories(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	userService := appidentity.NewUserService(repos, scope, log)
	authService := appidentity.NewAuthService(repos, scope, auth.NewJWTService(cfg.JWT), revoker, log)
	catalogService := appcatalog.NewCatalogService(repos, scope, log)
	batchService := appmanufacturing.NewBatchService(repos, scope, eventBus, log)
	inventoryService := appinventory.NewInventoryService(repos, scope, eventBus, log)
	saleService := appsales.NewSaleService(repos, scope, eventBus, log)
	financeService := appfinance.NewFinanceService(repos, scope, eventBus, log)
	notificationService := appnotification.NewNotificationService(repos.Notifications(), log)
	activityService := appactivity.NewActivityService(repos.ActivityLogs())
	dashboardService := dashboard.NewDashboardService(repos, financeService, log)

	if _, err := userService.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
		log.Fatal("Failed to create the bootstrap admin", zap.Error(err))
	}

	// Daily low-stock notification for the production roles
	var lowStock *scheduler.DailyTrigger
	if cfg.Alerts.LowStockEnabled {
		daily := scheduler.DefaultDailyConfig()
		if err := daily.ParseClock(cfg.Alerts.LowStockTime); err != nil {
			log.Fatal("Invalid low-stock alert time", zap.Error(err))
		}
		lowStock = scheduler.NewDailyTrigger(daily, appcatalog.NewStockAlertService(repos, scope, eventBus, log), log)
		if err := lowStock.Start(ctx); err != nil {
			log.Fatal("Failed to start low-stock alerts", zap.Error(err))
		}
	}

	// Exports: optional pdf rendering and archive
	var exportOpts []appreport.ExportOption
	if cfg.PDF.Enabled {
		pdf := export.NewPDFRenderer(cfg.PDF, log)
		defer pdf.Close()
		exportOpts = append(exportOpts, appreport.WithPDFRenderer(pdf))
	}
	if cfg.Storage.Enabled {
		archive, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure export archive", zap.Error(err))
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Warn("Export archive bucket unavailable, uploads will be retried per export", zap.Error(err))
		}
		exportOpts = append(exportOpts, appreport.WithArchive(archive))
	}
	exportService := appreport.NewExportService(repos, financeService, log, exportOpts...)

	// HTTP
	middleware.SetupValidator()
	renderer, err := views.New(views.WithReload(cfg.HTTP.TemplateReloadMode))
	if err != nil {
		log.Fatal("Failed to parse templates", zap.Error(err))
	}

	checks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	base := handler.NewBaseHandler(notificationService, exportService.PDFEnabled(), log)
	handlers := router.Handlers{
		Base:          base,
		Auth:          handler.NewAuthHandler(base, authService, cfg.JWT),
		Dashboard:     handler.NewDashboardHandler(base, dashboardService),
		Users:         handler.NewUserHandler(base, userService),
		Catalog:       handler.NewCatalogHandler(base, catalogService, userService),
		Batches:       handler.NewBatchHandler(base, batchService, catalogService),
		Inventory:     handler.NewInventoryHandler(base, inventoryService, catalogService, userService),
		Sales:         handler.NewSaleHandler(base, saleService, catalogService, userService),
		Finance:       handler.NewFinanceHandler(base, financeService, userService),
		Activity:      handler.NewActivityHandler(base, activityService, userService),
		Notifications: handler.NewNotificationHandler(base, notificationService, hub),
		Reports:       handler.NewReportHandler(base, exportService),
		System:        handler.NewSystemHandler(version, checks),
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.JWT.CookieSecure

	engine := router.New(router.Config{
		Logger:      log,
		Renderer:    renderer,
		Metrics:     middleware.NewHTTPMetrics(),
		Tracing:     middleware.TracingConfig{ServiceName: cfg.Telemetry.ServiceName, Enabled: cfg.Telemetry.Enabled},
		Security:    security,
		CORS:        cors,
		MaxBodySize: cfg.HTTP.MaxBodySize,
		Session: middleware.SessionConfig{
			Authenticator: authService,
			CookieName:    cfg.JWT.CookieName,
			Logger:        log,
		},
		Limiter:        limiter,
		LoginLimiter:   loginLimiter,
		SubmitTokens:   submitTokens,
		SubmitTokenTTL: cfg.HTTP.SubmitTokenTTL,
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
	}, handlers)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if lowStock != nil {
		if err := lowStock.Stop(shutdownCtx); err != nil {
			log.Warn("Low-stock alerts did not stop in time", zap.Error(err))
		}
	}
	if err := meter.Shutdown(shutdownCtx); err != nil {
		log.Warn("Metrics flush failed", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Trace flush failed", zap.Error(err))
	}
	if err := logs.Shutdown(shutdownCtx); err != nil {
		log.Warn("Log flush failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateSchema applies the embedded SQL migrations on postgres. SQLite,
// used for local runs, is created from the models instead.
func migrateSchema(db *persistence.Database, cfg config.DatabaseConfig, log *zap.Logger) error {
	if !cfg.AutoMigrate {
		return nil
	}
	if db.Driver == config.DriverSQLite {
		log.Info("Creating sqlite schema from models")
		return persistence.AutoMigrate(db.DB)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		return err
	}
	// closing the migrator would close the shared pool
	return m.Up()
}

// originChecker accepts websocket upgrades from the dashboard's own host or a
// configured CORS origin
func originChecker(cfg *config.Config) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if u.Host == r.Host {
			return true
		}
		return slices.Contains(cfg.HTTP.CORSAllowOrigins, origin) || slices.Contains(cfg.HTTP.CORSAllowOrigins, "*")
	}
}
