package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	activityapp "github.com/agencyos/backend/internal/application/activity"
	catalogapp "github.com/agencyos/backend/internal/application/catalog"
	credentialapp "github.com/agencyos/backend/internal/application/credential"
	exportapp "github.com/agencyos/backend/internal/application/export"
	printingapp "github.com/agencyos/backend/internal/application/printing"
	"github.com/agencyos/backend/internal/application/records"
	reportapp "github.com/agencyos/backend/internal/application/report"
	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/agencyos/backend/internal/domain/shared"
	"github.com/agencyos/backend/internal/infrastructure/auth"
	"github.com/agencyos/backend/internal/infrastructure/cache"
	"github.com/agencyos/backend/internal/infrastructure/config"
	"github.com/agencyos/backend/internal/infrastructure/event"
	"github.com/agencyos/backend/internal/infrastructure/logger"
	"github.com/agencyos/backend/internal/infrastructure/migration"
	"github.com/agencyos/backend/internal/infrastructure/persistence"
	"github.com/agencyos/backend/internal/infrastructure/persistence/memory"
	"github.com/agencyos/backend/internal/infrastructure/printing"
	"github.com/agencyos/backend/internal/infrastructure/seed"
	"github.com/agencyos/backend/internal/infrastructure/storage"
	"github.com/agencyos/backend/internal/infrastructure/telemetry"
	"github.com/agencyos/backend/internal/infrastructure/vault"
	"github.com/agencyos/backend/internal/interfaces/http/handler"
	"github.com/agencyos/backend/internal/interfaces/http/middleware"
	"github.com/agencyos/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

const exportRoute = "/api/v1/reports/exports"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown incomplete", zap.Error(err))
		}
	}()
	if providers.Logs.IsEnabled() {
		log = providers.Logs.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))
	}

	log.Info("Starting agency backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	checks := map[string]handler.Check{}
	var activityRepo activity.Repository = memory.NewActivityRepository(cfg.Events.ActivityLimit)
	deps := records.Deps{
		IdempotencyTTL: cfg.Idempotency.TTL,
		Logger:         log,
	}

	// Snapshot persistence, off by default
	if cfg.Database.Enabled {
		db, err := openDatabase(cfg, log)
		if err != nil {
			log.Fatal("Failed to open snapshot database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		deps.Snapshots = persistence.NewGormSnapshotRepository(db.DB)
		activityRepo = persistence.NewGormActivityRepository(db.DB)
		checks["database"] = func(context.Context) error { return db.Ping() }
		log.Info("Snapshot persistence enabled", zap.String("driver", cfg.Database.Driver))
	}

	// Idempotency keys: redis when configured, process memory otherwise
	idem, err := cache.NewIdempotencyStore(ctx, cfg.Redis, cfg.IsProduction(), log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() { _ = idem.Close() }()
	deps.Idempotency = idem
	if redis, ok := idem.(*cache.RedisIdempotencyStore); ok {
		checks["redis"] = redis.Ping
	}

	// Event bus: activity log, record metrics, optional NATS fan-out
	bus := event.NewInMemoryEventBus(log)
	deps.Events = bus
	recorder := activityapp.NewRecorder(activityRepo, log)
	bus.Subscribe(recorder, recorder.EventTypes()...)

	meter := providers.Meter.Meter("agencyos")
	recordMetrics, err := telemetry.NewRecordMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create record metrics", zap.Error(err))
	}
	bus.Subscribe(recordMetrics, recordMetrics.EventTypes()...)
	httpMetrics, err := telemetry.NewHTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	if cfg.Events.NATSURL != "" {
		closeNATS, err := forwardToNATS(ctx, cfg.Events, bus, checks, log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer closeNATS()
	}
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Record modules
	sealer, err := vault.NewSealer(cfg.Vault.Key)
	if err != nil {
		log.Fatal("Invalid vault key", zap.Error(err))
	}
	source := seed.NewSource(cfg.Seed.Dir)
	catalog, err := catalogapp.Build(source, sealer, deps)
	if err != nil {
		log.Fatal("Failed to load seed records", zap.Error(err))
	}
	if deps.Snapshots != nil {
		restored, err := catalog.Restore(ctx)
		if err != nil {
			log.Fatal("Failed to restore snapshots", zap.Error(err))
		}
		log.Info("Restored modules from snapshots", zap.Int("modules", restored))
	}

	if cfg.Seed.Dir != "" && cfg.Seed.Watch {
		watcher, err := seed.NewWatcher(source, catalog.Reload, 0, log)
		if err != nil {
			log.Fatal("Failed to watch seed directory", zap.Error(err))
		}
		go watcher.Run(ctx)
		defer func() { _ = watcher.Close() }()
	}

	// Exports
	store, err := storage.New(ctx, &cfg.Storage, "http://localhost:"+cfg.App.Port+exportRoute, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	exporter := exportapp.NewService(catalog.Registry, store, log,
		exportapp.WithPrefix(cfg.Storage.Prefix),
		exportapp.WithExpiry(cfg.Storage.PresignExpiry),
	)

	// Invoice documents
	engine, err := printing.NewTemplateEngine(cfg.App.Currency)
	if err != nil {
		log.Fatal("Failed to parse document templates", zap.Error(err))
	}
	var renderer printing.PDFRenderer
	if cfg.Printing.Enabled {
		chrome := printing.NewChromedpRenderer(printing.ChromedpConfig{
			ExecPath:       cfg.Printing.ChromePath,
			RemoteURL:      cfg.Printing.RemoteURL,
			DefaultTimeout: cfg.Printing.Timeout,
			NoSandbox:      os.Geteuid() == 0,
			Logger:         log,
		})
		defer func() { _ = chrome.Close() }()
		renderer = chrome
	}
	documents := printingapp.NewDocumentService(catalog.Invoices, engine, renderer, log)

	summary := reportapp.NewService(catalog.Leads, catalog.Invoices, catalog.Payouts, catalog.Tax, catalog.Projects, catalog.Registry, log)
	credentials := credentialapp.NewService(catalog.Credentials, sealer, log)

	// HTTP
	middleware.SetupValidator()
	opts := router.Options{
		ServiceName: cfg.Telemetry.ServiceName,
		HTTP:        cfg.HTTP,
		Logger:      log,
		Metrics:     httpMetrics,
		Tracing:     cfg.Telemetry.Enabled,
		Profiling:   cfg.Telemetry.ProfilingEnabled,
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.Run(ctx)
		opts.RateLimiter = limiter
	}

	handlers := router.Handlers{
		Records:   handler.NewRecordHandler(catalog.Registry),
		System:    handler.NewSystemHandler(cfg.App.Name, version, checks),
		Activity:  handler.NewActivityHandler(activityapp.NewService(activityRepo)),
		Reports:   handler.NewReportHandler(summary, exporter),
		Documents: handler.NewDocumentHandler(documents, credentials),
	}
	if cfg.JWT.Enabled {
		tokens := auth.NewJWTService(cfg.JWT)
		opts.Tokens = tokens
		if !cfg.IsProduction() {
			handlers.Auth = handler.NewAuthHandler(tokens, auth.DefaultTokenTTL)
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        router.New(opts, handlers),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.Strings("modules", catalog.Registry.Names()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus stopped with errors", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// openDatabase connects the snapshot store, traces it and brings its schema
// up to date.
func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Telemetry.Enabled {
		if err := telemetry.InstrumentGorm(db.DB, cfg.Database.DBName, false); err != nil {
			log.Warn("Failed to instrument database", zap.Error(err))
		}
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dir := cfg.Database.MigrationsPath
	if dir != "" {
		dir = filepath.Join(dir, cfg.Database.Driver)
	}
	m, err := migration.New(sqlDB, cfg.Database.Driver, dir, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := m.Up(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// forwardToNATS subscribes a forwarder publishing every record change on NATS.
func forwardToNATS(ctx context.Context, cfg config.EventsConfig, bus shared.EventBus, checks map[string]handler.Check, log *zap.Logger) (func(), error) {
	conn, err := event.Connect(cfg.NATSURL, "agencyos", log)
	if err != nil {
		return nil, err
	}

	var sink event.Sink = event.NewCoreSink(conn)
	if cfg.JetStream {
		js, err := event.NewJetStreamSink(ctx, conn, cfg.Stream, cfg.SubjectPrefix)
		if err != nil {
			conn.Close()
			return nil, err
		}
		sink = js
	}

	forwarder := event.NewNATSForwarder(sink, cfg.SubjectPrefix, log)
	bus.Subscribe(forwarder, forwarder.EventTypes()...)
	checks["nats"] = func(context.Context) error {
		if !conn.IsConnected() {
			return errors.New(conn.Status().String())
		}
		return nil
	}
	return func() { _ = conn.Drain() }, nil
}
