package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/data/db"
	"github.com/adaosilva/imoveis-backend/internal/http"
	"github.com/adaosilva/imoveis-backend/internal/observability"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/realtime"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

// Version is stamped at build time with -ldflags "-X ...app.Version=...".
var Version = "dev"

const collectorInterval = 15 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Hub      *realtime.Hub
	Metrics  *observability.Metrics

	database     *db.DatabaseService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New wires the whole API. Close must be called even when Start is not.
func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log = log.With("env", cfg.Environment)

	a := &App{Log: log, Cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	a.Metrics = observability.Init(log, cfg.MetricsEnabled)
	a.otelShutdown = observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     Version,
		Endpoint:    cfg.Otel.Endpoint,
		Headers:     observability.ParseHeaders(cfg.Otel.Headers),
		Insecure:    cfg.Otel.Insecure,
		SampleRatio: cfg.Otel.SampleRatio,
	})

	database, err := db.NewDatabaseService(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.database = database
	a.DB = database.DB()
	if err := db.AutoMigrateAll(a.DB); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	a.Repos = wireRepos(a.DB, log)

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	a.Clients = clients

	a.Hub = realtime.NewHub(log)
	a.Hub.OnDrop(func(realtime.Message) { a.Metrics.IncRealtimeDrop() })
	emit := &services.BusEmitter{Bus: clients.Bus, Log: log}

	svcs, err := wireServices(a.DB, log, cfg, a.Repos, clients, emit, a.Metrics)
	if err != nil {
		return nil, err
	}
	a.Services = svcs

	handlers := wireHandlers(log, svcs, a.Hub, a.Metrics)
	middleware := wireMiddleware(log, svcs)
	a.Router = wireRouter(log, cfg, a.Metrics, handlers, middleware)

	ok = true
	return a, nil
}

func newLogger(cfg Config) (*logger.Logger, error) {
	return logger.NewWithOptions(cfg.LogMode, logger.Options{
		DisableRedaction: !cfg.LogRedaction,
		HashSalt:         cfg.LogHashSalt,
	})
}

// Migrate opens the database and runs the schema migrations only.
func Migrate(ctx context.Context, cfg Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	database, err := db.NewDatabaseService(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.AutoMigrateAll(database.DB()); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("Migrations applied", "dialect", database.Dialect())
	return nil
}

// Start launches background workers: the realtime forwarder and the
// metrics collectors.
func (a *App) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.Clients.Bus.StartForwarder(ctx, a.Hub.Broadcast); err != nil {
		return fmt.Errorf("start realtime forwarder: %w", err)
	}

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB, collectorInterval)
	if a.Cfg.Redis.Addr != "" {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.Redis.Addr, collectorInterval)
	}
	return nil
}

// Seed applies the bootstrap data (admins, site config, optional seed file).
func (a *App) Seed(ctx context.Context, file string) (*services.SeedReport, error) {
	opts := services.SeedOptions{
		AdminEmail:          a.Cfg.Seed.AdminEmail,
		AdminPassword:       a.Cfg.Seed.AdminPassword,
		SecondaryAdminEmail: a.Cfg.Seed.SecondaryAdminEmail,
	}
	if file != "" {
		sf, err := services.LoadSeedFile(file)
		if err != nil {
			return nil, err
		}
		opts.File = sf
	}
	return a.Services.Seed.Run(ctx, opts)
}

// Run seeds, starts background workers and serves HTTP until ctx ends.
func (a *App) Run(ctx context.Context) error {
	if report, err := a.Seed(ctx, a.Cfg.Seed.File); err != nil {
		a.Log.Error("Seed failed; continuing without it", "error", err)
	} else {
		a.Log.Info("Seed applied", "users_created", report.UsersCreated, "site_config_created", report.SiteConfigCreated)
	}

	if err := a.Start(ctx); err != nil {
		return err
	}

	server := http.NewServer(a.Router, a.Log)
	addr := a.Cfg.Addr()
	a.Log.Info("Starting API", "version", Version)
	if err := server.Run(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.Clients.Close()
	a.Services.Notifier.Wait()
	if a.database != nil {
		if err := a.database.Close(); err != nil && a.Log != nil {
			a.Log.Warn("Failed to close database", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
