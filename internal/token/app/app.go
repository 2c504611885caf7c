package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/nordstack/tokend/internal/token/http"
	"github.com/nordstack/tokend/internal/token/service"
	"github.com/nordstack/tokend/internal/token/store"
	"github.com/nordstack/tokend/internal/token/store/denycache"
	"github.com/nordstack/tokend/internal/token/store/drivers/sqlite"
	"github.com/nordstack/tokend/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the token service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db   store.Store
	keys *SigningKeys

	// Services
	engine              *service.Engine
	introspector        *service.Introspector
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tokend",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := InitSigningKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keys = keys

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("token service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down token service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("token service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	// Cached denylist for the validation hot path. Transactional writes
	// during extension go through the raw store and bypass the cache, which
	// is safe because only positive answers are ever cached.
	denylist := denycache.New(app.db.Denylist(), app.cfg.HousekeepingInterval)

	app.engine = service.NewEngine(
		app.db,
		denylist,
		app.keys.Signer,
		app.keys.Verifier,
		service.EngineConfig{
			Issuer: app.cfg.Issuer,
			Audience: service.AudiencePolicy{
				Enabled: app.cfg.AudienceValidated,
				Allowed: app.cfg.AllowedAudiences,
				Default: app.cfg.DefaultAudience,
			},
			DefaultTTL: app.cfg.DefaultTTL,
			MaxTTL:     app.cfg.MaxTTL,
		},
	)

	app.introspector = service.NewIntrospector(
		app.cfg.Issuer,
		app.cfg.DefaultAudience,
		service.NewEngineValidator(app.engine),
	)

	// Prune directly against the store so expired ledger baggage goes even
	// when the cache never saw it.
	app.housekeepingService = service.NewHousekeepingService(
		app.db.Denylist(),
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.KeySet,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.Engine = app.engine
	router.Introspector = app.introspector
	router.Policy = service.AudiencePolicy{
		Enabled: app.cfg.AudienceValidated,
		Allowed: app.cfg.AllowedAudiences,
		Default: app.cfg.DefaultAudience,
	}
	router.BulkRevokeLimit = app.cfg.BulkRevokeLimit
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
