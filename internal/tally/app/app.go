package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quietloops/tally/internal/tally/cache"
	httpapi "github.com/quietloops/tally/internal/tally/http"
	"github.com/quietloops/tally/internal/tally/service"
	"github.com/quietloops/tally/internal/tally/store"
	"github.com/quietloops/tally/internal/tally/store/drivers/sqlite"
	"github.com/quietloops/tally/pkg/cryptox"
	"github.com/quietloops/tally/pkg/i18nx"
	"github.com/quietloops/tally/pkg/jwtx"
	"github.com/quietloops/tally/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the expense service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	rdb    *redis.Client
	cache  *cache.Cache
	issuer *jwtx.Issuer

	userService    *service.UserService
	tokenService   *service.TokenService
	expenseService *service.ExpenseService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tally",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.TokenSecret == "" {
		return nil, errors.New("TALLY_SECRET must be set")
	}
	app.issuer = &jwtx.Issuer{Secret: []byte(cfg.TokenSecret)}

	cryptox.SetPepper(cfg.Pepper)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initCache(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("tally service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tally service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.rdb.Close(); err != nil {
		app.logger.Error("error closing redis client", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("tally service stopped")
	return nil
}

// initDatabase initializes the record store and applies migrations.
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

// initCache connects the Redis-backed snapshot cache. An unreachable backend
// is logged but not fatal: every cache path degrades to a store read.
func (app *Application) initCache() error {
	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}

	app.rdb = redis.NewClient(opts)
	app.cache = cache.New(app.rdb)

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := app.rdb.Ping(pingCtx).Err(); err != nil {
		app.logger.Warn("cache backend unreachable at startup", "error", err)
	}

	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	orchestrator := cache.NewOrchestrator(app.cache)
	if app.cfg.CacheTTL > 0 {
		orchestrator.TTL = app.cfg.CacheTTL
	}

	app.userService = &service.UserService{Store: app.db}
	app.tokenService = &service.TokenService{
		Users:  app.userService,
		Issuer: app.issuer,
	}
	app.expenseService = &service.ExpenseService{
		Store: app.db,
		Cache: orchestrator,
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.issuer,
		i18nx.NewCatalog(),
		BuildVersion,
		app.db,
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return app.rdb.Ping(ctx).Err()
		},
		app.logger,
	)

	router.UserService = app.userService
	router.TokenService = app.tokenService
	router.ExpenseService = app.expenseService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
