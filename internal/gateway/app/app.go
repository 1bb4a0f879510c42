package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/aussiebroadwan/firegate/internal/gateway/http"
	"github.com/aussiebroadwan/firegate/internal/gateway/service"
	"github.com/aussiebroadwan/firegate/internal/gateway/store"
	redisstore "github.com/aussiebroadwan/firegate/internal/gateway/store/drivers/redis"
	"github.com/aussiebroadwan/firegate/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/firegate/pkg/cryptox"
	"github.com/aussiebroadwan/firegate/pkg/jwtx"
	"github.com/aussiebroadwan/firegate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	sessions   store.Sessions
	redis      *goredis.Client // nil unless the redis session backend is used
	keyManager *jwtx.KeyManager

	// Services
	authService         *service.AuthService
	principalService    *service.PrincipalService
	bootstrapService    *service.BootstrapService
	unitService         *service.UnitService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the service logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "firegate",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Application, error) {
	app := &Application{cfg: cfg, logger: logger}

	db, err := OpenStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := app.initSessions(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	keyManager, err := InitSessionKeys(cfg, logger)
	if err != nil {
		app.closeStores()
		return nil, err
	}
	app.keyManager = keyManager

	app.initServices()
	app.initHTTP()

	return app, nil
}

// OpenStore opens the SQLite database and applies migrations. It also points
// password hashing at the configured pepper file.
func OpenStore(cfg Config, logger *slog.Logger) (*sqlite.Store, error) {
	cryptox.SetPepperPath(cfg.PepperFile)

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}

	logger.Info("database migrations applied successfully", "file", cfg.DatabaseFile)
	return db, nil
}

// initSessions picks the session registry. The redis backend lets several
// replicas share revocations.
func (app *Application) initSessions(ctx context.Context) error {
	if app.cfg.SessionBackend != SessionBackendRedis {
		app.sessions = app.db.Sessions()
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := redisstore.Dial(dialCtx, app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.RedisAddr, err)
	}
	app.redis = client
	app.sessions = redisstore.NewSessionRegistry(client, app.cfg.RedisPrefix)
	app.logger.Info("using redis session registry", "addr", app.cfg.RedisAddr)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:             app.db,
		Sessions:          app.sessions,
		Keys:              app.keyManager,
		SessionTTL:        app.cfg.SessionTTL,
		PasswordChangeTTL: app.cfg.PasswordChangeTTL,
	}
	app.principalService = &service.PrincipalService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}
	app.unitService = &service.UnitService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.sessions,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.Keys = app.keyManager
	app.housekeepingService.RotationInterval = app.cfg.KeyRotationInterval
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	opts := httpapi.RouterOptions{
		Keys:     app.keyManager,
		Sessions: app.sessions,
		Cookie: httpapi.CookieConfig{
			Name:   app.cfg.CookieName,
			Secure: app.cfg.CookieSecure,
		},
		BuildVersion: BuildVersion,
		Production:   app.cfg.IsProduction(),
	}
	if app.redis != nil {
		opts.Checks = append(opts.Checks, httpapi.ReadinessCheck{
			Name:  "session_registry",
			Check: func(ctx context.Context) error { return app.redis.Ping(ctx).Err() },
		})
	}

	router := httpapi.NewRouter(app.db, app.logger, opts)

	// Wire services to router
	router.AuthService = app.authService
	router.PrincipalService = app.principalService
	router.BootstrapService = app.bootstrapService
	router.UnitService = app.unitService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (app *Application) Run(ctx context.Context) error {
	app.housekeepingService.Start()
	app.logger.Info("firegate starting", "port", app.cfg.Port, "version", BuildVersion)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutdown requested")
		return app.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down firegate...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("firegate stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
