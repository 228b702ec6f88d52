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

	httpapi "github.com/202201638/security-project/internal/auth/http"
	"github.com/202201638/security-project/internal/auth/metrics"
	"github.com/202201638/security-project/internal/auth/service"
	"github.com/202201638/security-project/internal/auth/store"
	"github.com/202201638/security-project/internal/auth/store/drivers/postgres"
	"github.com/202201638/security-project/internal/auth/store/drivers/sqlite"
	"github.com/202201638/security-project/pkg/cryptox"
	"github.com/202201638/security-project/pkg/httpx"
	"github.com/202201638/security-project/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...app.BuildVersion=".
var BuildVersion = "v1.0.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	metrics *metrics.Metrics

	tokenService        *service.TokenService
	sessionService      *service.SessionService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
		"rotate_refresh_tokens", app.cfg.RotateRefreshTokens,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL, postgres.Options{MaxConns: app.cfg.DatabaseMaxConns})
	default:
		db, err = sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	var pepper string
	if app.cfg.PasswordHasher == cryptox.HasherArgon2id {
		p, err := cryptox.LoadPepper(app.cfg.PepperFile)
		if err != nil {
			return fmt.Errorf("failed to load pepper: %w", err)
		}
		pepper = p
	}

	hasher, err := cryptox.NewHasher(app.cfg.PasswordHasher, pepper, app.cfg.BcryptCost)
	if err != nil {
		return err
	}

	app.tokenService, err = service.NewTokenService(
		[]byte(app.cfg.JWTSecret),
		app.cfg.Issuer,
		app.cfg.AccessTokenTTL(),
		app.cfg.RefreshTokenTTL(),
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	app.sessionService = &service.SessionService{
		Store:               app.db,
		Hasher:              hasher,
		Tokens:              app.tokenService,
		Metrics:             app.metrics,
		RotateRefreshTokens: app.cfg.RotateRefreshTokens,
	}
	app.userService = &service.UserService{Store: app.db, Hasher: hasher}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.metrics,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(httpapi.Options{
		Verifier:     app.tokenService.AccessVerifier,
		Store:        app.db,
		Logger:       app.logger,
		Metrics:      app.metrics,
		BuildVersion: BuildVersion,
		Dev:          app.cfg.Dev(),
		RateLimit:    app.cfg.RateLimitEnabled,
		AuthLimit:    httpx.ParseRateLimitFromEnv("AUTH", httpx.StrictLimit),
		APILimit:     httpx.ParseRateLimitFromEnv("API", httpx.ModerateLimit),
		CORS:         httpx.CORSConfig{AllowedOrigins: app.cfg.CORSAllowedOrigins},
	})

	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
