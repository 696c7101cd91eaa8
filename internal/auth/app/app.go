package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/aussiebroadwan/nexus/internal/auth/audit"
	httpapi "github.com/aussiebroadwan/nexus/internal/auth/http"
	"github.com/aussiebroadwan/nexus/internal/auth/metrics"
	"github.com/aussiebroadwan/nexus/internal/auth/service"
	"github.com/aussiebroadwan/nexus/internal/auth/store"
	"github.com/aussiebroadwan/nexus/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/nexus/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/nexus/pkg/cryptox"
	"github.com/aussiebroadwan/nexus/pkg/jwtx"
	"github.com/aussiebroadwan/nexus/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	keyManager *jwtx.KeyManager
	metrics    *metrics.Metrics

	// Audit pipeline. closers release sink resources after the queue drains.
	registry    *audit.Registry
	interceptor *audit.Interceptor
	closers     []io.Closer

	// Services
	tokenService        *service.TokenService
	userService         *service.UserService
	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// Every error it returns wraps service.ErrConfigurationFatal.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "nexus-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if err := cryptox.LoadPepper(cfg.PepperFile); err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrConfigurationFatal, err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrConfigurationFatal, err)
	}

	keyManager, err := InitAuthKeys(cfg, app.logger)
	if err != nil {
		app.closeAll()
		return nil, err
	}
	app.keyManager = keyManager

	if err := app.initAudit(); err != nil {
		app.closeAll()
		return nil, fmt.Errorf("%w: %w", service.ErrConfigurationFatal, err)
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router.
func (app *Application) Handler() http.Handler { return app.router }

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (app *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.interceptor.Start()
	app.housekeepingService.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutdown requested", "cause", context.Cause(gctx))
		return app.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

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

	// Requests are finished; drain the audit queue before closing the sinks.
	if err := app.interceptor.Stop(ctx); err != nil {
		app.logger.Error("audit queue not drained", "error", err, "dropped", app.interceptor.Dropped())
	}

	if err := app.closeAll(); err != nil {
		app.logger.Error("error releasing resources", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeAll() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
		app.db = nil
	}
	return errors.Join(errs...)
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initAudit selects the audit sink and builds the interceptor. Workers are
// started by Run.
func (app *Application) initAudit() error {
	var sink audit.Sink

	switch app.cfg.AuditSink {
	case AuditSinkRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     app.cfg.AuditRedisAddr,
			Password: app.cfg.AuditRedisPassword,
			DB:       app.cfg.AuditRedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("redis ping failed: %w", err)
		}
		app.closers = append(app.closers, client)
		sink = audit.RedisSink{Client: client, Stream: app.cfg.AuditRedisStream}

	case AuditSinkBolt:
		bs, err := audit.NewBoltSink(app.cfg.AuditBoltFile)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, bs)
		sink = bs

	case AuditSinkLog:
		sink = audit.LogSink{Logger: app.logger.With("component", "audit")}

	default:
		sink = audit.StoreSink{Store: app.db}
	}

	app.registry = audit.NewRegistry()
	app.interceptor = audit.NewInterceptor(app.registry, sink, audit.Options{
		QueueSize: app.cfg.AuditQueueSize,
		Workers:   app.cfg.AuditWorkers,
		Logger:    app.logger.With("component", "audit"),
		Metrics:   app.metrics,
	})

	app.logger.Info("audit sink configured", "sink", app.cfg.AuditSink)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		KeyManager: app.keyManager,
		Store:      app.db,
		Metrics:    app.metrics,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTTL(),
	}

	app.userService = &service.UserService{Store: app.db}

	app.authService = &service.AuthService{
		Users:   app.userService,
		Tokens:  app.tokenService,
		Metrics: app.metrics,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger.With("component", "housekeeping"),
		app.cfg.HousekeepingInterval,
		app.cfg.RefreshTTL(),
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.keyManager, BuildVersion, app.db, app.logger)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.TokenService = app.tokenService
	router.Registry = app.registry
	router.Audit = app.interceptor
	router.Metrics = app.metrics
	router.Cookies = httpapi.CookieConfig{
		Secure: app.cfg.CookieSecure,
		Domain: app.cfg.CookieDomain,
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              net.JoinHostPort("", fmt.Sprint(app.cfg.Port)),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
