package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/EngSenku/ensat/internal/auth"
	"github.com/EngSenku/ensat/internal/config"
	"github.com/EngSenku/ensat/internal/db"
	"github.com/EngSenku/ensat/internal/events"
	"github.com/EngSenku/ensat/internal/health"
	"github.com/EngSenku/ensat/internal/logger"
	"github.com/EngSenku/ensat/internal/messaging"
	"github.com/EngSenku/ensat/internal/metrics"
	"github.com/EngSenku/ensat/internal/middleware"
	"github.com/EngSenku/ensat/internal/student"
	"github.com/EngSenku/ensat/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	logger        *slog.Logger
	meterProvider *sdkmetric.MeterProvider
	producer      *messaging.Producer
	database      *bun.DB
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses JSON format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	ctx := context.Background()

	// Metrics: export via OTLP when a collector is reachable, otherwise run
	// with no-op collectors rather than refusing to start.
	var m *metrics.Metrics
	tel, err := telemetry.Init(ctx, ServiceName, Version, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize telemetry, metrics disabled", "error", err)
		m = metrics.NewMock()
	} else {
		m = tel.Metrics
		app.meterProvider = tel.MeterProvider
	}

	database := db.New(cfg.Database)
	app.database = database

	if err := db.RunMigrations(ctx, database,
		(*auth.User)(nil),
		(*auth.Session)(nil),
		(*student.Student)(nil),
	); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	if app.meterProvider != nil {
		if err := m.Database.RegisterDB(database.DB, app.meterProvider.Meter(ServiceName)); err != nil {
			slogLogger.Warn("failed to register database pool metrics", "error", err)
		}
	}

	// Apply CORS middleware globally
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// Health endpoints (no auth required)
	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	// Auth setup
	authRepo := auth.NewRepository(database, m)
	sessionTTL := time.Duration(cfg.Auth.SessionTTLHours) * time.Hour
	authService := auth.NewService(authRepo, sessionTTL)
	authHandler := auth.NewHandler(authService, slogLogger, m)
	authHandler.RegisterRoutes(app.router)

	// NATS producer setup (optional - roster events are best-effort)
	producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger, m)
	if err != nil {
		slogLogger.Warn("failed to initialize NATS producer, roster events disabled", "error", err)
		producer = nil
	}
	app.producer = producer

	var eventService *events.Service
	if producer != nil {
		eventService = events.NewService(producer, slogLogger)
	}

	// Student endpoints (auth required)
	studentRepo := student.NewRepository(database, m)
	studentService := student.NewService(studentRepo)
	studentHandler := student.NewHandler(studentService, slogLogger, m, eventService)

	// Protected routes: session is validated before any handler runs
	app.router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(authService, slogLogger))
		authHandler.RegisterProtectedRoutes(r)
		studentHandler.RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if err := a.server.Shutdown(ctx); err != nil {
		return err
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("failed to close NATS producer", "error", err)
		}
	}

	if a.meterProvider != nil {
		if err := telemetry.Shutdown(ctx, a.meterProvider, a.logger); err != nil {
			a.logger.Warn("failed to shutdown telemetry", "error", err)
		}
	}

	db.Close(a.database)

	return nil
}
