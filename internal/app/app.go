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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"olistdash/internal/analytics"
	"olistdash/internal/config"
	dp "olistdash/internal/dataprocessing"
	"olistdash/internal/errors"
	"olistdash/internal/exporter"
	"olistdash/internal/infrastructure"
	customMiddleware "olistdash/internal/middleware"
	"olistdash/internal/services"
	handlers "olistdash/internal/transport/http"
	ws "olistdash/internal/websocket"
	"olistdash/pkg/contracts"
)

// compressionLevel is the gzip level of JSON and CSV responses
const compressionLevel = 5

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Store            *dp.Store
	Pipeline         *analytics.Pipeline
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	WebSocketHub     *ws.Hub
	Metrics          *infrastructure.DashboardMetrics
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
}

// NewApplication loads the configuration, initializes the global logger and
// builds the application.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(ctx, cfg, logger)
}

// New builds the application from an explicit configuration. The dataset is
// loaded and cleaned before New returns; a load failure is fatal.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("variant", cfg.Dashboard.Variant),
		slog.String("data_dir", cfg.Dataset.DataDir))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateDashboardMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Metrics:       metrics,
		OTelProviders: otelProviders,
	}

	if err := app.initializeServices(ctx); err != nil {
		otelProviders.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices loads the dataset and wires the query services
func (a *Application) initializeServices(ctx context.Context) error {
	variant, err := analytics.VariantByName(a.Config.Dashboard.Variant)
	if err != nil {
		return err
	}

	files := a.Config.DatasetFiles(dp.DefaultFiles, dp.TableCategoryTranslation)
	loader := dp.NewLoader(a.Config.Dataset.DataDir, files, a.Logger)

	start := time.Now()
	store, err := dp.Initialize(ctx, loader, dp.NewCleaner(), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	a.Store = store
	a.Metrics.RecordDataset(ctx, store.RowCounts())
	a.Logger.InfoContext(ctx, "Dataset ready",
		slog.Int("tables", len(store.Names())),
		slog.Duration("duration", time.Since(start)))

	opts := []analytics.Option{
		analytics.WithVariant(variant),
		analytics.WithLogger(a.Logger),
	}
	if a.Config.Dataset.TranslateCategories {
		table, err := store.Table(dp.TableCategoryTranslation)
		if err != nil {
			return err
		}
		translator, err := analytics.NewTranslator(table)
		if err != nil {
			return fmt.Errorf("failed to build category translator: %w", err)
		}
		a.Logger.InfoContext(ctx, "Category translation enabled", slog.Int("categories", translator.Len()))
		opts = append(opts, analytics.WithTranslator(translator))
	}

	a.Pipeline = analytics.NewPipeline(store, opts...)
	a.DashboardService = services.NewDashboardService(a.Pipeline, a.Metrics, a.OTelProviders.Tracer, a.Logger)
	a.HealthService = services.NewHealthService(store, dp.CoreTables, a.Logger)
	a.WebSocketHub = ws.NewHub(a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	validator := customMiddleware.NewValidator()

	// Minimal chain first: neither wraps the ResponseWriter, so the
	// WebSocket upgrade can hijack the connection
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	wsHandler := ws.NewHandler(a.WebSocketHub, a.DashboardService, validator, errorHandler, a.Metrics, ws.Options{
		Config:         a.Config.WebSocket,
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		QueryTimeout:   a.Config.Server.QueryTimeout,
	}, a.Logger)
	r.Handle("/ws", wsHandler)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(errors.RecoveryMiddleware(errorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r, errorHandler, validator)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *errors.ErrorHandler, validator *customMiddleware.Validator) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.QueryTimeout, a.Logger))
		r.Use(customMiddleware.Compress(compressionLevel))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		dashboardHandler := handlers.NewDashboardHandler(
			a.DashboardService,
			exporter.New(a.Logger),
			validator,
			a.Logger,
			errorHandler,
		)
		r.Mount("/dashboard", dashboardHandler.Routes())
	})
}

// getCORSConfig returns the CORS configuration for the dashboard frontend
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		MaxAge:         300,
	}
	a.Logger.Info("CORS configured", slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Start starts serving in the background. A listener failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://%s", a.Server.Addr)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	// Hijacked connections survive Shutdown
	a.WebSocketHub.CloseAll()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.Info("Received shutdown signal")

	// The signal context is done; shut down on a fresh one
	return a.Stop(context.Background())
}

// performStartupHealthCheck reports the readiness of the loaded dataset and
// the cleaning outcome of every table.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	for _, report := range a.Store.Reports() {
		if report.RowsOut == 0 {
			a.Logger.WarnContext(ctx, "Table is empty after cleaning", slog.String("table", report.Table))
		}
	}

	status := a.HealthService.ReadinessCheck(ctx)
	if status.Status != "ready" {
		return fmt.Errorf("dataset not ready: %v", status.Services["dataset"])
	}

	if _, err := a.DashboardService.Bounds(ctx); err != nil {
		return fmt.Errorf("date bounds unavailable: %w", err)
	}
	return nil
}
