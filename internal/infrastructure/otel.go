package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"olistdash/internal/config"
	"olistdash/pkg/contracts"
)

// InstrumentationName names the tracer and meter of the dashboard
const InstrumentationName = "olistdash"

// OTelProviders holds the OpenTelemetry providers. Tracer and Meter are
// never nil: disabled signals use no-op implementations.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel sets up tracing and metrics as configured
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Tracer: tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:  metricnoop.NewMeterProvider().Meter(InstrumentationName),
		Logger: logger,
	}

	if cfg.TracingEnabled && cfg.TraceExporter != "none" {
		if err := initializeTracing(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.MetricsEnabled {
		if err := initializeMetrics(res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", providers.TracerProvider != nil),
		slog.Bool("metrics_enabled", providers.MeterProvider != nil))

	return providers, nil
}

func createResource(cfg config.TelemetryConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(contracts.Version),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

func initializeTracing(cfg config.TelemetryConfig, res *resource.Resource, providers *OTelProviders) error {
	if cfg.TraceExporter != "stdout" {
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(contracts.Version))
	otel.SetTracerProvider(tp)
	return nil
}

// initializeMetrics wires the meter provider to a dedicated Prometheus
// registry served by PrometheusHTTP.
func initializeMetrics(res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(contracts.Version))
	providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	otel.SetMeterProvider(mp)
	return nil
}

// DashboardMetrics holds the application metrics
type DashboardMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Query metrics
	QueriesTotal  metric.Int64Counter
	QueryDuration metric.Float64Histogram
	QueryRows     metric.Int64Histogram
	EmptyResults  metric.Int64Counter

	// Dataset metrics
	DatasetRowsLoaded metric.Int64Gauge

	// WebSocket metrics
	WebSocketSessions metric.Int64UpDownCounter
	WebSocketMessages metric.Int64Counter
}

// CreateDashboardMetrics creates the application metrics on meter
func CreateDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	var (
		m    DashboardMetrics
		errs []error
		err  error
	)

	m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests"))
	errs = append(errs, err)

	m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"))
	errs = append(errs, err)

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("Number of active HTTP requests"))
	errs = append(errs, err)

	m.QueriesTotal, err = meter.Int64Counter("dashboard_queries_total",
		metric.WithDescription("Total number of dashboard queries by question and outcome"))
	errs = append(errs, err)

	m.QueryDuration, err = meter.Float64Histogram("dashboard_query_duration_seconds",
		metric.WithDescription("Dashboard query duration in seconds"),
		metric.WithUnit("s"))
	errs = append(errs, err)

	m.QueryRows, err = meter.Int64Histogram("dashboard_query_rows",
		metric.WithDescription("Number of rows returned by dashboard queries"))
	errs = append(errs, err)

	m.EmptyResults, err = meter.Int64Counter("dashboard_empty_results_total",
		metric.WithDescription("Total number of queries that produced an empty result"))
	errs = append(errs, err)

	m.DatasetRowsLoaded, err = meter.Int64Gauge("dataset_rows_loaded",
		metric.WithDescription("Number of rows per table after cleaning"))
	errs = append(errs, err)

	m.WebSocketSessions, err = meter.Int64UpDownCounter("websocket_sessions_active",
		metric.WithDescription("Number of open WebSocket sessions"))
	errs = append(errs, err)

	m.WebSocketMessages, err = meter.Int64Counter("websocket_messages_total",
		metric.WithDescription("Total number of WebSocket messages by direction and type"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordQuery records the outcome of one dashboard query
func (m *DashboardMetrics) RecordQuery(ctx context.Context, question, variant string, rows int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	base := []attribute.KeyValue{
		attribute.String("question", question),
		attribute.String("variant", variant),
	}
	attrs := metric.WithAttributes(base...)
	m.QueriesTotal.Add(ctx, 1, metric.WithAttributes(append(base, attribute.String("status", status))...))
	m.QueryDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		return
	}
	m.QueryRows.Record(ctx, int64(rows), attrs)
	if rows == 0 {
		m.EmptyResults.Add(ctx, 1, attrs)
	}
}

// RecordDataset records the cleaned row count of every table
func (m *DashboardMetrics) RecordDataset(ctx context.Context, rowCounts map[string]int) {
	if m == nil {
		return
	}
	for table, n := range rowCounts {
		m.DatasetRowsLoaded.Record(ctx, int64(n), metric.WithAttributes(attribute.String("table", table)))
	}
}

// RecordSession adds delta to the number of open WebSocket sessions
func (m *DashboardMetrics) RecordSession(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.WebSocketSessions.Add(ctx, delta)
}

// RecordMessage counts one WebSocket message. direction is in or out.
func (m *DashboardMetrics) RecordMessage(ctx context.Context, direction, messageType string) {
	if m == nil {
		return
	}
	m.WebSocketMessages.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("type", messageType),
	))
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("opentelemetry shutdown errors: %w", err)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts the span trace ID for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
