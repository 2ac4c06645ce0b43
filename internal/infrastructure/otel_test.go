package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olistdash/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestInitializeOTel_MetricsExposed(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		ServiceName:    "olist-dashboard-test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricsEnabled: true,
	}, quietLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)

	metrics, err := CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordQuery(ctx, "delivery_time", "silver", 0, 15*time.Millisecond, nil)
	metrics.RecordQuery(ctx, "top_categories", "silver", 10, 5*time.Millisecond, nil)
	metrics.RecordQuery(ctx, "top_categories", "silver", 0, time.Millisecond, errors.New("boom"))
	metrics.RecordDataset(ctx, map[string]int{"orders": 99441})
	metrics.RecordSession(ctx, 1)
	metrics.RecordMessage(ctx, "in", "query")

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "dashboard_queries_total")
	assert.Contains(t, body, "dashboard_empty_results_total")
	assert.Contains(t, body, "dashboard_query_duration_seconds")
	assert.Contains(t, body, "dataset_rows_loaded")
	assert.Contains(t, body, `question="delivery_time"`)
	assert.Contains(t, body, "websocket_sessions_active")
	assert.Contains(t, body, `direction="in"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "none"}, nil)
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	metrics, err := CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordQuery(context.Background(), "delivery_time", "classic", 1, time.Millisecond, nil)

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestDashboardMetrics_NilSafe(t *testing.T) {
	var metrics *DashboardMetrics
	metrics.RecordQuery(context.Background(), "delivery_time", "silver", 1, time.Millisecond, nil)
	metrics.RecordDataset(context.Background(), map[string]int{"orders": 1})
	metrics.RecordSession(context.Background(), 1)
	metrics.RecordMessage(context.Background(), "out", "result")
}

func TestTraceIDFromContext_NoSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
	RecordError(context.Background(), errors.New("ignored"))
}
