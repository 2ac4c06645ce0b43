package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"olistdash/pkg/contracts"
)

// DatasetStatus reports the tables held by the cleaned store
type DatasetStatus interface {
	Has(name string) bool
	RowCounts() map[string]int
}

// HealthService provides health check functionality
type HealthService struct {
	dataset        DatasetStatus
	requiredTables []string
	startTime      time.Time
	logger         *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Tables  map[string]int `json:"tables,omitempty"`
}

// NewHealthService creates a new health service. dataset may be nil until
// the store is initialized.
func NewHealthService(dataset DatasetStatus, requiredTables []string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		dataset:        dataset,
		requiredTables: requiredTables,
		startTime:      time.Now(),
		logger:         logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports ready once every required table is loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services:  map[string]interface{}{"dataset": hs.checkDatasetHealth()},
	}

	if sh := status.Services["dataset"].(ServiceHealth); sh.Status != "ready" {
		status.Status = "not_ready"
		hs.logger.WarnContext(ctx, "readiness check failed", slog.String("reason", sh.Message))
	}
	return status
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "not_ready", Message: "dataset not loaded"}
	}
	for _, name := range hs.requiredTables {
		if !hs.dataset.Has(name) {
			return ServiceHealth{Status: "not_ready", Message: "missing table " + name}
		}
	}
	return ServiceHealth{Status: "ready", Tables: hs.dataset.RowCounts()}
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}
