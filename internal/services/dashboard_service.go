package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"olistdash/internal/analytics"
	"olistdash/internal/infrastructure"
	"olistdash/pkg/contracts/domain"
)

// EmptyResultWarning is attached to a result whose filters matched nothing
const EmptyResultWarning = "no data matches the selected filters"

// QueryRunner is the part of the query pipeline the dashboard needs
type QueryRunner interface {
	Run(ctx context.Context, question domain.Question, params analytics.Params) (*domain.ResultSet, error)
	DateBounds() (domain.DateBounds, error)
	Variant() analytics.Variant
	Mode(params analytics.Params) domain.FilterMode
}

// DashboardService turns user interactions into presentation-ready results
type DashboardService struct {
	runner    QueryRunner
	questions []domain.QuestionInfo
	metrics   *infrastructure.DashboardMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
	now       func() time.Time
}

// NewDashboardService creates the service. metrics and tracer may be nil.
func NewDashboardService(runner QueryRunner, metrics *infrastructure.DashboardMetrics, tracer trace.Tracer, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.InstrumentationName)
	}
	return &DashboardService{
		runner:    runner,
		questions: Catalog(runner.Variant()),
		metrics:   metrics,
		tracer:    tracer,
		logger:    logger.With(slog.String("component", "dashboard_service")),
		now:       time.Now,
	}
}

// Variant returns the name of the configured dashboard variant
func (s *DashboardService) Variant() string {
	return s.runner.Variant().Name
}

// Questions lists the questions of the selector in menu order
func (s *DashboardService) Questions() []domain.QuestionInfo {
	out := make([]domain.QuestionInfo, len(s.questions))
	copy(out, s.questions)
	return out
}

// Question describes one question
func (s *DashboardService) Question(key domain.Question) (domain.QuestionInfo, error) {
	for _, q := range s.questions {
		if q.Key == key {
			return q, nil
		}
	}
	return domain.QuestionInfo{}, &analytics.UnknownQuestionError{Question: key}
}

// Bounds returns the purchase date span used as the default date range
func (s *DashboardService) Bounds(ctx context.Context) (domain.DateBounds, error) {
	bounds, err := s.runner.DateBounds()
	if err != nil {
		return domain.DateBounds{}, err
	}
	if bounds.Min.IsZero() {
		return domain.DateBounds{}, ErrNoOrders
	}
	return bounds, nil
}

// Run executes one question with the given controls. An empty result is
// returned with a warning, never as an error.
func (s *DashboardService) Run(ctx context.Context, question domain.Question, params analytics.Params) (*domain.QueryResult, error) {
	info, err := s.Question(question)
	if err != nil {
		return nil, err
	}

	variant := s.runner.Variant().Name
	ctx, span := s.tracer.Start(ctx, "dashboard.query",
		trace.WithAttributes(
			attribute.String("dashboard.question", string(question)),
			attribute.String("dashboard.variant", variant),
			attribute.Bool("dashboard.date_range", params.Dates != nil),
		),
	)
	defer span.End()

	start := s.now()
	rs, err := s.runner.Run(ctx, question, params)
	duration := s.now().Sub(start)

	if err != nil {
		s.metrics.RecordQuery(ctx, string(question), variant, 0, duration, err)
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "query failed",
			slog.String("question", string(question)),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.metrics.RecordQuery(ctx, string(question), variant, rs.Len(), duration, nil)
	span.SetAttributes(attribute.Int("dashboard.rows", rs.Len()))

	result := &domain.QueryResult{
		Info:       info,
		Result:     rs,
		Variant:    variant,
		ExecutedAt: start.UTC(),
		Duration:   duration,
	}
	if filtersByMode(question) {
		result.Mode = s.runner.Mode(params)
	}

	if rs.Empty {
		result.Warnings = append(result.Warnings, EmptyResultWarning)
		s.logger.WarnContext(ctx, "empty result",
			slog.String("question", string(question)),
			slog.String("variant", variant),
			slog.Any("date_range", params.Dates))
	}

	s.logger.InfoContext(ctx, "query completed",
		slog.String("question", string(question)),
		slog.Int("rows", rs.Len()),
		slog.Duration("duration", duration))
	return result, nil
}

// filtersByMode reports whether the filter mode changes a question's output
func filtersByMode(q domain.Question) bool {
	return q == domain.QuestionDeliveryTime || q == domain.QuestionReviewByPayment
}
