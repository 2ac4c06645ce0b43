package http

import (
	"context"

	"olistdash/internal/analytics"
	"olistdash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers need
type DashboardServiceInterface interface {
	Variant() string
	Questions() []domain.QuestionInfo
	Question(key domain.Question) (domain.QuestionInfo, error)
	Bounds(ctx context.Context) (domain.DateBounds, error)
	Run(ctx context.Context, question domain.Question, params analytics.Params) (*domain.QueryResult, error)
}
