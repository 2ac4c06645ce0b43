package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	dp "olistdash/internal/dataprocessing"
	"olistdash/pkg/contracts/domain"
)

// UnknownQuestionError is returned by Run for a question key it cannot dispatch
type UnknownQuestionError struct {
	Question domain.Question
}

func (e *UnknownQuestionError) Error() string {
	return fmt.Sprintf("unknown question %q", e.Question)
}

// Pipeline runs the dashboard queries against an immutable store
type Pipeline struct {
	store      *dp.Store
	variant    Variant
	translator *Translator
	logger     *slog.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithVariant selects the dashboard variant
func WithVariant(v Variant) Option {
	return func(p *Pipeline) { p.variant = v }
}

// WithTranslator reports categories under their translated names
func WithTranslator(t *Translator) Option {
	return func(p *Pipeline) { p.translator = t }
}

// WithLogger sets the pipeline logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates a pipeline over store using the silver variant unless
// configured otherwise.
func NewPipeline(store *dp.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:   store,
		variant: VariantSilver,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "query_pipeline"))
	return p
}

// Variant returns the configured variant
func (p *Pipeline) Variant() Variant { return p.variant }

// Mode returns the filter mode a call with params would use
func (p *Pipeline) Mode(params Params) domain.FilterMode { return p.variant.mode(params) }

func (p *Pipeline) tables(a, b, c string) (*dp.Table, *dp.Table, *dp.Table, error) {
	ta, err := p.store.Table(a)
	if err != nil {
		return nil, nil, nil, err
	}
	tb, err := p.store.Table(b)
	if err != nil {
		return nil, nil, nil, err
	}
	tc, err := p.store.Table(c)
	if err != nil {
		return nil, nil, nil, err
	}
	return ta, tb, tc, nil
}

func (p *Pipeline) tables4(a, b, c, d string) (*dp.Table, *dp.Table, *dp.Table, *dp.Table, error) {
	ta, tb, tc, err := p.tables(a, b, c)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	td, err := p.store.Table(d)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return ta, tb, tc, td, nil
}

// Run validates params, executes one question and converts its rows into a
// result set. An empty result is not an error.
func (p *Pipeline) Run(ctx context.Context, question domain.Question, params Params) (*domain.ResultSet, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		rs  *domain.ResultSet
		err error
	)
	switch question {
	case domain.QuestionDeliveryTime:
		var rows []domain.DeliveryTime
		if rows, err = p.AvgDeliveryTime(ctx, params); err == nil {
			rs = deliveryResult(rows)
		}
	case domain.QuestionReviewByPayment:
		var rows []domain.PaymentReview
		if rows, err = p.AvgReviewByPayment(ctx, params); err == nil {
			rs = paymentResult(rows)
		}
	case domain.QuestionCategoryRevenue:
		var rows []domain.CategoryRevenue
		if rows, err = p.CategoryRevenueReviews(ctx, params); err == nil {
			rs = revenueResult(rows)
		}
	case domain.QuestionTopCategories:
		var rows []domain.CategorySales
		if rows, err = p.TopSellingCategories(ctx, params); err == nil {
			rs = salesResult(rows)
		}
	case domain.QuestionCustomerDistribution:
		var rows []domain.GeoPoint
		if rows, err = p.CustomerDistribution(ctx, params); err == nil {
			rs = p.geoResult(rows)
		}
	default:
		return nil, &UnknownQuestionError{Question: question}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", question, err)
	}

	rs.Question = question
	rs.Empty = len(rs.Rows) == 0
	p.logger.DebugContext(ctx, "query executed",
		slog.String("question", string(question)),
		slog.String("variant", p.variant.Name),
		slog.Int("rows", rs.Len()),
		slog.Duration("duration", time.Since(start)))
	return rs, nil
}

// DateBounds returns the earliest and latest purchase timestamps
func (p *Pipeline) DateBounds() (domain.DateBounds, error) {
	orders, err := p.store.Table(dp.TableOrders)
	if err != nil {
		return domain.DateBounds{}, err
	}
	col, err := orders.Col(dp.ColPurchaseTimestamp)
	if err != nil {
		return domain.DateBounds{}, err
	}
	var bounds domain.DateBounds
	for _, row := range orders.Rows {
		ts, ok := row[col].Timestamp()
		if !ok {
			continue
		}
		if bounds.Min.IsZero() || ts.Before(bounds.Min) {
			bounds.Min = ts
		}
		if bounds.Max.IsZero() || ts.After(bounds.Max) {
			bounds.Max = ts
		}
	}
	return bounds, nil
}

// Columns returns the result columns of a question under this pipeline's variant
func (p *Pipeline) Columns(question domain.Question) []domain.Column {
	switch question {
	case domain.QuestionDeliveryTime:
		return deliveryColumns
	case domain.QuestionReviewByPayment:
		return paymentColumns
	case domain.QuestionCategoryRevenue:
		return revenueColumns
	case domain.QuestionTopCategories:
		return salesColumns
	case domain.QuestionCustomerDistribution:
		if p.variant.GeoStrategy == domain.GeoStrategyStateMean {
			return stateMeanColumns
		}
		return customerPointColumns
	default:
		return nil
	}
}

var (
	deliveryColumns = []domain.Column{
		{Name: "zip_code_prefix", Type: "string"},
		{Name: "state", Type: "string"},
		{Name: "avg_delivery_days", Type: "number"},
	}
	paymentColumns = []domain.Column{
		{Name: "payment_type", Type: "string"},
		{Name: "avg_review_score", Type: "number"},
	}
	revenueColumns = []domain.Column{
		{Name: "category", Type: "string"},
		{Name: "total_revenue", Type: "number"},
		{Name: "total_reviews", Type: "integer"},
	}
	salesColumns = []domain.Column{
		{Name: "category", Type: "string"},
		{Name: "items_sold", Type: "integer"},
	}
	stateMeanColumns = []domain.Column{
		{Name: "zip_code_prefix", Type: "string"},
		{Name: "state", Type: "string"},
		{Name: "lat", Type: "number"},
		{Name: "lng", Type: "number"},
	}
	customerPointColumns = []domain.Column{
		{Name: "customer_id", Type: "string"},
		{Name: "zip_code_prefix", Type: "string"},
		{Name: "city", Type: "string"},
		{Name: "state", Type: "string"},
		{Name: "lat", Type: "number"},
		{Name: "lng", Type: "number"},
	}
)

func deliveryResult(rows []domain.DeliveryTime) *domain.ResultSet {
	rs := &domain.ResultSet{Columns: deliveryColumns, Rows: make([][]interface{}, 0, len(rows))}
	for _, r := range rows {
		rs.Rows = append(rs.Rows, []interface{}{r.ZipCodePrefix, r.State, r.AvgDays})
	}
	return rs
}

func paymentResult(rows []domain.PaymentReview) *domain.ResultSet {
	rs := &domain.ResultSet{Columns: paymentColumns, Rows: make([][]interface{}, 0, len(rows))}
	for _, r := range rows {
		rs.Rows = append(rs.Rows, []interface{}{r.PaymentType, r.AvgScore})
	}
	return rs
}

func revenueResult(rows []domain.CategoryRevenue) *domain.ResultSet {
	rs := &domain.ResultSet{Columns: revenueColumns, Rows: make([][]interface{}, 0, len(rows))}
	for _, r := range rows {
		rs.Rows = append(rs.Rows, []interface{}{r.Category, r.TotalRevenue, r.TotalReviews})
	}
	return rs
}

func salesResult(rows []domain.CategorySales) *domain.ResultSet {
	rs := &domain.ResultSet{Columns: salesColumns, Rows: make([][]interface{}, 0, len(rows))}
	for _, r := range rows {
		rs.Rows = append(rs.Rows, []interface{}{r.Category, r.ItemsSold})
	}
	return rs
}

func (p *Pipeline) geoResult(rows []domain.GeoPoint) *domain.ResultSet {
	stateMean := p.variant.GeoStrategy == domain.GeoStrategyStateMean
	rs := &domain.ResultSet{Columns: p.Columns(domain.QuestionCustomerDistribution), Rows: make([][]interface{}, 0, len(rows))}
	for _, r := range rows {
		if stateMean {
			rs.Rows = append(rs.Rows, []interface{}{r.ZipCodePrefix, r.State, r.Lat, r.Lng})
			continue
		}
		rs.Rows = append(rs.Rows, []interface{}{r.CustomerID, r.ZipCodePrefix, r.City, r.State, r.Lat, r.Lng})
	}
	return rs
}
