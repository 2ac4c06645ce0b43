package domain

import "time"

// Question identifies one of the canned analytical questions
type Question string

const (
	QuestionDeliveryTime         Question = "delivery_time"
	QuestionReviewByPayment      Question = "review_by_payment"
	QuestionCategoryRevenue      Question = "category_revenue"
	QuestionTopCategories        Question = "top_categories"
	QuestionCustomerDistribution Question = "customer_distribution"
)

// Questions lists every question in menu order
var Questions = []Question{
	QuestionDeliveryTime,
	QuestionReviewByPayment,
	QuestionCategoryRevenue,
	QuestionTopCategories,
	QuestionCustomerDistribution,
}

// Valid reports whether q is a known question
func (q Question) Valid() bool {
	for _, known := range Questions {
		if q == known {
			return true
		}
	}
	return false
}

// FilterMode selects how a ranked query is narrowed
type FilterMode string

const (
	// FilterModeTop keeps the ten best groups
	FilterModeTop FilterMode = "top"
	// FilterModeRange keeps the groups inside user supplied bounds
	FilterModeRange FilterMode = "range"
)

// GeoStrategy selects how customer locations are resolved
type GeoStrategy string

const (
	// GeoStrategyStateMean averages coordinates per zip and state and keeps the ten busiest states
	GeoStrategyStateMean GeoStrategy = "state_mean"
	// GeoStrategySilverMedian resolves one canonical state per zip and plots one point per customer
	GeoStrategySilverMedian GeoStrategy = "silver_median"
)

// DeliveryTime is the average delivery time of one zip/state group
type DeliveryTime struct {
	ZipCodePrefix string  `json:"zip_code_prefix"`
	State         string  `json:"state"`
	AvgDays       float64 `json:"avg_delivery_days"`
}

// PaymentReview is the average review score of one payment method
type PaymentReview struct {
	PaymentType string  `json:"payment_type"`
	AvgScore    float64 `json:"avg_review_score"`
}

// CategoryRevenue pairs revenue and review volume of a category
type CategoryRevenue struct {
	Category     string  `json:"category"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalReviews int     `json:"total_reviews"`
}

// CategorySales is the number of items sold in a category
type CategorySales struct {
	Category  string `json:"category"`
	ItemsSold int    `json:"items_sold"`
}

// GeoPoint is a plotted location. CustomerID is empty for per-zip points.
type GeoPoint struct {
	CustomerID    string  `json:"customer_id,omitempty"`
	ZipCodePrefix string  `json:"zip_code_prefix"`
	City          string  `json:"city,omitempty"`
	State         string  `json:"state"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
}

// ChartKind tells the renderer which chart to draw
type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartScatter ChartKind = "scatter"
)

// ChartHint describes how a result set is meant to be drawn
type ChartHint struct {
	Kind   ChartKind `json:"kind"`
	X      string    `json:"x"`
	Y      string    `json:"y"`
	Hue    string    `json:"hue,omitempty"`
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
}

// Column describes a field of a result set
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"` // string|number|integer
}

// ResultSet is the ordered, presentation-ready output of a query
type ResultSet struct {
	Question Question        `json:"question"`
	Columns  []Column        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	Empty    bool            `json:"empty"`
}

// Len returns the number of rows
func (r *ResultSet) Len() int { return len(r.Rows) }

// QuestionInfo describes a question for the selector
type QuestionInfo struct {
	Key         Question   `json:"key"`
	Title       string     `json:"title"`
	Caption     string     `json:"caption"`
	Chart       ChartHint  `json:"chart"`
	FilterAxes  []string   `json:"filter_axes"`
	DefaultMode FilterMode `json:"default_mode,omitempty"`
}

// QueryResult is what the presentation layer receives for one interaction
type QueryResult struct {
	Info       QuestionInfo  `json:"info"`
	Result     *ResultSet    `json:"result"`
	Mode       FilterMode    `json:"mode,omitempty"`
	Variant    string        `json:"variant"`
	Warnings   []string      `json:"warnings,omitempty"`
	ExecutedAt time.Time     `json:"executed_at"`
	Duration   time.Duration `json:"duration_ns"`
}

// DateBounds is the span of purchase timestamps in the dataset
type DateBounds struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}
