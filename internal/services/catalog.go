package services

import (
	"olistdash/internal/analytics"
	"olistdash/pkg/contracts/domain"
)

// Filter axes a question can be narrowed by. They name the query-string
// controls the frontend should show.
const (
	AxisDates   = "dates"
	AxisZip     = "zip"
	AxisScore   = "score"
	AxisRevenue = "revenue"
	AxisReviews = "reviews"
	AxisLimit   = "limit"
)

// Catalog returns the question menu for a variant in menu order
func Catalog(v analytics.Variant) []domain.QuestionInfo {
	geo := domain.QuestionInfo{
		Key:     domain.QuestionCustomerDistribution,
		Title:   "Customer Distribution by Geolocation",
		Caption: "This scatter plot shows where customers are located within the selected date range, one point per customer.",
		Chart: domain.ChartHint{
			Kind: domain.ChartScatter, X: "lng", Y: "lat", Hue: "state",
			XLabel: "Longitude", YLabel: "Latitude",
		},
		FilterAxes: []string{AxisDates},
	}
	if v.GeoStrategy == domain.GeoStrategyStateMean {
		geo.Caption = "This scatter plot shows the distribution of customers across the top 10 states within the selected date range."
		geo.FilterAxes = []string{AxisDates, AxisLimit}
	}

	return []domain.QuestionInfo{
		{
			Key:     domain.QuestionDeliveryTime,
			Title:   "Average Delivery Time by Zip Code and State",
			Caption: "The graph shows the average delivery times per zip code within the selected date range. Areas with longer delivery times indicate regions that may require improved logistics solutions.",
			Chart: domain.ChartHint{
				Kind: domain.ChartBar, X: "zip_code_prefix", Y: "avg_delivery_days", Hue: "state",
				XLabel: "Zip Code", YLabel: "Average Delivery Time (days)",
			},
			FilterAxes:  []string{AxisDates, AxisZip, AxisLimit},
			DefaultMode: v.FilterMode,
		},
		{
			Key:     domain.QuestionReviewByPayment,
			Title:   "Average Review Scores by Payment Method",
			Caption: "This bar chart shows the average review scores for each payment method within the selected date range.",
			Chart: domain.ChartHint{
				Kind: domain.ChartBar, X: "payment_type", Y: "avg_review_score",
				XLabel: "Payment Method", YLabel: "Average Review Score",
			},
			FilterAxes:  []string{AxisDates, AxisScore, AxisLimit},
			DefaultMode: v.FilterMode,
		},
		{
			Key:     domain.QuestionCategoryRevenue,
			Title:   "Revenue and Review Volume by Product Category",
			Caption: "This chart compares the revenue of each product category with the number of reviews it received within the selected date range.",
			Chart: domain.ChartHint{
				Kind: domain.ChartBar, X: "category", Y: "total_revenue",
				XLabel: "Product Category", YLabel: "Total Revenue",
			},
			FilterAxes: []string{AxisDates, AxisRevenue, AxisReviews},
		},
		{
			Key:     domain.QuestionTopCategories,
			Title:   "Top Selling Product Categories",
			Caption: "This chart displays the top selling product categories within the selected date range.",
			Chart: domain.ChartHint{
				Kind: domain.ChartBar, X: "category", Y: "items_sold",
				XLabel: "Product Category", YLabel: "Number of Items Sold",
			},
			FilterAxes: []string{AxisDates, AxisLimit},
		},
		geo,
	}
}
