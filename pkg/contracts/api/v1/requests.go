// Package api contains API contract definitions for the Olist dashboard.
// Version v1 represents the current stable API version.
package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DateLayout is the layout of date controls
const DateLayout = "2006-01-02"

// QueryRequest carries the controls of one dashboard interaction. Over HTTP
// the question comes from the path and the controls from the query string;
// over WebSocket the whole request is one JSON message.
type QueryRequest struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question,omitempty" validate:"omitempty,oneof=delivery_time review_by_payment category_revenue top_categories customer_distribution"`

	Start string `json:"start,omitempty" validate:"required_with=End,omitempty,datetime=2006-01-02"`
	End   string `json:"end,omitempty" validate:"required_with=Start,omitempty,datetime=2006-01-02"`
	Mode  string `json:"mode,omitempty" validate:"omitempty,oneof=top range"`

	ZipMin     *float64 `json:"zip_min,omitempty" validate:"omitempty,gte=0"`
	ZipMax     *float64 `json:"zip_max,omitempty" validate:"omitempty,gte=0"`
	ScoreMin   *float64 `json:"score_min,omitempty" validate:"omitempty,gte=0,lte=5"`
	ScoreMax   *float64 `json:"score_max,omitempty" validate:"omitempty,gte=0,lte=5"`
	RevenueMin *float64 `json:"revenue_min,omitempty" validate:"omitempty,gte=0"`
	RevenueMax *float64 `json:"revenue_max,omitempty" validate:"omitempty,gte=0"`
	ReviewsMin *float64 `json:"reviews_min,omitempty" validate:"omitempty,gte=0"`
	ReviewsMax *float64 `json:"reviews_max,omitempty" validate:"omitempty,gte=0"`

	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`

	// Format is only read by the export endpoint
	Format string `json:"format,omitempty" validate:"omitempty,oneof=csv xlsx"`
}

// FieldError reports a control that could not be decoded
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// QueryRequestFromValues decodes a query string. Empty values are treated as
// absent.
func QueryRequestFromValues(values url.Values) (QueryRequest, error) {
	req := QueryRequest{
		Start:  strings.TrimSpace(values.Get("start")),
		End:    strings.TrimSpace(values.Get("end")),
		Mode:   strings.TrimSpace(values.Get("mode")),
		Format: strings.ToLower(strings.TrimSpace(values.Get("format"))),
	}

	numbers := []struct {
		name   string
		target **float64
	}{
		{"zip_min", &req.ZipMin},
		{"zip_max", &req.ZipMax},
		{"score_min", &req.ScoreMin},
		{"score_max", &req.ScoreMax},
		{"revenue_min", &req.RevenueMin},
		{"revenue_max", &req.RevenueMax},
		{"reviews_min", &req.ReviewsMin},
		{"reviews_max", &req.ReviewsMax},
	}
	for _, n := range numbers {
		raw := strings.TrimSpace(values.Get(n.name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return QueryRequest{}, &FieldError{Field: n.name, Reason: "must be a number"}
		}
		*n.target = &v
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return QueryRequest{}, &FieldError{Field: "limit", Reason: "must be an integer"}
		}
		req.Limit = limit
	}
	return req, nil
}
