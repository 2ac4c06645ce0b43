package services

import (
	"math"
	"time"

	"olistdash/internal/analytics"
	api "olistdash/pkg/contracts/api/v1"
	"olistdash/pkg/contracts/domain"
)

// ParamsFromRequest converts a validated request into pipeline params.
// A range with one bound set is open on the other side.
func ParamsFromRequest(req api.QueryRequest) (analytics.Params, error) {
	params := analytics.Params{
		Mode:  domain.FilterMode(req.Mode),
		Limit: req.Limit,
	}

	if req.Start != "" || req.End != "" {
		start, err := parseDay("start", req.Start)
		if err != nil {
			return analytics.Params{}, err
		}
		end, err := parseDay("end", req.End)
		if err != nil {
			return analytics.Params{}, err
		}
		params.Dates = &analytics.DateRange{Start: start, End: end}
	}

	params.Zip = rangeOf(req.ZipMin, req.ZipMax)
	params.Score = rangeOf(req.ScoreMin, req.ScoreMax)
	if params.Score != nil && math.IsInf(params.Score.Max, 1) {
		params.Score.Max = 5
	}
	params.Revenue = rangeOf(req.RevenueMin, req.RevenueMax)
	params.Reviews = rangeOf(req.ReviewsMin, req.ReviewsMax)

	return params, params.Validate()
}

func parseDay(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, &analytics.RangeError{Field: field, Reason: "start and end must be given together"}
	}
	t, err := time.Parse(api.DateLayout, value)
	if err != nil {
		return time.Time{}, &analytics.RangeError{Field: field, Reason: "must be a date formatted as YYYY-MM-DD"}
	}
	return t, nil
}

func rangeOf(min, max *float64) *analytics.Range {
	if min == nil && max == nil {
		return nil
	}
	r := &analytics.Range{Min: 0, Max: math.Inf(1)}
	if min != nil {
		r.Min = *min
	}
	if max != nil {
		r.Max = *max
	}
	return r
}
