package analytics

import (
	"fmt"
	"math"
	"time"

	"olistdash/pkg/contracts/domain"
)

// DefaultLimit is the number of groups kept by the top filter mode
const DefaultLimit = 10

// Range is an inclusive numeric interval
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the range, bounds included
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// DateRange is an inclusive span of calendar days
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the calendar day of t lies inside the range
func (d DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	return !day.Before(truncateDay(d.Start)) && !day.After(truncateDay(d.End))
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Params carries the user controls of one interaction. Nil ranges are not
// applied. Mode overrides the variant's filter mode when set.
type Params struct {
	Dates   *DateRange
	Mode    domain.FilterMode
	Zip     *Range
	Score   *Range
	Revenue *Range
	Reviews *Range
	Limit   int
}

// RangeError reports an invalid user control
type RangeError struct {
	Field  string
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks every supplied control
func (p Params) Validate() error {
	if p.Dates != nil && p.Dates.End.Before(p.Dates.Start) {
		return &RangeError{Field: "date_range", Reason: "end is before start"}
	}
	switch p.Mode {
	case "", domain.FilterModeTop, domain.FilterModeRange:
	default:
		return &RangeError{Field: "mode", Reason: fmt.Sprintf("unknown filter mode %q", p.Mode)}
	}
	for _, r := range []struct {
		field string
		rng   *Range
	}{
		{"zip_range", p.Zip},
		{"score_range", p.Score},
		{"revenue_range", p.Revenue},
		{"reviews_range", p.Reviews},
	} {
		if r.rng == nil {
			continue
		}
		if math.IsNaN(r.rng.Min) || math.IsNaN(r.rng.Max) {
			return &RangeError{Field: r.field, Reason: "bounds must be numbers"}
		}
		if r.rng.Min > r.rng.Max {
			return &RangeError{Field: r.field, Reason: "min is greater than max"}
		}
	}
	if p.Score != nil {
		if p.Score.Min < 0 || p.Score.Max > 5 {
			return &RangeError{Field: "score_range", Reason: "bounds must lie within 0..5"}
		}
		if p.Score.Min != math.Trunc(p.Score.Min) || p.Score.Max != math.Trunc(p.Score.Max) {
			return &RangeError{Field: "score_range", Reason: "bounds must be integers"}
		}
	}
	if p.Limit < 0 {
		return &RangeError{Field: "limit", Reason: "must not be negative"}
	}
	return nil
}

func (p Params) limit() int {
	if p.Limit > 0 {
		return p.Limit
	}
	return DefaultLimit
}

// Variant is one dashboard configuration of the shared pipeline
type Variant struct {
	Name        string             `json:"name" yaml:"name"`
	FilterMode  domain.FilterMode  `json:"filter_mode" yaml:"filter_mode"`
	GeoStrategy domain.GeoStrategy `json:"geo_strategy" yaml:"geo_strategy"`
}

// Variant presets
var (
	VariantClassic = Variant{
		Name:        "classic",
		FilterMode:  domain.FilterModeTop,
		GeoStrategy: domain.GeoStrategyStateMean,
	}
	VariantInteractive = Variant{
		Name:        "interactive",
		FilterMode:  domain.FilterModeRange,
		GeoStrategy: domain.GeoStrategyStateMean,
	}
	VariantSilver = Variant{
		Name:        "silver",
		FilterMode:  domain.FilterModeRange,
		GeoStrategy: domain.GeoStrategySilverMedian,
	}
)

// VariantByName resolves a preset by name
func VariantByName(name string) (Variant, error) {
	switch name {
	case VariantClassic.Name:
		return VariantClassic, nil
	case VariantInteractive.Name:
		return VariantInteractive, nil
	case VariantSilver.Name, "":
		return VariantSilver, nil
	default:
		return Variant{}, fmt.Errorf("unknown dashboard variant %q", name)
	}
}

// mode resolves the filter mode of one call
func (v Variant) mode(p Params) domain.FilterMode {
	if p.Mode != "" {
		return p.Mode
	}
	if v.FilterMode == "" {
		return domain.FilterModeRange
	}
	return v.FilterMode
}
