package dataprocessing

import (
	"strings"
	"time"
)

// TimestampLayout is the layout used by the dataset and by exports
const TimestampLayout = "2006-01-02 15:04:05"

// timestampLayouts are tried in order; all are interpreted as UTC
var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// Timestamp is the tagged result of parsing a date cell: either a valid
// time or an explicit unparseable marker that keeps the raw text.
type Timestamp struct {
	Time  time.Time
	Valid bool
	Raw   string
}

// ParseTimestamp parses text as a timestamp. It never fails: text that
// matches none of the known layouts yields Valid == false.
func ParseTimestamp(raw string) Timestamp {
	s := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{Time: t.UTC(), Valid: true, Raw: raw}
		}
	}
	return Timestamp{Raw: raw}
}

// Cell converts the parse result into a table cell
func (ts Timestamp) Cell() Cell {
	if ts.Valid {
		return At(ts.Time)
	}
	return Cell{Kind: KindUnparseable, Str: ts.Raw}
}

// parseDateCell converts a raw string cell; absent, parsed and unparseable
// cells are returned unchanged.
func parseDateCell(c Cell) Cell {
	if c.Kind != KindString {
		return c
	}
	return ParseTimestamp(c.Str).Cell()
}

// WholeDays returns the number of whole days in d, rounding toward negative
// infinity like a calendar day difference.
func WholeDays(d time.Duration) int {
	const day = 24 * time.Hour
	days := d / day
	if d%day != 0 && d < 0 {
		days--
	}
	return int(days)
}
