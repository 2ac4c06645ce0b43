package dataprocessing

import (
	"strconv"
	"strings"
	"time"
)

// Kind tags the content of a Cell
type Kind uint8

const (
	// KindAbsent marks a missing value
	KindAbsent Kind = iota
	// KindString is a raw text value as read from the file
	KindString
	// KindTime is a parsed timestamp
	KindTime
	// KindUnparseable is a date cell whose text could not be parsed
	KindUnparseable
)

// Cell is a single tagged value of a Table
type Cell struct {
	Kind Kind
	Str  string
	Time time.Time
}

// Absent returns an absent cell
func Absent() Cell { return Cell{} }

// Text returns a string cell
func Text(s string) Cell { return Cell{Kind: KindString, Str: s} }

// At returns a timestamp cell
func At(t time.Time) Cell { return Cell{Kind: KindTime, Time: t} }

// IsAbsent reports whether the cell holds no value at all.
// Unparseable dates are not absent: they were present in the file.
func (c Cell) IsAbsent() bool { return c.Kind == KindAbsent }

// Missing reports whether the cell carries no usable value for queries
func (c Cell) Missing() bool { return c.Kind == KindAbsent || c.Kind == KindUnparseable }

// String returns the textual form of the cell; absent cells render as "".
func (c Cell) String() string {
	switch c.Kind {
	case KindString, KindUnparseable:
		return c.Str
	case KindTime:
		return c.Time.Format(TimestampLayout)
	default:
		return ""
	}
}

// Float parses the cell as a number
func (c Cell) Float() (float64, bool) {
	if c.Kind != KindString {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(c.Str), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Timestamp returns the parsed time of a timestamp cell
func (c Cell) Timestamp() (time.Time, bool) {
	if c.Kind != KindTime {
		return time.Time{}, false
	}
	return c.Time, true
}

// key is the identity of the cell used for duplicate detection
func (c Cell) key() string {
	switch c.Kind {
	case KindString:
		return "s" + c.Str
	case KindTime:
		return "t" + strconv.FormatInt(c.Time.UnixNano(), 10)
	case KindUnparseable:
		return "u" + c.Str
	default:
		return "a"
	}
}

// Table is an in-memory tabular dataset with named columns.
// Tables are treated as values: operations return new tables and never
// modify their receiver.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Cell

	index map[string]int
}

// NewTable creates a table with the given columns and rows
func NewTable(name string, columns []string, rows [][]Cell) *Table {
	t := &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    rows,
	}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		t.index[col] = i
	}
}

// Len returns the number of rows
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the table carries the named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Col returns the position of a column or a SchemaError when it is missing
func (t *Table) Col(name string) (int, error) {
	if i, ok := t.index[name]; ok {
		return i, nil
	}
	return -1, &SchemaError{Table: t.Name, Column: name}
}

// Cols resolves several columns at once
func (t *Table) Cols(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		idx, err := t.Col(name)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	rows := make([][]Cell, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]Cell(nil), row...)
	}
	return NewTable(t.Name, t.Columns, rows)
}

// Column returns a copy of all cells of the named column
func (t *Table) Column(name string) ([]Cell, error) {
	idx, err := t.Col(name)
	if err != nil {
		return nil, err
	}
	out := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Equal reports whether two tables hold the same columns and cells in the same order
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.Columns) != len(other.Columns) || len(t.Rows) != len(other.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != other.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		for j := range t.Rows[i] {
			if t.Rows[i][j].key() != other.Rows[i][j].key() {
				return false
			}
		}
	}
	return true
}

// rowKey is the identity of a full row
func rowKey(row []Cell) string {
	var b strings.Builder
	for i, c := range row {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(c.key())
	}
	return b.String()
}
