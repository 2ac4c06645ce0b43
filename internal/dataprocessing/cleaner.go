package dataprocessing

// CleanReport summarises what the cleaning stage did to one table
type CleanReport struct {
	Table       string `json:"table"`
	RowsIn      int    `json:"rows_in"`
	RowsOut     int    `json:"rows_out"`
	RowsDropped int    `json:"rows_dropped"`
	CellsFilled int    `json:"cells_filled"`
	Duplicates  int    `json:"duplicates"`
	Unparseable int    `json:"unparseable"`
}

// Cleaner applies the per-table null policy, timestamp parsing and
// duplicate removal.
type Cleaner struct {
	dateColumns []string
}

// NewCleaner creates a cleaner for the standard date column list
func NewCleaner() *Cleaner {
	return &Cleaner{dateColumns: DateColumns}
}

// Clean returns the cleaned copy of table; the input is left untouched.
func (c *Cleaner) Clean(tableName string, table *Table) *Table {
	cleaned, _ := c.CleanWithReport(tableName, table)
	return cleaned
}

// CleanWithReport cleans a table and reports what changed.
//
// Dates are parsed first so that the drop policy treats an unparseable
// purchase_timestamp as absent and duplicate detection compares parsed
// values. The three steps together are idempotent.
func (c *Cleaner) CleanWithReport(tableName string, table *Table) (*Table, CleanReport) {
	out := table.Clone()
	out.Name = tableName
	report := CleanReport{Table: tableName, RowsIn: table.Len()}

	report.Unparseable = c.parseDates(out)

	if keys := RequiredColumns(tableName); keys != nil {
		report.RowsDropped = dropMissing(out, keys)
	} else {
		report.CellsFilled = forwardFill(out)
	}

	report.Duplicates = dropDuplicates(out)
	report.RowsOut = out.Len()
	return out, report
}

// parseDates converts every configured date column in place and returns
// how many cells could not be parsed.
func (c *Cleaner) parseDates(t *Table) int {
	unparseable := 0
	for _, col := range c.dateColumns {
		idx, err := t.Col(col)
		if err != nil {
			continue
		}
		for _, row := range t.Rows {
			before := row[idx].Kind
			row[idx] = parseDateCell(row[idx])
			if before == KindString && row[idx].Kind == KindUnparseable {
				unparseable++
			}
		}
	}
	return unparseable
}

// dropMissing removes rows with a missing value in any key column present
// in the table.
func dropMissing(t *Table, keys []string) int {
	var idx []int
	for _, key := range keys {
		if i, err := t.Col(key); err == nil {
			idx = append(idx, i)
		}
	}
	kept := t.Rows[:0]
	dropped := 0
	for _, row := range t.Rows {
		missing := false
		for _, i := range idx {
			if row[i].Missing() {
				missing = true
				break
			}
		}
		if missing {
			dropped++
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept
	return dropped
}

// forwardFill replaces absent cells with the last non-absent value above
// them in the same column. Leading absent cells stay absent.
func forwardFill(t *Table) int {
	filled := 0
	last := make([]Cell, len(t.Columns))
	seen := make([]bool, len(t.Columns))
	for _, row := range t.Rows {
		for j := range row {
			if row[j].IsAbsent() {
				if seen[j] {
					row[j] = last[j]
					filled++
				}
				continue
			}
			last[j] = row[j]
			seen[j] = true
		}
	}
	return filled
}

// dropDuplicates keeps the first occurrence of every fully identical row
func dropDuplicates(t *Table) int {
	seen := make(map[string]struct{}, len(t.Rows))
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		k := rowKey(row)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, row)
	}
	removed := len(t.Rows) - len(kept)
	t.Rows = kept
	return removed
}
