package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"olistdash/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8 CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool
}

// WriteCSV writes the result set as CSV with a header row of column names
func WriteCSV(w io.Writer, rs *domain.ResultSet, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	headers := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		headers[i] = c.Name
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	record := make([]string, len(rs.Columns))
	for i, row := range rs.Rows {
		for j := range record {
			record[j] = ""
			if j < len(row) {
				record[j] = formatValue(row[j])
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
