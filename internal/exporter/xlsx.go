package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"olistdash/pkg/contracts/domain"
)

// WriteXLSX writes the result set as a single-sheet workbook named after
// the question. Numbers stay numeric cells.
func WriteXLSX(w io.Writer, rs *domain.ResultSet) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(rs.Question)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(rs.Columns))
	for i, c := range rs.Columns {
		header[i] = c.Name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range rs.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetName keeps within Excel's 31 character limit
func sheetName(q domain.Question) string {
	name := string(q)
	if name == "" {
		name = "result"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
