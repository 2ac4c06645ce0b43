// Package exporter writes dashboard result sets as CSV or XLSX files.
//
// CSV output starts with a UTF-8 BOM for Excel compatibility and a header
// row of column names. XLSX output holds one sheet named after the question
// and keeps numbers as numeric cells.
//
// Example usage:
//
//	exp := exporter.New(logger)
//	f, _ := os.Create(exporter.Filename(rs.Question, exporter.FormatXLSX, time.Now()))
//	defer f.Close()
//	err := exp.Export(f, exporter.FormatXLSX, rs)
package exporter
