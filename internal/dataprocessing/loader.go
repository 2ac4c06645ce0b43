package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyFile is returned for files without a header row
var ErrEmptyFile = errors.New("file is empty")

// ErrInvalidEncoding is returned for files that are not valid UTF-8
var ErrInvalidEncoding = errors.New("file is not valid UTF-8")

// LoadError reports a table that could not be read. It is fatal at startup.
type LoadError struct {
	Table string
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s from %s: %v", e.Table, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader reads the named dataset files into tables
type Loader struct {
	dataDir string
	files   map[string]string
	logger  *slog.Logger
}

// NewLoader creates a loader for the given table -> file mapping. Relative
// file names are resolved against dataDir.
func NewLoader(dataDir string, files map[string]string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dataDir: dataDir,
		files:   files,
		logger:  logger.With(slog.String("component", "dataset_loader")),
	}
}

// Path returns the resolved file path of a table
func (l *Loader) Path(table string) string {
	name := l.files[table]
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.dataDir, name)
}

// Load reads every configured table. Any failure aborts the whole load.
func (l *Loader) Load(ctx context.Context) (map[string]*Table, error) {
	names := make([]string, 0, len(l.files))
	for name := range l.files {
		names = append(names, name)
	}

	results := make([]*Table, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := l.LoadTable(name, l.Path(name))
			if err != nil {
				return err
			}
			results[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tables := make(map[string]*Table, len(names))
	for i, name := range names {
		tables[name] = results[i]
		l.logger.Info("table loaded",
			slog.String("table", name),
			slog.String("path", l.Path(name)),
			slog.Int("rows", results[i].Len()),
			slog.Int("columns", len(results[i].Columns)))
	}
	return tables, nil
}

// LoadTable reads one file. Files ending in .xlsx are read from their first
// sheet; everything else is parsed as CSV.
func (l *Loader) LoadTable(name, path string) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = readWorkbook(path)
	} else {
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, &LoadError{Table: name, Path: path, Err: err}
	}

	t, err := buildTable(name, records)
	if err != nil {
		return nil, &LoadError{Table: name, Path: path, Err: err}
	}
	return t, nil
}

func readCSV(path string) ([][]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidEncoding
	}
	return ReadRecords(bytes.NewReader(content))
}

// ReadRecords parses CSV content; every row must have as many fields as the header.
func ReadRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	return records, nil
}

func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	// GetRows trims trailing empty cells; pad to the header width
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		} else if len(row) > width {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(row), width)
		}
	}
	return rows, nil
}

// buildTable validates the header and converts records into cells
func buildTable(name string, records [][]string) (*Table, error) {
	header := records[0]
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("header column %d is empty", i+1)
		}
		col := CanonicalColumn(name, h)
		if seen[col] {
			return nil, fmt.Errorf("duplicate header column %q", col)
		}
		seen[col] = true
		columns[i] = col
	}

	rows := make([][]Cell, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]Cell, len(columns))
		for j, raw := range rec {
			row[j] = ParseCell(raw)
		}
		rows = append(rows, row)
	}
	return NewTable(name, columns, rows), nil
}
