package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Store is the immutable set of cleaned tables shared by every query.
// It is built once by Initialize and never modified afterwards, so it can be
// read from concurrent requests without locking.
type Store struct {
	tables  map[string]*Table
	reports []CleanReport
}

// NewStore builds a store from already-cleaned tables
func NewStore(tables map[string]*Table) *Store {
	copied := make(map[string]*Table, len(tables))
	for name, t := range tables {
		copied[name] = t
	}
	return &Store{tables: copied}
}

// Initialize loads every table with the loader, cleans each one and returns
// the resulting store.
func Initialize(ctx context.Context, loader *Loader, cleaner *Cleaner, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raw, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	store := &Store{tables: make(map[string]*Table, len(raw))}
	for _, name := range sortedNames(raw) {
		cleaned, report := cleaner.CleanWithReport(name, raw[name])
		store.tables[name] = cleaned
		store.reports = append(store.reports, report)

		logger.InfoContext(ctx, "table cleaned",
			slog.String("component", "cleaning_stage"),
			slog.String("table", name),
			slog.Int("rows_in", report.RowsIn),
			slog.Int("rows_out", report.RowsOut),
			slog.Int("rows_dropped", report.RowsDropped),
			slog.Int("cells_filled", report.CellsFilled),
			slog.Int("duplicates", report.Duplicates),
			slog.Int("unparseable_dates", report.Unparseable))
	}
	return store, nil
}

// Table returns the named table or an error when it was not loaded
func (s *Store) Table(name string) (*Table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotLoaded, name)
	}
	return t, nil
}

// Has reports whether the named table is present
func (s *Store) Has(name string) bool {
	_, ok := s.tables[name]
	return ok
}

// Names lists the loaded tables in sorted order
func (s *Store) Names() []string {
	return sortedNames(s.tables)
}

// RowCounts returns the number of rows per table
func (s *Store) RowCounts() map[string]int {
	counts := make(map[string]int, len(s.tables))
	for name, t := range s.tables {
		counts[name] = t.Len()
	}
	return counts
}

// Reports returns the cleaning reports recorded during Initialize
func (s *Store) Reports() []CleanReport {
	return append([]CleanReport(nil), s.reports...)
}

func sortedNames(tables map[string]*Table) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
