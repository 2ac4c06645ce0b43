package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"olistdash/pkg/contracts/domain"
)

// Exporter writes result sets in the supported formats
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger.With(slog.String("component", "exporter"))}
}

// Export writes rs to w in the given format
func (e *Exporter) Export(w io.Writer, format Format, rs *domain.ResultSet) error {
	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(w, rs, WriteOptions{BOMPrefix: true})
	case FormatXLSX:
		err = WriteXLSX(w, rs)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return err
	}

	e.logger.Info("result exported",
		slog.String("question", string(rs.Question)),
		slog.String("format", string(format)),
		slog.Int("rows", rs.Len()))
	return nil
}

// Filename names an export of question taken at t
func Filename(question domain.Question, format Format, t time.Time) string {
	return fmt.Sprintf("olist_%s_%s.%s", question, t.UTC().Format("20060102_150405"), format.Extension())
}
