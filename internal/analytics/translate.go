package analytics

import (
	dp "olistdash/internal/dataprocessing"
)

// Translator maps product category names to English display names
type Translator struct {
	names map[string]string
}

// NewTranslator builds a translator from the category translation table.
// Rows with a missing name on either side are skipped; the first
// translation of a name wins.
func NewTranslator(table *dp.Table) (*Translator, error) {
	cols, err := table.Cols(dp.ColCategoryName, dp.ColCategoryNameEnglish)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, table.Len())
	for _, row := range table.Rows {
		from, to := row[cols[0]], row[cols[1]]
		if from.Missing() || to.Missing() {
			continue
		}
		if _, seen := names[from.String()]; !seen {
			names[from.String()] = to.String()
		}
	}
	return &Translator{names: names}, nil
}

// Translate returns the English name of a category, or the name itself when
// no translation is known. A nil translator passes every name through.
func (t *Translator) Translate(name string) string {
	if t == nil {
		return name
	}
	if english, ok := t.names[name]; ok {
		return english
	}
	return name
}

// Len returns the number of known translations
func (t *Translator) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}
