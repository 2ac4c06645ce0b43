package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testData = "../../internal/app/testdata/olist"

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("OLIST_CONFIG_FILE", "")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"-data", testData}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_List(t *testing.T) {
	code, out, _ := runCLI(t, "-list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "QUESTION")
	for _, q := range []string{"delivery_time", "review_by_payment", "category_revenue", "top_categories", "customer_distribution"} {
		assert.Contains(t, out, q)
	}
}

func TestRun_Table(t *testing.T) {
	code, out, errOut := runCLI(t, "-question", "top_categories", "-translate", "-limit", "1")
	require.Equal(t, 0, code, errOut)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "CATEGORY")
	assert.Contains(t, lines[1], "bed_bath_table")
	assert.Contains(t, lines[1], "3")
}

func TestRun_CSVToStdout(t *testing.T) {
	code, out, errOut := runCLI(t, "-question", "review_by_payment", "-format", "csv", "-mode", "top")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "payment_type,avg_review_score")
	assert.Contains(t, out, "boleto,5")
}

func TestRun_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.xlsx")
	code, _, errOut := runCLI(t, "-question", "top_categories", "-format", "xlsx", "-o", path)
	require.Equal(t, 0, code, errOut)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"category", "items_sold"}, rows[0])
}

func TestRun_EmptyResultWarns(t *testing.T) {
	code, _, errOut := runCLI(t, "-question", "delivery_time", "-start", "2016-01-01", "-end", "2016-01-31")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, errOut, "warning: no data matches the selected filters")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing question", nil, "missing -question"},
		{"unknown question", []string{"-question", "churn"}, "unknown or missing -question"},
		{"bad variant", []string{"-variant", "gold", "-question", "top_categories"}, "unknown dashboard variant"},
		{"bad format", []string{"-question", "top_categories", "-format", "pdf"}, "unsupported export format"},
		{"xlsx without output", []string{"-question", "top_categories", "-format", "xlsx"}, "needs -o"},
		{"start without end", []string{"-question", "delivery_time", "-start", "2017-01-01"}, "-end"},
		{"score too high", []string{"-question", "review_by_payment", "-score_max", "9"}, "-score_max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestRun_MissingData(t *testing.T) {
	t.Setenv("OLIST_CONFIG_FILE", "")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-data", t.TempDir(), "-question", "top_categories"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "load dataset")
	assert.Empty(t, stdout.String())
}
