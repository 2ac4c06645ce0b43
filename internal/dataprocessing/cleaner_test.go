package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableOf(name string, cols []string, rows ...[]string) *Table {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, v := range row {
			cells[i][j] = ParseCell(v)
		}
	}
	return NewTable(name, cols, cells)
}

func messyOrders() *Table {
	return tableOf(TableOrders,
		[]string{ColOrderID, ColCustomerID, ColPurchaseTimestamp, ColDeliveredCustomerDate},
		[]string{"o1", "c1", "2017-10-02 10:56:33", "2017-10-10 21:25:13"},
		[]string{"o2", "", "2017-10-03 09:00:00", ""},
		[]string{"o3", "c3", "", ""},
		[]string{"o4", "c4", "yesterday", ""},
		[]string{"o1", "c1", "2017-10-02 10:56:33", "2017-10-10 21:25:13"},
		[]string{"o5", "c5", "2017-10-05", "garbage"},
	)
}

func messyGeolocation() *Table {
	return tableOf(TableGeolocation,
		[]string{ColZipCodePrefix, ColLat, ColLng, ColState},
		[]string{"", "-23.5", "-46.6", "SP"},
		[]string{"01001", "", "-46.6", ""},
		[]string{"01002", "-23.6", "", "SP"},
		[]string{"01002", "-23.6", "-46.6", "SP"},
		[]string{"01002", "-23.6", "", ""},
	)
}

func TestCleaner_DropPolicy(t *testing.T) {
	cleaned, report := NewCleaner().CleanWithReport(TableOrders, messyOrders())

	ids, err := cleaned.Column(ColOrderID)
	require.NoError(t, err)
	var got []string
	for _, c := range ids {
		got = append(got, c.String())
	}
	assert.Equal(t, []string{"o1", "o5"}, got)

	assert.Equal(t, 6, report.RowsIn)
	assert.Equal(t, 3, report.RowsDropped)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 2, report.RowsOut)
	assert.Equal(t, 2, report.Unparseable)
}

func TestCleaner_ForwardFill(t *testing.T) {
	cleaned, report := NewCleaner().CleanWithReport(TableGeolocation, messyGeolocation())

	want := [][]Cell{
		{Absent(), Text("-23.5"), Text("-46.6"), Text("SP")},
		{Text("01001"), Text("-23.5"), Text("-46.6"), Text("SP")},
		{Text("01002"), Text("-23.6"), Text("-46.6"), Text("SP")},
	}
	assert.Equal(t, want, cleaned.Rows)
	assert.Equal(t, 5, report.CellsFilled)
	assert.Equal(t, 2, report.Duplicates)
	assert.Zero(t, report.RowsDropped)
}

func TestCleaner_UnparseableDatesAreNotFilled(t *testing.T) {
	reviews := tableOf(TableOrderReviews,
		[]string{ColReviewID, ColReviewCreationDate},
		[]string{"r1", "2018-01-01 00:00:00"},
		[]string{"r2", "not a date"},
		[]string{"r3", ""},
	)
	cleaned := NewCleaner().Clean(TableOrderReviews, reviews)

	dates, err := cleaned.Column(ColReviewCreationDate)
	require.NoError(t, err)
	assert.Equal(t, KindTime, dates[0].Kind)
	assert.Equal(t, KindUnparseable, dates[1].Kind)
	assert.True(t, dates[1].Missing())
	assert.Equal(t, KindUnparseable, dates[2].Kind, "fill copies the previous cell")
}

func TestCleaner_Idempotent(t *testing.T) {
	cleaner := NewCleaner()
	inputs := map[string]*Table{
		TableOrders:      messyOrders(),
		TableGeolocation: messyGeolocation(),
		TableCustomers: tableOf(TableCustomers,
			[]string{ColCustomerID, ColCustomerUniqueID, ColZipCodePrefix},
			[]string{"c1", "u1", "01001"},
			[]string{"c1", "u1", "01001"},
			[]string{"c2", "", "01002"},
		),
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			once := cleaner.Clean(name, raw)
			twice, report := cleaner.CleanWithReport(name, once)

			assert.True(t, once.Equal(twice))
			assert.Zero(t, report.RowsDropped)
			assert.Zero(t, report.Duplicates)
			assert.Zero(t, report.CellsFilled)
			assert.Zero(t, report.Unparseable)
		})
	}
}

func TestCleaner_Invariants(t *testing.T) {
	cleaner := NewCleaner()
	for name, keys := range requiredColumns {
		t.Run(name, func(t *testing.T) {
			raw := tableOf(name, append([]string{"extra"}, keys...),
				append([]string{"a"}, repeat("2017-01-01", len(keys))...),
				append([]string{"b"}, append(repeat("2017-01-01", len(keys)-1), "")...),
				append([]string{"c"}, append([]string{""}, repeat("2017-01-01", len(keys)-1)...)...),
			)
			cleaned := cleaner.Clean(name, raw)
			for _, key := range keys {
				col, err := cleaned.Column(key)
				require.NoError(t, err)
				for _, c := range col {
					assert.False(t, c.Missing(), "%s.%s", name, key)
				}
			}
		})
	}
}

func repeat(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestCleaner_DateColumnsNeverHoldText(t *testing.T) {
	cleaned := NewCleaner().Clean(TableOrders, messyOrders())
	for _, col := range DateColumns {
		if !cleaned.HasColumn(col) {
			continue
		}
		cells, err := cleaned.Column(col)
		require.NoError(t, err)
		for _, c := range cells {
			assert.NotEqual(t, KindString, c.Kind, col)
		}
	}
}

func TestCleaner_DoesNotModifyInput(t *testing.T) {
	raw := messyOrders()
	snapshot := raw.Clone()

	NewCleaner().Clean(TableOrders, raw)

	assert.True(t, raw.Equal(snapshot))
	assert.Equal(t, KindString, raw.Rows[0][2].Kind)
}

func TestCleaner_DuplicatesCompareParsedTimestamps(t *testing.T) {
	orders := tableOf(TableOrders,
		[]string{ColOrderID, ColCustomerID, ColPurchaseTimestamp},
		[]string{"o1", "c1", "2017-10-02 10:56:33"},
		[]string{"o1", "c1", "2017-10-02T10:56:33"},
	)
	cleaned := NewCleaner().Clean(TableOrders, orders)

	require.Equal(t, 1, cleaned.Len())
	ts, ok := cleaned.Rows[0][2].Timestamp()
	require.True(t, ok)
	assert.Equal(t, time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC), ts)
}
