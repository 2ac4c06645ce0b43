package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dp "olistdash/internal/dataprocessing"
)

// rawTable builds an uncleaned table from file text; "" reads as absent.
func rawTable(name string, cols []string, rows ...[]string) *dp.Table {
	cells := make([][]dp.Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]dp.Cell, len(row))
		for j, v := range row {
			cells[i][j] = dp.ParseCell(v)
		}
	}
	return dp.NewTable(name, cols, cells)
}

// fixture holds the raw tables of a test dataset; missing ones default to
// empty tables with the right columns.
type fixture struct {
	tables map[string]*dp.Table
}

var fixtureColumns = map[string][]string{
	dp.TableOrders:        {dp.ColOrderID, dp.ColCustomerID, dp.ColOrderStatus, dp.ColPurchaseTimestamp, dp.ColDeliveredCustomerDate},
	dp.TableCustomers:     {dp.ColCustomerID, dp.ColCustomerUniqueID, dp.ColZipCodePrefix, dp.ColCity, dp.ColState},
	dp.TableGeolocation:   {dp.ColZipCodePrefix, dp.ColLat, dp.ColLng, dp.ColCity, dp.ColState},
	dp.TableOrderItems:    {dp.ColOrderID, "order_item_id", dp.ColProductID, dp.ColSellerID, dp.ColPrice},
	dp.TableProducts:      {dp.ColProductID, dp.ColCategoryName},
	dp.TableOrderReviews:  {dp.ColReviewID, dp.ColOrderID, dp.ColReviewScore},
	dp.TableOrderPayments: {dp.ColOrderID, "payment_sequential", dp.ColPaymentType, dp.ColPaymentValue},
}

func newFixture() *fixture {
	return &fixture{tables: make(map[string]*dp.Table)}
}

func (f *fixture) with(name string, rows ...[]string) *fixture {
	f.tables[name] = rawTable(name, fixtureColumns[name], rows...)
	return f
}

func (f *fixture) store(t *testing.T) *dp.Store {
	t.Helper()
	cleaner := dp.NewCleaner()
	cleaned := make(map[string]*dp.Table)
	for name, cols := range fixtureColumns {
		raw, ok := f.tables[name]
		if !ok {
			raw = rawTable(name, cols)
		}
		cleaned[name] = cleaner.Clean(name, raw)
	}
	for name, raw := range f.tables {
		if _, ok := cleaned[name]; !ok {
			cleaned[name] = cleaner.Clean(name, raw)
		}
	}
	return dp.NewStore(cleaned)
}

func (f *fixture) pipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	return NewPipeline(f.store(t), opts...)
}

// shop is a small consistent dataset touching every question.
func shop() *fixture {
	return newFixture().
		with(dp.TableCustomers,
			[]string{"c1", "u1", "01001", "sao paulo", "SP"},
			[]string{"c2", "u2", "01001", "sao paulo", "SP"},
			[]string{"c3", "u3", "20000", "rio de janeiro", "RJ"},
			[]string{"c4", "u4", "99999", "nowhere", "AC"},
		).
		with(dp.TableOrders,
			[]string{"o1", "c1", "delivered", "2017-01-10 10:00:00", "2017-01-13 12:00:00"},
			[]string{"o2", "c2", "delivered", "2017-02-01 08:00:00", "2017-02-08 09:00:00"},
			[]string{"o3", "c3", "delivered", "2017-03-05 00:00:00", "2017-03-07 00:00:00"},
			[]string{"o4", "c4", "shipped", "2017-04-01 00:00:00", ""},
		).
		with(dp.TableGeolocation,
			[]string{"01001", "-23.55", "-46.63", "sao paulo", "SP"},
			[]string{"20000", "-22.90", "-43.17", "rio de janeiro", "RJ"},
		).
		with(dp.TableOrderItems,
			[]string{"o1", "1", "p1", "s1", "100.00"},
			[]string{"o2", "1", "p2", "s1", "50.00"},
			[]string{"o2", "2", "p1", "s2", "100.00"},
			[]string{"o3", "1", "p3", "s2", "20.00"},
		).
		with(dp.TableProducts,
			[]string{"p1", "beleza_saude"},
			[]string{"p2", "esporte_lazer"},
			[]string{"p3", "beleza_saude"},
		).
		with(dp.TableOrderReviews,
			[]string{"r1", "o1", "5"},
			[]string{"r2", "o2", "3"},
			[]string{"r3", "o3", "4"},
		).
		with(dp.TableOrderPayments,
			[]string{"o1", "1", "credit_card", "100.00"},
			[]string{"o2", "1", "boleto", "150.00"},
			[]string{"o3", "1", "voucher", "20.00"},
		)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dates(start, end string) *DateRange {
	return &DateRange{Start: day(start), End: day(end)}
}

func requireNoRows(t *testing.T, rows interface{}, err error) {
	t.Helper()
	require.NoError(t, err)
	require.Empty(t, rows)
}
