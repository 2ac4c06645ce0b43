package dataprocessing

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "customers.csv",
		"customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state\n"+
			"c1,u1,01001,sao paulo,SP\n"+
			"c1,u1,01001,sao paulo,SP\n"+
			",u2,01002,sao paulo,SP\n")
	writeFile(t, dir, "sellers.csv",
		"seller_id,seller_zip_code_prefix,seller_city,seller_state\n"+
			"s1,01001,sao paulo,SP\n"+
			"s2,,,\n")

	loader := NewLoader(dir, map[string]string{
		TableCustomers: "customers.csv",
		TableSellers:   "sellers.csv",
	}, slog.Default())

	store, err := Initialize(context.Background(), loader, NewCleaner(), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, []string{TableCustomers, TableSellers}, store.Names())
	assert.Equal(t, map[string]int{TableCustomers: 1, TableSellers: 2}, store.RowCounts())
	assert.True(t, store.Has(TableSellers))
	assert.False(t, store.Has(TableOrders))

	sellers, err := store.Table(TableSellers)
	require.NoError(t, err)
	assert.Equal(t, "SP", sellers.Rows[1][3].String())

	reports := store.Reports()
	require.Len(t, reports, 2)
	assert.Equal(t, CleanReport{Table: TableCustomers, RowsIn: 3, RowsOut: 1, RowsDropped: 1, Duplicates: 1}, reports[0])
	assert.Equal(t, 3, reports[1].CellsFilled)
}

func TestInitialize_LoadFailure(t *testing.T) {
	loader := NewLoader(t.TempDir(), map[string]string{TableOrders: "orders.csv"}, nil)

	_, err := Initialize(context.Background(), loader, NewCleaner(), nil)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestStore_TableNotLoaded(t *testing.T) {
	store := NewStore(map[string]*Table{})

	_, err := store.Table(TableGeolocation)
	assert.ErrorIs(t, err, ErrTableNotLoaded)
	assert.Contains(t, err.Error(), TableGeolocation)
}
