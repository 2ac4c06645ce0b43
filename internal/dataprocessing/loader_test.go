package dataprocessing

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_LoadTable(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(dir, nil, slog.Default())

	tests := []struct {
		name     string
		table    string
		content  string
		wantCols []string
		wantRows int
		wantErr  string
	}{
		{
			name:     "olist headers are mapped",
			table:    TableCustomers,
			content:  "customer_id,customer_unique_id,customer_zip_code_prefix,customer_city,customer_state\nc1,u1,01001,sao paulo,SP\n",
			wantCols: []string{ColCustomerID, ColCustomerUniqueID, ColZipCodePrefix, ColCity, ColState},
			wantRows: 1,
		},
		{
			name:     "canonical headers load unchanged",
			table:    TableGeolocation,
			content:  "zip_code_prefix,lat,lng,city,state\n01001,-23.5,-46.6,sao paulo,SP\n01001,-23.6,-46.7,sao paulo,SP\n",
			wantCols: []string{ColZipCodePrefix, ColLat, ColLng, ColCity, ColState},
			wantRows: 2,
		},
		{
			name:     "utf8 bom is stripped",
			table:    TableProducts,
			content:  "\xEF\xBB\xBFproduct_id,product_category_name\np1,beleza_saude\n",
			wantCols: []string{ColProductID, ColCategoryName},
			wantRows: 1,
		},
		{
			name:     "header only",
			table:    TableSellers,
			content:  "seller_id,seller_zip_code_prefix,seller_city,seller_state\n",
			wantCols: []string{ColSellerID, ColZipCodePrefix, ColCity, ColState},
			wantRows: 0,
		},
		{name: "empty file", table: TableOrders, content: "", wantErr: "file is empty"},
		{name: "whitespace only", table: TableOrders, content: "  \n\n", wantErr: "file is empty"},
		{name: "invalid utf8", table: TableOrders, content: "order_id\n\xff\xfe\n", wantErr: "not valid UTF-8"},
		{name: "empty header column", table: TableOrders, content: "order_id,,customer_id\n1,2,3\n", wantErr: "header column 2 is empty"},
		{name: "duplicate header", table: TableOrders, content: "order_id,order_id\n1,2\n", wantErr: "duplicate header column"},
		{name: "ragged row", table: TableOrders, content: "order_id,customer_id\n1\n", wantErr: "parse csv"},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.Repeat("x", i+1)+".csv", tt.content)

			table, err := loader.LoadTable(tt.table, path)
			if tt.wantErr != "" {
				var loadErr *LoadError
				require.ErrorAs(t, err, &loadErr)
				assert.Equal(t, tt.table, loadErr.Table)
				assert.Equal(t, path, loadErr.Path)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.table, table.Name)
			assert.Equal(t, tt.wantCols, table.Columns)
			assert.Equal(t, tt.wantRows, table.Len())
		})
	}
}

func TestLoader_LoadTable_NATokensAreAbsent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reviews.csv",
		"review_id,order_id,review_score,review_comment_title\nr1,o1,NA,\nr2,o2,5,null\nr3,o3,4,ok\n")

	table, err := NewLoader(dir, nil, nil).LoadTable(TableOrderReviews, path)
	require.NoError(t, err)

	score, err := table.Column(ColReviewScore)
	require.NoError(t, err)
	assert.True(t, score[0].IsAbsent())
	assert.Equal(t, "5", score[1].String())

	title, err := table.Column("review_comment_title")
	require.NoError(t, err)
	assert.True(t, title[0].IsAbsent())
	assert.True(t, title[1].IsAbsent())
	assert.Equal(t, Text("ok"), title[2])
}

func TestLoader_LoadTable_Workbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payments.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"order_id", "payment_sequential", "payment_type", "payment_value"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"o1", "1", "credit_card", "99.90"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"o2", "1", "boleto"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewLoader(dir, nil, nil).LoadTable(TableOrderPayments, path)
	require.NoError(t, err)

	assert.Equal(t, []string{ColOrderID, "payment_sequential", ColPaymentType, ColPaymentValue}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, "99.90", table.Rows[0][3].String())
	assert.True(t, table.Rows[1][3].IsAbsent())
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.csv", "customer_id,customer_unique_id\nc1,u1\nc2,u2\n")
	writeFile(t, dir, "o.csv", "order_id,customer_id,order_purchase_timestamp\no1,c1,2017-10-02 10:56:33\n")

	loader := NewLoader(dir, map[string]string{
		TableCustomers: "c.csv",
		TableOrders:    "o.csv",
	}, slog.Default())

	tables, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, 2, tables[TableCustomers].Len())
	assert.Equal(t, []string{ColOrderID, ColCustomerID, ColPurchaseTimestamp}, tables[TableOrders].Columns)
}

func TestLoader_Load_MissingFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "c.csv", "customer_id,customer_unique_id\nc1,u1\n")

	loader := NewLoader(dir, map[string]string{
		TableCustomers: "c.csv",
		TableOrders:    "missing.csv",
	}, nil)

	_, err := loader.Load(context.Background())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, TableOrders, loadErr.Table)
	assert.Equal(t, filepath.Join(dir, "missing.csv"), loadErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoader_Path(t *testing.T) {
	loader := NewLoader("data", map[string]string{
		TableOrders:    "orders_dataset.csv",
		TableCustomers: "/srv/olist/customers.csv",
	}, nil)

	assert.Equal(t, filepath.Join("data", "orders_dataset.csv"), loader.Path(TableOrders))
	assert.Equal(t, "/srv/olist/customers.csv", loader.Path(TableCustomers))
}
