package dataprocessing

import "fmt"

// Table names of the dataset
const (
	TableCustomers           = "customers"
	TableOrders              = "orders"
	TableOrderItems          = "order_items"
	TableOrderPayments       = "order_payments"
	TableOrderReviews        = "order_reviews"
	TableProducts            = "products"
	TableSellers             = "sellers"
	TableGeolocation         = "geolocation"
	TableCategoryTranslation = "category_translation"
)

// Canonical column names used by the query pipeline
const (
	ColCustomerID            = "customer_id"
	ColCustomerUniqueID      = "customer_unique_id"
	ColZipCodePrefix         = "zip_code_prefix"
	ColCity                  = "city"
	ColState                 = "state"
	ColOrderID               = "order_id"
	ColOrderStatus           = "order_status"
	ColPurchaseTimestamp     = "purchase_timestamp"
	ColApprovedAt            = "approved_at"
	ColDeliveredCarrierDate  = "delivered_carrier_date"
	ColDeliveredCustomerDate = "delivered_customer_date"
	ColEstimatedDeliveryDate = "estimated_delivery_date"
	ColProductID             = "product_id"
	ColSellerID              = "seller_id"
	ColPrice                 = "price"
	ColPaymentType           = "payment_type"
	ColPaymentValue          = "value"
	ColReviewID              = "review_id"
	ColReviewScore           = "review_score"
	ColReviewCreationDate    = "review_creation_date"
	ColReviewAnswerTimestamp = "review_answer_timestamp"
	ColCategoryName          = "product_category_name"
	ColCategoryNameEnglish   = "product_category_name_english"
	ColLat                   = "lat"
	ColLng                   = "lng"
)

// DefaultFiles maps every table to the file name of the public Olist dataset
var DefaultFiles = map[string]string{
	TableCustomers:           "customers_dataset.csv",
	TableOrders:              "orders_dataset.csv",
	TableOrderItems:          "order_items_dataset.csv",
	TableOrderPayments:       "order_payments_dataset.csv",
	TableOrderReviews:        "order_reviews_dataset.csv",
	TableProducts:            "products_dataset.csv",
	TableSellers:             "sellers_dataset.csv",
	TableGeolocation:         "geolocation_dataset.csv",
	TableCategoryTranslation: "product_category_name_translation.csv",
}

// CoreTables are always loaded; the translation table is opt-in.
var CoreTables = []string{
	TableCustomers,
	TableOrders,
	TableOrderItems,
	TableOrderPayments,
	TableOrderReviews,
	TableProducts,
	TableSellers,
	TableGeolocation,
}

// DateColumns lists every column parsed as a timestamp, in whichever table it appears
var DateColumns = []string{
	ColPurchaseTimestamp,
	ColApprovedAt,
	ColDeliveredCarrierDate,
	ColDeliveredCustomerDate,
	ColEstimatedDeliveryDate,
	ColReviewCreationDate,
	ColReviewAnswerTimestamp,
}

// requiredColumns are the row-drop keys; tables not listed are forward-filled.
var requiredColumns = map[string][]string{
	TableCustomers:  {ColCustomerID, ColCustomerUniqueID},
	TableOrders:     {ColOrderID, ColCustomerID, ColPurchaseTimestamp},
	TableOrderItems: {ColOrderID, ColProductID, ColSellerID},
}

// RequiredColumns returns the drop-policy key columns of a table, or nil for
// tables cleaned by forward-fill.
func RequiredColumns(table string) []string {
	return requiredColumns[table]
}

// headerAliases maps the Olist CSV headers onto canonical column names
var headerAliases = map[string]map[string]string{
	TableCustomers: {
		"customer_zip_code_prefix": ColZipCodePrefix,
		"customer_city":            ColCity,
		"customer_state":           ColState,
	},
	TableOrders: {
		"order_purchase_timestamp":      ColPurchaseTimestamp,
		"order_approved_at":             ColApprovedAt,
		"order_delivered_carrier_date":  ColDeliveredCarrierDate,
		"order_delivered_customer_date": ColDeliveredCustomerDate,
		"order_estimated_delivery_date": ColEstimatedDeliveryDate,
	},
	TableOrderPayments: {
		"payment_value": ColPaymentValue,
	},
	TableSellers: {
		"seller_zip_code_prefix": ColZipCodePrefix,
		"seller_city":            ColCity,
		"seller_state":           ColState,
	},
	TableGeolocation: {
		"geolocation_zip_code_prefix": ColZipCodePrefix,
		"geolocation_lat":             ColLat,
		"geolocation_lng":             ColLng,
		"geolocation_city":            ColCity,
		"geolocation_state":           ColState,
	},
}

// CanonicalColumn maps a file header to its canonical column name
func CanonicalColumn(table, header string) string {
	if alias, ok := headerAliases[table][header]; ok {
		return alias
	}
	return header
}

// naTokens are read as absent, matching the NA defaults of common CSV tooling
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// ParseCell converts raw file text into a cell
func ParseCell(raw string) Cell {
	if _, na := naTokens[raw]; na {
		return Absent()
	}
	return Text(raw)
}

// SchemaError reports a column the pipeline needs but the table lacks
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: table %q has no column %q", e.Table, e.Column)
}
