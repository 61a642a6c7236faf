package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stats is the shop dashboard summary.
type Stats struct {
	TotalProducts int             `db:"total_products" json:"total_products"`
	TotalBatches  int             `db:"total_batches" json:"total_batches"`
	TotalOrders   int             `db:"total_orders" json:"total_orders"`
	TotalSales    decimal.Decimal `db:"total_sales" json:"total_sales"`
	UnitsInStock  int             `db:"units_in_stock" json:"units_in_stock"`
}

// BatchAlert is a batch flagged by the expiry or low-stock checks.
type BatchAlert struct {
	BatchID         int64           `db:"id" json:"batch_id"`
	BatchNumber     string          `db:"batch_number" json:"batch_number"`
	ProductID       string          `db:"product_id" json:"product_id"`
	GenericName     string          `db:"generic_name" json:"generic_name"`
	BrandName       string          `db:"brand_name" json:"brand_name"`
	ExpiryDate      time.Time       `db:"expiry_date" json:"expiry_date"`
	SellingPrice    decimal.Decimal `db:"selling_price" json:"selling_price"`
	QuantityInStock int             `db:"quantity_in_stock" json:"quantity_in_stock"`
}

// SearchResult is a product hit with its in-stock batches.
type SearchResult struct {
	ProductID   string       `json:"product_id"`
	GenericName string       `json:"generic_name"`
	BrandName   string       `json:"brand_name"`
	Batches     []BatchAlert `json:"batches"`
}

// Suggestion is a typeahead hit over product names.
type Suggestion struct {
	ProductID   string `db:"product_id" json:"product_id"`
	GenericName string `db:"generic_name" json:"generic_name"`
	BrandName   string `db:"brand_name" json:"brand_name"`
}
