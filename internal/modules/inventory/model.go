package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a medicine listed in a shop. ProductID is the shop-scoped
// identifier; it is unique per shop, not globally.
type Product struct {
	Ref                  int64           `db:"id" json:"-"`
	ProductID            string          `db:"product_id" json:"product_id"`
	ShopID               int64           `db:"shop_id" json:"-"`
	BrandName            string          `db:"brand_name" json:"brand_name"`
	GenericName          string          `db:"generic_name" json:"generic_name"`
	HSN                  string          `db:"hsn" json:"hsn"`
	GST                  decimal.Decimal `db:"gst" json:"gst"`
	PrescriptionRequired bool            `db:"prescription_required" json:"prescription_required"`
	CompositionID        *int64          `db:"composition_id" json:"composition_id,omitempty"`
	TherapeuticCategory  string          `db:"therapeutic_category" json:"therapeutic_category"`
}

// Batch is a priced, dated stock lot of a product; it is the unit of
// inventory decrement.
type Batch struct {
	ID                   int64           `db:"id" json:"batch_id"`
	BatchNumber          string          `db:"batch_number" json:"batch_number"`
	ProductRef           int64           `db:"product_ref" json:"-"`
	ProductID            string          `db:"product_id" json:"product_id"`
	ShopID               int64           `db:"shop_id" json:"-"`
	ExpiryDate           time.Time       `db:"expiry_date" json:"expiry_date"`
	AveragePurchasePrice decimal.Decimal `db:"average_purchase_price" json:"average_purchase_price"`
	SellingPrice         decimal.Decimal `db:"selling_price" json:"selling_price"`
	QuantityInStock      int             `db:"quantity_in_stock" json:"quantity_in_stock"`
	GenericName          string          `db:"generic_name" json:"generic_name,omitempty"`
	BrandName            string          `db:"brand_name" json:"brand_name,omitempty"`
}

// CreateProductRequest is the payload for listing a new product.
type CreateProductRequest struct {
	ProductID            string          `json:"product_id"`
	GenericName          string          `json:"generic_name"`
	BrandName            string          `json:"brand_name"`
	HSN                  string          `json:"hsn"`
	GST                  decimal.Decimal `json:"gst"`
	PrescriptionRequired bool            `json:"prescription_required"`
	CompositionID        *int64          `json:"composition_id"`
	TherapeuticCategory  string          `json:"therapeutic_category"`
}

// UpdateProductRequest is an explicit partial update: nil fields are left
// untouched, non-nil fields are written. Columns never come from request keys.
type UpdateProductRequest struct {
	GenericName          *string          `json:"generic_name"`
	BrandName            *string          `json:"brand_name"`
	HSN                  *string          `json:"hsn"`
	GST                  *decimal.Decimal `json:"gst"`
	PrescriptionRequired *bool            `json:"prescription_required"`
	CompositionID        *int64           `json:"composition_id"`
	TherapeuticCategory  *string          `json:"therapeutic_category"`
}

// CreateBatchRequest is the payload for adding a stock batch to a product.
type CreateBatchRequest struct {
	BatchNumber          string          `json:"batch_number"`
	ProductID            string          `json:"product_id"`
	ExpiryDate           string          `json:"expiry_date"`
	AveragePurchasePrice decimal.Decimal `json:"average_purchase_price"`
	SellingPrice         decimal.Decimal `json:"selling_price"`
	QuantityInStock      int             `json:"quantity_in_stock"`
}

// UpdateBatchRequest is an explicit partial update over batch fields.
type UpdateBatchRequest struct {
	BatchNumber          *string          `json:"batch_number"`
	ExpiryDate           *string          `json:"expiry_date"`
	AveragePurchasePrice *decimal.Decimal `json:"average_purchase_price"`
	SellingPrice         *decimal.Decimal `json:"selling_price"`
	QuantityInStock      *int             `json:"quantity_in_stock"`
}
