package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment types accepted at the counter.
const (
	PaymentUPI  = "UPI"
	PaymentCash = "CASH"
	PaymentCard = "CARD"
)

// Order is a customer sale at a shop. TotalAmount is supplied by the caller
// alongside the discount; the fulfilment engine records items and moves stock
// but never recomputes the total.
type Order struct {
	OrderID            int64           `db:"order_id" json:"order_id"`
	OrderNumber        string          `db:"order_number" json:"order_number"`
	ShopID             int64           `db:"shop_id" json:"-"`
	CustomerName       string          `db:"customer_name" json:"customer_name"`
	CustomerNumber     string          `db:"customer_number" json:"customer_number"`
	DoctorName         string          `db:"doctor_name" json:"doctor_name"`
	TotalAmount        decimal.Decimal `db:"total_amount" json:"total_amount"`
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discount_percentage"`
	OrderDate          time.Time       `db:"order_date" json:"order_date"`
	Items              []*OrderItem    `json:"items,omitempty"`
	Payments           []*Payment      `json:"payments,omitempty"`
}

// OrderItem is a fulfilled line of an order. UnitPrice is captured as given
// at fulfilment time; later batch price edits do not touch it.
type OrderItem struct {
	ID          int64           `db:"id" json:"-"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	BatchID     int64           `db:"batch_id" json:"batch_id"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	ProductID   string          `db:"product_id" json:"product_id,omitempty"`
	BatchNumber string          `db:"batch_number" json:"batch_number,omitempty"`
	GenericName string          `db:"generic_name" json:"generic_name,omitempty"`
	BrandName   string          `db:"brand_name" json:"brand_name,omitempty"`
}

// Amount is the line total.
func (i *OrderItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Payment records how an order was settled. One payment per order.
type Payment struct {
	OrderID           int64           `db:"order_id" json:"order_id"`
	PaymentType       string          `db:"payment_type" json:"payment_type"`
	TransactionAmount decimal.Decimal `db:"transaction_amount" json:"transaction_amount"`
}

// ItemRequest asks for a quantity from a specific batch. UnitPrice is
// recorded as given; when absent the batch's current selling price is used.
type ItemRequest struct {
	BatchID   int64            `json:"batch_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest creates an order, optionally fulfilling items in the
// same call.
type CreateOrderRequest struct {
	CustomerName       string          `json:"customer_name"`
	CustomerNumber     string          `json:"customer_number"`
	DoctorName         string          `json:"doctor_name"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Items              []ItemRequest   `json:"items"`
}

// AddItemsRequest fulfils items against an order. OrderID nil targets the
// shop's most recent order.
type AddItemsRequest struct {
	OrderID *int64        `json:"order_id"`
	Items   []ItemRequest `json:"items"`
}

// UpdateOrderRequest is an explicit partial update: nil fields are left
// untouched.
type UpdateOrderRequest struct {
	CustomerName       *string          `json:"customer_name"`
	CustomerNumber     *string          `json:"customer_number"`
	DoctorName         *string          `json:"doctor_name"`
	TotalAmount        *decimal.Decimal `json:"total_amount"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
}

// PaymentRequest records one settlement.
type PaymentRequest struct {
	OrderID           *int64          `json:"order_id"`
	PaymentType       string          `json:"payment_type"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
}
