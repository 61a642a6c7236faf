package order

import "context"

// Repository is the persistence contract for orders, their items, and
// payments. Every method carries the owning shop.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, shopID, orderID int64) (*Order, error)
	ListOrders(ctx context.Context, shopID int64) ([]*Order, error)
	// LatestOrderID returns the shop's most recent order id, used when a
	// request omits an explicit order id.
	LatestOrderID(ctx context.Context, shopID int64) (int64, error)
	UpdateOrder(ctx context.Context, shopID, orderID int64, upd UpdateOrderRequest) error
	DeleteOrder(ctx context.Context, shopID, orderID int64) (*Order, error)

	// AddOrderItems fulfils items against an order in one transaction. Each
	// batch row is locked, checked for sufficiency, recorded as an order item
	// and decremented. Any failure rolls back every line.
	AddOrderItems(ctx context.Context, shopID, orderID int64, items []ItemRequest) (*Order, error)

	AddPayment(ctx context.Context, shopID int64, p *Payment) error
	ListPayments(ctx context.Context, shopID, orderID int64) ([]*Payment, error)
}
