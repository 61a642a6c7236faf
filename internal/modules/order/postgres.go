package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/database"
)

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a Repository backed by PostgreSQL.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateOrder(ctx context.Context, o *Order) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO orders
		  (order_number, shop_id, customer_name, customer_number, doctor_name,
		   total_amount, discount_percentage)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING order_id, order_date`,
		o.OrderNumber, o.ShopID, o.CustomerName, o.CustomerNumber,
		o.DoctorName, o.TotalAmount, o.DiscountPercentage).
		Scan(&o.OrderID, &o.OrderDate)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.New(apperr.Conflict, "order number already exists")
		}
		return apperr.Wrap(apperr.Internal, "unable to create order", err)
	}
	return nil
}

func (r *postgresRepository) GetOrder(ctx context.Context, shopID, orderID int64) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o, `
		SELECT order_id, order_number, shop_id, customer_name, customer_number,
		       doctor_name, total_amount, discount_percentage, order_date
		FROM orders WHERE shop_id=$1 AND order_id=$2`, shopID, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to fetch order", err)
	}
	if o.Items, err = r.listItems(ctx, orderID); err != nil {
		return nil, err
	}
	if o.Payments, err = r.ListPayments(ctx, shopID, orderID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) ListOrders(ctx context.Context, shopID int64) ([]*Order, error) {
	orders := []*Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT order_id, order_number, shop_id, customer_name, customer_number,
		       doctor_name, total_amount, discount_percentage, order_date
		FROM orders WHERE shop_id=$1 ORDER BY order_date DESC`, shopID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to list orders", err)
	}
	return orders, nil
}

func (r *postgresRepository) LatestOrderID(ctx context.Context, shopID int64) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `
		SELECT order_id FROM orders WHERE shop_id=$1
		ORDER BY order_date DESC, order_id DESC LIMIT 1`, shopID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.New(apperr.NotFound, "no orders exist for this shop")
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "unable to find latest order", err)
	}
	return id, nil
}

func (r *postgresRepository) UpdateOrder(ctx context.Context, shopID, orderID int64, upd UpdateOrderRequest) error {
	set := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if upd.CustomerName != nil {
		add("customer_name", *upd.CustomerName)
	}
	if upd.CustomerNumber != nil {
		add("customer_number", *upd.CustomerNumber)
	}
	if upd.DoctorName != nil {
		add("doctor_name", *upd.DoctorName)
	}
	if upd.TotalAmount != nil {
		add("total_amount", *upd.TotalAmount)
	}
	if upd.DiscountPercentage != nil {
		add("discount_percentage", *upd.DiscountPercentage)
	}
	if len(set) == 0 {
		return apperr.New(apperr.Validation, "no fields to update")
	}
	args = append(args, shopID, orderID)
	query := fmt.Sprintf("UPDATE orders SET %s WHERE shop_id=$%d AND order_id=$%d",
		strings.Join(set, ", "), len(args)-1, len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "unable to update order", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "order not found")
	}
	return nil
}

func (r *postgresRepository) DeleteOrder(ctx context.Context, shopID, orderID int64) (*Order, error) {
	o, err := r.GetOrder(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM orders WHERE shop_id=$1 AND order_id=$2`, shopID, orderID); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to delete order", err)
	}
	return o, nil
}

// AddOrderItems runs the fulfilment transaction. Batches are locked and
// checked in the caller's item order; the first failure rolls back every
// line, so stock never moves on a partially satisfiable request. Each line
// records the unit price the caller sent, falling back to the batch's
// current selling price when the caller sent none. The order's total_amount
// belongs to the caller and is never touched here.
func (r *postgresRepository) AddOrderItems(ctx context.Context, shopID, orderID int64, items []ItemRequest) (*Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to start transaction", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE shop_id=$1 AND order_id=$2)`,
		shopID, orderID); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to verify order", err)
	}
	if !exists {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}

	for _, item := range items {
		var row struct {
			ID        int64           `db:"id"`
			InStock   int             `db:"quantity_in_stock"`
			Price     decimal.Decimal `db:"selling_price"`
			ProductID string          `db:"product_id"`
		}
		err := tx.GetContext(ctx, &row, `
			SELECT b.id, b.quantity_in_stock, b.selling_price, p.product_id
			FROM batches b
			JOIN products p ON p.id = b.product_ref
			WHERE b.id=$1 AND b.shop_id=$2
			FOR UPDATE OF b`, item.BatchID, shopID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Newf(apperr.NotFound, "batch %d not found", item.BatchID)
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "unable to lock batch", err)
		}
		if row.InStock < item.Quantity {
			return nil, &apperr.StockError{
				ProductID: row.ProductID,
				BatchID:   row.ID,
				Available: row.InStock,
				Requested: item.Quantity,
			}
		}
		unitPrice := row.Price
		if item.UnitPrice != nil {
			unitPrice = *item.UnitPrice
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, batch_id, quantity, unit_price)
			VALUES ($1,$2,$3,$4)`,
			orderID, item.BatchID, item.Quantity, unitPrice); err != nil {
			if database.IsUniqueViolation(err) {
				return nil, apperr.Newf(apperr.Conflict, "batch %d is already on this order", item.BatchID)
			}
			return nil, apperr.Wrap(apperr.Internal, "unable to record order item", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE batches SET quantity_in_stock = quantity_in_stock - $1 WHERE id=$2`,
			item.Quantity, item.BatchID); err != nil {
			return nil, apperr.Wrap(apperr.Internal, "unable to decrement stock", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to commit order items", err)
	}
	return r.GetOrder(ctx, shopID, orderID)
}

func (r *postgresRepository) AddPayment(ctx context.Context, shopID int64, p *Payment) error {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE shop_id=$1 AND order_id=$2)`,
		shopID, p.OrderID); err != nil {
		return apperr.Wrap(apperr.Internal, "unable to verify order", err)
	}
	if !exists {
		return apperr.New(apperr.NotFound, "order not found")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (order_id, payment_type, transaction_amount)
		VALUES ($1,$2,$3)`,
		p.OrderID, p.PaymentType, p.TransactionAmount)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.New(apperr.Conflict, "payment already recorded for this order")
		}
		return apperr.Wrap(apperr.Internal, "unable to record payment", err)
	}
	return nil
}

func (r *postgresRepository) ListPayments(ctx context.Context, shopID, orderID int64) ([]*Payment, error) {
	payments := []*Payment{}
	err := r.db.SelectContext(ctx, &payments, `
		SELECT p.order_id, p.payment_type, p.transaction_amount
		FROM payments p
		JOIN orders o ON o.order_id = p.order_id
		WHERE o.shop_id=$1 AND p.order_id=$2`, shopID, orderID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to list payments", err)
	}
	return payments, nil
}

func (r *postgresRepository) listItems(ctx context.Context, orderID int64) ([]*OrderItem, error) {
	items := []*OrderItem{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT oi.id, oi.order_id, oi.batch_id, oi.quantity, oi.unit_price,
		       p.product_id, b.batch_number, p.generic_name, p.brand_name
		FROM order_items oi
		JOIN batches b ON b.id = oi.batch_id
		JOIN products p ON p.id = b.product_ref
		WHERE oi.order_id=$1 ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to list order items", err)
	}
	return items, nil
}
