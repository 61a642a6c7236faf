package report

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
)

// Repository is the read-only reporting contract.
type Repository interface {
	Stats(ctx context.Context, shopID int64) (*Stats, error)
	ExpiringSoon(ctx context.Context, shopID int64, within int) ([]*BatchAlert, error)
	LowStock(ctx context.Context, shopID int64, threshold int) ([]*BatchAlert, error)
	SearchBatches(ctx context.Context, shopID int64, query string) ([]*BatchAlert, error)
	Suggestions(ctx context.Context, shopID int64, prefix string, limit int) ([]*Suggestion, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a Repository backed by PostgreSQL.
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Stats(ctx context.Context, shopID int64) (*Stats, error) {
	var st Stats
	err := r.db.GetContext(ctx, &st, `
		SELECT
		  (SELECT COUNT(*) FROM products WHERE shop_id=$1) AS total_products,
		  (SELECT COUNT(*) FROM batches WHERE shop_id=$1) AS total_batches,
		  (SELECT COUNT(*) FROM orders WHERE shop_id=$1) AS total_orders,
		  (SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE shop_id=$1) AS total_sales,
		  (SELECT COALESCE(SUM(quantity_in_stock), 0) FROM batches WHERE shop_id=$1) AS units_in_stock`,
		shopID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to compute shop stats", err)
	}
	return &st, nil
}

func (r *postgresRepository) ExpiringSoon(ctx context.Context, shopID int64, within int) ([]*BatchAlert, error) {
	alerts := []*BatchAlert{}
	err := r.db.SelectContext(ctx, &alerts, `
		SELECT b.id, b.batch_number, p.product_id, p.generic_name, p.brand_name,
		       b.expiry_date, b.selling_price, b.quantity_in_stock
		FROM batches b
		JOIN products p ON p.id = b.product_ref
		WHERE b.shop_id=$1
		  AND b.quantity_in_stock > 0
		  AND b.expiry_date <= CURRENT_DATE + $2 * INTERVAL '1 day'
		ORDER BY b.expiry_date`, shopID, within)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to list expiring batches", err)
	}
	return alerts, nil
}

func (r *postgresRepository) LowStock(ctx context.Context, shopID int64, threshold int) ([]*BatchAlert, error) {
	alerts := []*BatchAlert{}
	err := r.db.SelectContext(ctx, &alerts, `
		SELECT b.id, b.batch_number, p.product_id, p.generic_name, p.brand_name,
		       b.expiry_date, b.selling_price, b.quantity_in_stock
		FROM batches b
		JOIN products p ON p.id = b.product_ref
		WHERE b.shop_id=$1 AND b.quantity_in_stock <= $2
		ORDER BY b.quantity_in_stock`, shopID, threshold)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to list low stock batches", err)
	}
	return alerts, nil
}

func (r *postgresRepository) SearchBatches(ctx context.Context, shopID int64, query string) ([]*BatchAlert, error) {
	alerts := []*BatchAlert{}
	err := r.db.SelectContext(ctx, &alerts, `
		SELECT b.id, b.batch_number, p.product_id, p.generic_name, p.brand_name,
		       b.expiry_date, b.selling_price, b.quantity_in_stock
		FROM batches b
		JOIN products p ON p.id = b.product_ref
		WHERE b.shop_id=$1
		  AND b.quantity_in_stock > 0
		  AND (p.generic_name ILIKE '%' || $2 || '%' OR p.brand_name ILIKE '%' || $2 || '%')
		ORDER BY p.generic_name, b.expiry_date`, shopID, query)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to search batches", err)
	}
	return alerts, nil
}

func (r *postgresRepository) Suggestions(ctx context.Context, shopID int64, prefix string, limit int) ([]*Suggestion, error) {
	suggestions := []*Suggestion{}
	err := r.db.SelectContext(ctx, &suggestions, `
		SELECT product_id, generic_name, brand_name
		FROM products
		WHERE shop_id=$1
		  AND (generic_name ILIKE $2 || '%' OR brand_name ILIKE $2 || '%')
		ORDER BY generic_name LIMIT $3`, shopID, prefix, limit)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to fetch suggestions", err)
	}
	return suggestions, nil
}
