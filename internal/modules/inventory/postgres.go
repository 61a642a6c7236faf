package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

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

// ---- Products ----

func (r *postgresRepository) CreateProduct(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products
		  (product_id, shop_id, brand_name, generic_name, hsn, gst,
		   prescription_required, composition_id, therapeutic_category)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`,
		p.ProductID, p.ShopID, p.BrandName, p.GenericName, p.HSN, p.GST,
		p.PrescriptionRequired, p.CompositionID, p.TherapeuticCategory).
		Scan(&p.Ref)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Newf(apperr.Conflict, "product %s already exists in this shop", p.ProductID)
		}
		return apperr.Wrap(apperr.Internal, "unable to create product", err)
	}
	return nil
}

func (r *postgresRepository) GetProduct(ctx context.Context, shopID int64, productID string) (*Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p, `
		SELECT id, product_id, shop_id, brand_name, generic_name, hsn, gst,
		       prescription_required, composition_id, therapeutic_category
		FROM products WHERE shop_id=$1 AND product_id=$2`, shopID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "product not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to fetch product", err)
	}
	return &p, nil
}

func (r *postgresRepository) ListProducts(ctx context.Context, shopID int64) ([]*Product, error) {
	products := []*Product{}
	err := r.db.SelectContext(ctx, &products, `
		SELECT id, product_id, shop_id, brand_name, generic_name, hsn, gst,
		       prescription_required, composition_id, therapeutic_category
		FROM products WHERE shop_id=$1 ORDER BY generic_name, brand_name`, shopID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to list products", err)
	}
	return products, nil
}

// UpdateProduct writes only the non-nil fields of upd. The column list is
// fixed here; request keys never reach the SQL text.
func (r *postgresRepository) UpdateProduct(ctx context.Context, shopID int64, productID string, upd UpdateProductRequest) error {
	set := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if upd.GenericName != nil {
		add("generic_name", *upd.GenericName)
	}
	if upd.BrandName != nil {
		add("brand_name", *upd.BrandName)
	}
	if upd.HSN != nil {
		add("hsn", *upd.HSN)
	}
	if upd.GST != nil {
		add("gst", *upd.GST)
	}
	if upd.PrescriptionRequired != nil {
		add("prescription_required", *upd.PrescriptionRequired)
	}
	if upd.CompositionID != nil {
		add("composition_id", *upd.CompositionID)
	}
	if upd.TherapeuticCategory != nil {
		add("therapeutic_category", *upd.TherapeuticCategory)
	}
	if len(set) == 0 {
		return apperr.New(apperr.Validation, "no fields to update")
	}
	args = append(args, shopID, productID)
	query := fmt.Sprintf("UPDATE products SET %s WHERE shop_id=$%d AND product_id=$%d",
		strings.Join(set, ", "), len(args)-1, len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "unable to update product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "product not found")
	}
	return nil
}

func (r *postgresRepository) DeleteProduct(ctx context.Context, shopID int64, productID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE shop_id=$1 AND product_id=$2`, shopID, productID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.New(apperr.Conflict, "product has batches and cannot be deleted")
		}
		return apperr.Wrap(apperr.Internal, "unable to delete product", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "product not found")
	}
	return nil
}

func (r *postgresRepository) ProductHasBatches(ctx context.Context, shopID int64, productID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM batches b
			JOIN products p ON p.id = b.product_ref
			WHERE p.shop_id=$1 AND p.product_id=$2
		)`, shopID, productID)
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "unable to check product batches", err)
	}
	return exists, nil
}

// ---- Batches ----

func (r *postgresRepository) CreateBatch(ctx context.Context, b *Batch) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO batches
		  (batch_number, product_ref, shop_id, expiry_date,
		   average_purchase_price, selling_price, quantity_in_stock)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		b.BatchNumber, b.ProductRef, b.ShopID, b.ExpiryDate,
		b.AveragePurchasePrice, b.SellingPrice, b.QuantityInStock).
		Scan(&b.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Newf(apperr.Conflict, "batch %s already exists for this product", b.BatchNumber)
		}
		return apperr.Wrap(apperr.Internal, "unable to create batch", err)
	}
	return nil
}

func (r *postgresRepository) GetBatch(ctx context.Context, shopID, batchID int64) (*Batch, error) {
	var b Batch
	err := r.db.GetContext(ctx, &b, `
		SELECT b.id, b.batch_number, b.product_ref, p.product_id, b.shop_id,
		       b.expiry_date, b.average_purchase_price, b.selling_price,
		       b.quantity_in_stock, p.generic_name, p.brand_name
		FROM batches b
		JOIN products p ON p.id = b.product_ref
		WHERE b.shop_id=$1 AND b.id=$2`, shopID, batchID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "batch not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to fetch batch", err)
	}
	return &b, nil
}

func (r *postgresRepository) ListBatches(ctx context.Context, shopID int64) ([]*Batch, error) {
	batches := []*Batch{}
	err := r.db.SelectContext(ctx, &batches, `
		SELECT b.id, b.batch_number, b.product_ref, p.product_id, b.shop_id,
		       b.expiry_date, b.average_purchase_price, b.selling_price,
		       b.quantity_in_stock, p.generic_name, p.brand_name
		FROM batches b
		JOIN products p ON p.id = b.product_ref
		WHERE b.shop_id=$1 ORDER BY b.expiry_date`, shopID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to list batches", err)
	}
	return batches, nil
}

func (r *postgresRepository) UpdateBatch(ctx context.Context, shopID, batchID int64, upd UpdateBatchRequest) error {
	set := []string{}
	args := []interface{}{}
	add := func(col string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)))
	}
	if upd.BatchNumber != nil {
		add("batch_number", *upd.BatchNumber)
	}
	if upd.ExpiryDate != nil {
		add("expiry_date", *upd.ExpiryDate)
	}
	if upd.AveragePurchasePrice != nil {
		add("average_purchase_price", *upd.AveragePurchasePrice)
	}
	if upd.SellingPrice != nil {
		add("selling_price", *upd.SellingPrice)
	}
	if upd.QuantityInStock != nil {
		add("quantity_in_stock", *upd.QuantityInStock)
	}
	if len(set) == 0 {
		return apperr.New(apperr.Validation, "no fields to update")
	}
	args = append(args, shopID, batchID)
	query := fmt.Sprintf("UPDATE batches SET %s WHERE shop_id=$%d AND id=$%d",
		strings.Join(set, ", "), len(args)-1, len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.New(apperr.Conflict, "batch number already exists for this product")
		}
		return apperr.Wrap(apperr.Internal, "unable to update batch", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "batch not found")
	}
	return nil
}

func (r *postgresRepository) DeleteBatch(ctx context.Context, shopID, batchID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM batches WHERE shop_id=$1 AND id=$2`, shopID, batchID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.New(apperr.Conflict, "batch is referenced by order items and cannot be deleted")
		}
		return apperr.Wrap(apperr.Internal, "unable to delete batch", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.New(apperr.NotFound, "batch not found")
	}
	return nil
}

func (r *postgresRepository) BatchHasOrderItems(ctx context.Context, batchID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM order_items WHERE batch_id=$1)`, batchID)
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "unable to check batch order items", err)
	}
	return exists, nil
}
