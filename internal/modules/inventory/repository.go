package inventory

import "context"

// Repository is the persistence contract for products and batches. Every
// method carries the owning shop so no query can cross the tenancy boundary.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, shopID int64, productID string) (*Product, error)
	ListProducts(ctx context.Context, shopID int64) ([]*Product, error)
	UpdateProduct(ctx context.Context, shopID int64, productID string, upd UpdateProductRequest) error
	DeleteProduct(ctx context.Context, shopID int64, productID string) error
	ProductHasBatches(ctx context.Context, shopID int64, productID string) (bool, error)

	CreateBatch(ctx context.Context, b *Batch) error
	GetBatch(ctx context.Context, shopID, batchID int64) (*Batch, error)
	ListBatches(ctx context.Context, shopID int64) ([]*Batch, error)
	UpdateBatch(ctx context.Context, shopID, batchID int64, upd UpdateBatchRequest) error
	DeleteBatch(ctx context.Context, shopID, batchID int64) error
	BatchHasOrderItems(ctx context.Context, batchID int64) (bool, error)
}
