package inventory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
)

// Service implements shop-scoped product and batch management.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService creates an inventory service.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateProduct lists a new product in the shop.
func (s *Service) CreateProduct(ctx context.Context, shopID int64, req CreateProductRequest) (*Product, error) {
	if req.ProductID == "" {
		return nil, apperr.New(apperr.Validation, "product_id is required")
	}
	if req.GenericName == "" {
		return nil, apperr.New(apperr.Validation, "generic_name is required")
	}
	if req.BrandName == "" {
		return nil, apperr.New(apperr.Validation, "brand_name is required")
	}
	p := &Product{
		ProductID:            req.ProductID,
		ShopID:               shopID,
		BrandName:            req.BrandName,
		GenericName:          req.GenericName,
		HSN:                  req.HSN,
		GST:                  req.GST,
		PrescriptionRequired: req.PrescriptionRequired,
		CompositionID:        req.CompositionID,
		TherapeuticCategory:  req.TherapeuticCategory,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Int64("shop_id", shopID).Str("product_id", p.ProductID).Msg("product created")
	return p, nil
}

// GetProduct fetches one product of the shop.
func (s *Service) GetProduct(ctx context.Context, shopID int64, productID string) (*Product, error) {
	return s.repo.GetProduct(ctx, shopID, productID)
}

// ListProducts lists every product of the shop.
func (s *Service) ListProducts(ctx context.Context, shopID int64) ([]*Product, error) {
	return s.repo.ListProducts(ctx, shopID)
}

// UpdateProduct applies a partial update and returns the fresh row.
func (s *Service) UpdateProduct(ctx context.Context, shopID int64, productID string, upd UpdateProductRequest) (*Product, error) {
	if err := s.repo.UpdateProduct(ctx, shopID, productID, upd); err != nil {
		return nil, err
	}
	return s.repo.GetProduct(ctx, shopID, productID)
}

// DeleteProduct removes a product that has no batches.
func (s *Service) DeleteProduct(ctx context.Context, shopID int64, productID string) error {
	has, err := s.repo.ProductHasBatches(ctx, shopID, productID)
	if err != nil {
		return err
	}
	if has {
		return apperr.New(apperr.Conflict, "product has batches; delete its batches first")
	}
	return s.repo.DeleteProduct(ctx, shopID, productID)
}

// CreateBatch adds a stock batch under an existing product of the shop.
func (s *Service) CreateBatch(ctx context.Context, shopID int64, req CreateBatchRequest) (*Batch, error) {
	if req.BatchNumber == "" {
		return nil, apperr.New(apperr.Validation, "batch_number is required")
	}
	if req.ProductID == "" {
		return nil, apperr.New(apperr.Validation, "product_id is required")
	}
	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "expiry_date must be in YYYY-MM-DD format")
	}
	if req.QuantityInStock < 0 {
		return nil, apperr.New(apperr.Validation, "quantity_in_stock cannot be negative")
	}
	p, err := s.repo.GetProduct(ctx, shopID, req.ProductID)
	if err != nil {
		return nil, err
	}
	b := &Batch{
		BatchNumber:          req.BatchNumber,
		ProductRef:           p.Ref,
		ProductID:            p.ProductID,
		ShopID:               shopID,
		ExpiryDate:           expiry,
		AveragePurchasePrice: req.AveragePurchasePrice,
		SellingPrice:         req.SellingPrice,
		QuantityInStock:      req.QuantityInStock,
	}
	if err := s.repo.CreateBatch(ctx, b); err != nil {
		return nil, err
	}
	b.GenericName = p.GenericName
	b.BrandName = p.BrandName
	s.log.Info().Int64("shop_id", shopID).Str("product_id", p.ProductID).
		Str("batch", b.BatchNumber).Int("qty", b.QuantityInStock).Msg("batch created")
	return b, nil
}

// GetBatch fetches one batch of the shop.
func (s *Service) GetBatch(ctx context.Context, shopID, batchID int64) (*Batch, error) {
	return s.repo.GetBatch(ctx, shopID, batchID)
}

// ListBatches lists every batch of the shop, soonest expiry first.
func (s *Service) ListBatches(ctx context.Context, shopID int64) ([]*Batch, error) {
	return s.repo.ListBatches(ctx, shopID)
}

// UpdateBatch applies a partial update and returns the fresh row.
func (s *Service) UpdateBatch(ctx context.Context, shopID, batchID int64, upd UpdateBatchRequest) (*Batch, error) {
	if upd.ExpiryDate != nil {
		if _, err := time.Parse("2006-01-02", *upd.ExpiryDate); err != nil {
			return nil, apperr.New(apperr.Validation, "expiry_date must be in YYYY-MM-DD format")
		}
	}
	if upd.QuantityInStock != nil && *upd.QuantityInStock < 0 {
		return nil, apperr.New(apperr.Validation, "quantity_in_stock cannot be negative")
	}
	if err := s.repo.UpdateBatch(ctx, shopID, batchID, upd); err != nil {
		return nil, err
	}
	return s.repo.GetBatch(ctx, shopID, batchID)
}

// DeleteBatch removes a batch that no order references.
func (s *Service) DeleteBatch(ctx context.Context, shopID, batchID int64) error {
	if _, err := s.repo.GetBatch(ctx, shopID, batchID); err != nil {
		return err
	}
	has, err := s.repo.BatchHasOrderItems(ctx, batchID)
	if err != nil {
		return err
	}
	if has {
		return apperr.New(apperr.Conflict, "batch is referenced by orders and cannot be deleted")
	}
	return s.repo.DeleteBatch(ctx, shopID, batchID)
}
