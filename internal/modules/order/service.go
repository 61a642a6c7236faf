package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/events"
)

// StockAdjuster is consulted after an order is deleted. The default keeps
// stock untouched: sold quantities are not returned to shelves when the
// record of the sale goes away.
type StockAdjuster interface {
	OrderDeleted(ctx context.Context, shopID int64, o *Order) error
}

type nopAdjuster struct{}

func (nopAdjuster) OrderDeleted(context.Context, int64, *Order) error { return nil }

// NewNopAdjuster returns the default no-op stock adjuster.
func NewNopAdjuster() StockAdjuster { return nopAdjuster{} }

// Service implements order fulfilment and payment recording.
type Service struct {
	repo     Repository
	adjuster StockAdjuster
	events   events.Publisher
	log      zerolog.Logger
}

// NewService creates an order service.
func NewService(repo Repository, adjuster StockAdjuster, pub events.Publisher, log zerolog.Logger) *Service {
	return &Service{repo: repo, adjuster: adjuster, events: pub, log: log}
}

// Create opens a new order and, when the request carries items, fulfils them
// in the same call.
func (s *Service) Create(ctx context.Context, shopID int64, req CreateOrderRequest) (*Order, error) {
	if req.TotalAmount.IsNegative() {
		return nil, apperr.New(apperr.Validation, "total_amount must not be negative")
	}
	if req.DiscountPercentage.IsNegative() ||
		req.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperr.New(apperr.Validation, "discount_percentage must be between 0 and 100")
	}
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	o := &Order{
		OrderNumber:        generateOrderNumber(),
		ShopID:             shopID,
		CustomerName:       req.CustomerName,
		CustomerNumber:     req.CustomerNumber,
		DoctorName:         req.DoctorName,
		TotalAmount:        req.TotalAmount,
		DiscountPercentage: req.DiscountPercentage,
	}
	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	if len(req.Items) > 0 {
		full, err := s.repo.AddOrderItems(ctx, shopID, o.OrderID, req.Items)
		if err != nil {
			return nil, err
		}
		o = full
	}
	s.log.Info().Int64("shop_id", shopID).Int64("order_id", o.OrderID).
		Str("order_number", o.OrderNumber).Msg("order created")
	s.publishSale(ctx, shopID, o)
	return o, nil
}

// AddItems fulfils items against an existing order; with no explicit order
// id the shop's most recent order is used.
func (s *Service) AddItems(ctx context.Context, shopID int64, req AddItemsRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, apperr.New(apperr.Validation, "items are required")
	}
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	orderID, err := s.resolveOrderID(ctx, shopID, req.OrderID)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.AddOrderItems(ctx, shopID, orderID, req.Items)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("shop_id", shopID).Int64("order_id", orderID).
		Int("items", len(req.Items)).Msg("order items fulfilled")
	s.publishSale(ctx, shopID, o)
	return o, nil
}

// Get fetches one order with its items and payments.
func (s *Service) Get(ctx context.Context, shopID, orderID int64) (*Order, error) {
	return s.repo.GetOrder(ctx, shopID, orderID)
}

// List lists the shop's orders, newest first.
func (s *Service) List(ctx context.Context, shopID int64) ([]*Order, error) {
	return s.repo.ListOrders(ctx, shopID)
}

// Update applies a partial update and returns the fresh order.
func (s *Service) Update(ctx context.Context, shopID, orderID int64, upd UpdateOrderRequest) (*Order, error) {
	if upd.TotalAmount != nil && upd.TotalAmount.IsNegative() {
		return nil, apperr.New(apperr.Validation, "total_amount must not be negative")
	}
	if upd.DiscountPercentage != nil {
		if upd.DiscountPercentage.IsNegative() ||
			upd.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
			return nil, apperr.New(apperr.Validation, "discount_percentage must be between 0 and 100")
		}
	}
	if err := s.repo.UpdateOrder(ctx, shopID, orderID, upd); err != nil {
		return nil, err
	}
	return s.repo.GetOrder(ctx, shopID, orderID)
}

// Delete removes an order and its items, then hands the deleted order to the
// stock adjuster.
func (s *Service) Delete(ctx context.Context, shopID, orderID int64) error {
	o, err := s.repo.DeleteOrder(ctx, shopID, orderID)
	if err != nil {
		return err
	}
	if err := s.adjuster.OrderDeleted(ctx, shopID, o); err != nil {
		s.log.Error().Err(err).Int64("order_id", orderID).Msg("stock adjustment failed")
	}
	s.log.Info().Int64("shop_id", shopID).Int64("order_id", orderID).Msg("order deleted")
	return nil
}

// RecordPayment settles an order; with no explicit order id the shop's most
// recent order is used.
func (s *Service) RecordPayment(ctx context.Context, shopID int64, req PaymentRequest) (*Payment, error) {
	switch req.PaymentType {
	case PaymentUPI, PaymentCash, PaymentCard:
	default:
		return nil, apperr.New(apperr.Validation, "payment_type must be one of UPI, CASH, CARD")
	}
	if !req.TransactionAmount.IsPositive() {
		return nil, apperr.New(apperr.Validation, "transaction_amount must be greater than zero")
	}
	orderID, err := s.resolveOrderID(ctx, shopID, req.OrderID)
	if err != nil {
		return nil, err
	}
	p := &Payment{
		OrderID:           orderID,
		PaymentType:       req.PaymentType,
		TransactionAmount: req.TransactionAmount,
	}
	if err := s.repo.AddPayment(ctx, shopID, p); err != nil {
		return nil, err
	}
	s.log.Info().Int64("shop_id", shopID).Int64("order_id", orderID).
		Str("type", p.PaymentType).Msg("payment recorded")
	return p, nil
}

// ListPayments lists the payments of one order.
func (s *Service) ListPayments(ctx context.Context, shopID, orderID int64) ([]*Payment, error) {
	if _, err := s.repo.GetOrder(ctx, shopID, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, shopID, orderID)
}

func (s *Service) resolveOrderID(ctx context.Context, shopID int64, explicit *int64) (int64, error) {
	if explicit != nil {
		if *explicit <= 0 {
			return 0, apperr.New(apperr.Validation, "order_id must be positive")
		}
		return *explicit, nil
	}
	return s.repo.LatestOrderID(ctx, shopID)
}

func (s *Service) publishSale(ctx context.Context, shopID int64, o *Order) {
	if len(o.Items) == 0 {
		return
	}
	payload := map[string]interface{}{
		"shop_id":      shopID,
		"order_id":     o.OrderID,
		"order_number": o.OrderNumber,
		"total_amount": o.TotalAmount,
		"items":        len(o.Items),
	}
	if err := s.events.Publish(ctx, fmt.Sprintf("shop-%d", shopID), payload); err != nil {
		s.log.Warn().Err(err).Int64("order_id", o.OrderID).Msg("sale event publish failed")
	}
}

func validateItems(items []ItemRequest) error {
	for _, item := range items {
		if item.BatchID <= 0 {
			return apperr.New(apperr.Validation, "batch_id must be positive")
		}
		if item.Quantity <= 0 {
			return apperr.Newf(apperr.Validation, "quantity must be greater than zero for batch %d", item.BatchID)
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return apperr.Newf(apperr.Validation, "unit_price must not be negative for batch %d", item.BatchID)
		}
	}
	return nil
}

// generateOrderNumber creates a human-readable order number: ORD-YYYYMMDD-XXXX.
func generateOrderNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("ORD-%s-%s", date, suffix)
}
