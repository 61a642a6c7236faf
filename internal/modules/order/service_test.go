package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/events"
)

type fakeBatch struct {
	shop      int64
	productID string
	stock     int
	price     decimal.Decimal
}

// fakeRepository mirrors the all-or-nothing fulfilment semantics of the
// real transaction under a mutex.
type fakeRepository struct {
	mu       sync.Mutex
	orders   map[int64]*Order
	batches  map[int64]*fakeBatch
	payments map[int64]*Payment
	nextID   int64
	latest   int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		orders:   map[int64]*Order{},
		batches:  map[int64]*fakeBatch{},
		payments: map[int64]*Payment{},
		nextID:   1,
	}
}

func (f *fakeRepository) CreateOrder(_ context.Context, o *Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.OrderID = f.nextID
	f.nextID++
	f.latest = o.OrderID
	f.orders[o.OrderID] = o
	return nil
}

func (f *fakeRepository) GetOrder(_ context.Context, shopID, orderID int64) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[orderID]; ok && o.ShopID == shopID {
		return o, nil
	}
	return nil, apperr.New(apperr.NotFound, "order not found")
}

func (f *fakeRepository) ListOrders(_ context.Context, shopID int64) ([]*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*Order{}
	for _, o := range f.orders {
		if o.ShopID == shopID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepository) LatestOrderID(_ context.Context, shopID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[f.latest]; ok && o.ShopID == shopID {
		return f.latest, nil
	}
	return 0, apperr.New(apperr.NotFound, "no orders exist for this shop")
}

func (f *fakeRepository) UpdateOrder(_ context.Context, shopID, orderID int64, upd UpdateOrderRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok || o.ShopID != shopID {
		return apperr.New(apperr.NotFound, "order not found")
	}
	if upd.CustomerName != nil {
		o.CustomerName = *upd.CustomerName
	}
	if upd.TotalAmount != nil {
		o.TotalAmount = *upd.TotalAmount
	}
	if upd.DiscountPercentage != nil {
		o.DiscountPercentage = *upd.DiscountPercentage
	}
	return nil
}

func (f *fakeRepository) DeleteOrder(_ context.Context, shopID, orderID int64) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok || o.ShopID != shopID {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	delete(f.orders, orderID)
	return o, nil
}

func (f *fakeRepository) AddOrderItems(_ context.Context, shopID, orderID int64, items []ItemRequest) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok || o.ShopID != shopID {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	// Check every line before moving any stock.
	for _, item := range items {
		b, ok := f.batches[item.BatchID]
		if !ok || b.shop != shopID {
			return nil, apperr.Newf(apperr.NotFound, "batch %d not found", item.BatchID)
		}
		if b.stock < item.Quantity {
			return nil, &apperr.StockError{
				ProductID: b.productID,
				BatchID:   item.BatchID,
				Available: b.stock,
				Requested: item.Quantity,
			}
		}
	}
	for _, item := range items {
		b := f.batches[item.BatchID]
		b.stock -= item.Quantity
		price := b.price
		if item.UnitPrice != nil {
			price = *item.UnitPrice
		}
		o.Items = append(o.Items, &OrderItem{
			OrderID:   orderID,
			BatchID:   item.BatchID,
			Quantity:  item.Quantity,
			UnitPrice: price,
		})
	}
	return o, nil
}

func (f *fakeRepository) AddPayment(_ context.Context, shopID int64, p *Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[p.OrderID]; !ok || o.ShopID != shopID {
		return apperr.New(apperr.NotFound, "order not found")
	}
	if _, ok := f.payments[p.OrderID]; ok {
		return apperr.New(apperr.Conflict, "payment already recorded for this order")
	}
	f.payments[p.OrderID] = p
	return nil
}

func (f *fakeRepository) ListPayments(_ context.Context, _ int64, orderID int64) ([]*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[orderID]; ok {
		return []*Payment{p}, nil
	}
	return []*Payment{}, nil
}

type recordingAdjuster struct {
	deleted []*Order
}

func (r *recordingAdjuster) OrderDeleted(_ context.Context, _ int64, o *Order) error {
	r.deleted = append(r.deleted, o)
	return nil
}

func newTestService() (*Service, *fakeRepository, *recordingAdjuster) {
	repo := newFakeRepository()
	adj := &recordingAdjuster{}
	svc := NewService(repo, adj, events.NewNop(), zerolog.Nop())
	return svc, repo, adj
}

func TestCreateOrderWithItems(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.batches[1] = &fakeBatch{shop: 1, productID: "P001", stock: 50, price: decimal.NewFromInt(10)}
	repo.batches[2] = &fakeBatch{shop: 1, productID: "P002", stock: 20, price: decimal.NewFromInt(5)}

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		CustomerName: "Ravi",
		TotalAmount:  decimal.NewFromInt(40),
		Items: []ItemRequest{
			{BatchID: 1, Quantity: 3},
			{BatchID: 2, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(o.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(o.Items))
	}
	if !o.TotalAmount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("total = %s, want 40", o.TotalAmount)
	}
	if repo.batches[1].stock != 47 || repo.batches[2].stock != 18 {
		t.Errorf("stock = %d/%d, want 47/18", repo.batches[1].stock, repo.batches[2].stock)
	}
	if o.OrderNumber == "" {
		t.Errorf("order number not generated")
	}
}

func TestFulfilmentHonoursRequestUnitPrice(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.batches[1] = &fakeBatch{shop: 1, productID: "P001", stock: 50, price: decimal.NewFromInt(10)}
	repo.batches[2] = &fakeBatch{shop: 1, productID: "P002", stock: 20, price: decimal.NewFromInt(5)}

	negotiated := decimal.RequireFromString("12.5")
	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Items: []ItemRequest{
			{BatchID: 1, Quantity: 2, UnitPrice: &negotiated},
			{BatchID: 2, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !o.Items[0].UnitPrice.Equal(negotiated) {
		t.Errorf("item price = %s, want the requested 12.5", o.Items[0].UnitPrice)
	}
	if !o.Items[1].UnitPrice.Equal(decimal.NewFromInt(5)) {
		t.Errorf("item price = %s, want batch price 5", o.Items[1].UnitPrice)
	}
}

func TestFulfilmentLeavesTotalToCaller(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.batches[1] = &fakeBatch{shop: 1, productID: "P001", stock: 50, price: decimal.NewFromInt(100)}

	total := decimal.NewFromInt(90)
	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		TotalAmount:        total,
		DiscountPercentage: decimal.NewFromInt(10),
		Items:              []ItemRequest{{BatchID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !o.TotalAmount.Equal(total) {
		t.Errorf("total = %s, want the submitted 90", o.TotalAmount)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc, repo, _ := newTestService()
	negativePrice := decimal.NewFromInt(-1)

	cases := []struct {
		name string
		req  CreateOrderRequest
	}{
		{"negative total", CreateOrderRequest{TotalAmount: decimal.NewFromInt(-5)}},
		{"negative discount", CreateOrderRequest{DiscountPercentage: decimal.NewFromInt(-1)}},
		{"discount over 100", CreateOrderRequest{DiscountPercentage: decimal.NewFromInt(101)}},
		{"zero quantity", CreateOrderRequest{Items: []ItemRequest{{BatchID: 1, Quantity: 0}}}},
		{"bad batch id", CreateOrderRequest{Items: []ItemRequest{{BatchID: 0, Quantity: 1}}}},
		{"negative unit price", CreateOrderRequest{Items: []ItemRequest{{BatchID: 1, Quantity: 1, UnitPrice: &negativePrice}}}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(context.Background(), 1, tc.req); apperr.KindOf(err) != apperr.Validation {
			t.Errorf("%s: err = %v, want Validation", tc.name, err)
		}
	}
	if len(repo.orders) != 0 {
		t.Errorf("orders persisted on validation failure: %d", len(repo.orders))
	}
}

func TestAddItemsInsufficientStock(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.batches[1] = &fakeBatch{shop: 1, productID: "P001", stock: 50, price: decimal.NewFromInt(10)}
	repo.batches[2] = &fakeBatch{shop: 1, productID: "P002", stock: 1, price: decimal.NewFromInt(5)}

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.AddItems(context.Background(), 1, AddItemsRequest{
		OrderID: &o.OrderID,
		Items: []ItemRequest{
			{BatchID: 1, Quantity: 3},
			{BatchID: 2, Quantity: 5},
		},
	})
	var stockErr *apperr.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err = %v, want StockError", err)
	}
	if stockErr.BatchID != 2 || stockErr.Available != 1 || stockErr.Requested != 5 {
		t.Errorf("stock error = %+v", stockErr)
	}
	// Nothing moved.
	if repo.batches[1].stock != 50 || repo.batches[2].stock != 1 {
		t.Errorf("stock changed on failed fulfilment: %d/%d", repo.batches[1].stock, repo.batches[2].stock)
	}
}

func TestAddItemsDefaultsToLatestOrder(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.batches[1] = &fakeBatch{shop: 1, productID: "P001", stock: 10, price: decimal.NewFromInt(10)}

	first, err := svc.Create(context.Background(), 1, CreateOrderRequest{})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := svc.Create(context.Background(), 1, CreateOrderRequest{})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	o, err := svc.AddItems(context.Background(), 1, AddItemsRequest{
		Items: []ItemRequest{{BatchID: 1, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("AddItems: %v", err)
	}
	if o.OrderID != second.OrderID {
		t.Errorf("fulfilled order %d, want latest %d", o.OrderID, second.OrderID)
	}
	if len(repo.orders[first.OrderID].Items) != 0 {
		t.Errorf("items landed on the wrong order")
	}
}

func TestAddItemsNoOrders(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.batches[1] = &fakeBatch{shop: 1, productID: "P001", stock: 10, price: decimal.NewFromInt(10)}

	_, err := svc.AddItems(context.Background(), 1, AddItemsRequest{
		Items: []ItemRequest{{BatchID: 1, Quantity: 1}},
	})
	if apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestConcurrentFulfilment(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.batches[1] = &fakeBatch{shop: 1, productID: "P001", stock: 5, price: decimal.NewFromInt(10)}

	first, err := svc.Create(context.Background(), 1, CreateOrderRequest{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := svc.Create(context.Background(), 1, CreateOrderRequest{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	results := make(chan error, 2)
	for _, id := range []int64{first.OrderID, second.OrderID} {
		orderID := id
		go func() {
			_, err := svc.AddItems(context.Background(), 1, AddItemsRequest{
				OrderID: &orderID,
				Items:   []ItemRequest{{BatchID: 1, Quantity: 4}},
			})
			results <- err
		}()
	}

	var ok, insufficient int
	for i := 0; i < 2; i++ {
		err := <-results
		switch {
		case err == nil:
			ok++
		case apperr.KindOf(err) == apperr.InsufficientStock:
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Errorf("ok=%d insufficient=%d, want exactly one of each", ok, insufficient)
	}
	if repo.batches[1].stock != 1 {
		t.Errorf("stock = %d, want 1", repo.batches[1].stock)
	}
}

func TestDeleteOrderInvokesAdjuster(t *testing.T) {
	svc, repo, adj := newTestService()
	repo.batches[1] = &fakeBatch{shop: 1, productID: "P001", stock: 10, price: decimal.NewFromInt(10)}

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Items: []ItemRequest{{BatchID: 1, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), 1, o.OrderID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(adj.deleted) != 1 || adj.deleted[0].OrderID != o.OrderID {
		t.Errorf("adjuster not invoked: %+v", adj.deleted)
	}
	// Default policy keeps stock as sold.
	if repo.batches[1].stock != 8 {
		t.Errorf("stock = %d, want 8", repo.batches[1].stock)
	}
}

func TestOrderInvisibleAcrossShops(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.batches[1] = &fakeBatch{shop: 1, productID: "P001", stock: 10, price: decimal.NewFromInt(10)}

	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{
		Items: []ItemRequest{{BatchID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(context.Background(), 2, o.OrderID); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("Get from another shop: err = %v, want NotFound", err)
	}
	name := "Meena"
	if _, err := svc.Update(context.Background(), 2, o.OrderID, UpdateOrderRequest{CustomerName: &name}); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("Update from another shop: err = %v, want NotFound", err)
	}
	if err := svc.Delete(context.Background(), 2, o.OrderID); apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("Delete from another shop: err = %v, want NotFound", err)
	}
	_, err = svc.AddItems(context.Background(), 2, AddItemsRequest{
		OrderID: &o.OrderID,
		Items:   []ItemRequest{{BatchID: 1, Quantity: 1}},
	})
	if apperr.KindOf(err) != apperr.NotFound {
		t.Errorf("AddItems from another shop: err = %v, want NotFound", err)
	}
	if _, err := svc.Get(context.Background(), 1, o.OrderID); err != nil {
		t.Errorf("order damaged by cross-shop attempts: %v", err)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.RecordPayment(context.Background(), 1, PaymentRequest{
		PaymentType:       "CHEQUE",
		TransactionAmount: decimal.NewFromInt(10),
	})
	if apperr.KindOf(err) != apperr.Validation {
		t.Errorf("err = %v, want Validation", err)
	}

	_, err = svc.RecordPayment(context.Background(), 1, PaymentRequest{
		PaymentType:       PaymentCash,
		TransactionAmount: decimal.Zero,
	})
	if apperr.KindOf(err) != apperr.Validation {
		t.Errorf("err = %v, want Validation", err)
	}
}

func TestRecordPaymentOncePerOrder(t *testing.T) {
	svc, _, _ := newTestService()
	o, err := svc.Create(context.Background(), 1, CreateOrderRequest{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := PaymentRequest{
		OrderID:           &o.OrderID,
		PaymentType:       PaymentUPI,
		TransactionAmount: decimal.NewFromInt(100),
	}
	if _, err := svc.RecordPayment(context.Background(), 1, req); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if _, err := svc.RecordPayment(context.Background(), 1, req); apperr.KindOf(err) != apperr.Conflict {
		t.Errorf("err = %v, want Conflict", err)
	}
}
