package tenancy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/modules/account"
	"github.com/pharmakart/pharmacy-backend/internal/modules/token"
)

type fakeDirectory struct {
	shops    map[int64]*account.Shop
	staff    map[string]*account.Staff
	managers map[string]*account.Manager
}

func (f *fakeDirectory) GetShop(_ context.Context, id int64) (*account.Shop, error) {
	if s, ok := f.shops[id]; ok {
		return s, nil
	}
	return nil, apperr.New(apperr.NotFound, "shop not found")
}

func (f *fakeDirectory) GetStaffInShop(_ context.Context, phone string, shopID int64) (*account.Staff, error) {
	if st, ok := f.staff[phone]; ok && st.ShopID == shopID {
		return st, nil
	}
	return nil, apperr.New(apperr.NotFound, "staff not found")
}

func (f *fakeDirectory) GetManager(_ context.Context, phone string) (*account.Manager, error) {
	if m, ok := f.managers[phone]; ok {
		return m, nil
	}
	return nil, apperr.New(apperr.NotFound, "manager not found")
}

func testDirectory() *fakeDirectory {
	return &fakeDirectory{
		shops: map[int64]*account.Shop{
			1: {ID: 1, Name: "City Pharmacy", ManagerPhone: "9000000001"},
		},
		staff: map[string]*account.Staff{
			"9000000002": {Phone: "9000000002", ShopID: 1, IsActive: true},
		},
		managers: map[string]*account.Manager{
			"9000000001": {Phone: "9000000001"},
		},
	}
}

func resolvedRequest(t *testing.T, rv *Resolver, bearer string) (*httptest.ResponseRecorder, context.Context) {
	t.Helper()
	var captured context.Context
	handler := rv.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Context()
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/products/", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func TestMiddlewareMissingHeader(t *testing.T) {
	tokens := token.NewService("test_secret", time.Hour, nil)
	rv := NewResolver(tokens, testDirectory(), zerolog.Nop())

	rec, _ := resolvedRequest(t, rv, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareInvalidToken(t *testing.T) {
	tokens := token.NewService("test_secret", time.Hour, nil)
	rv := NewResolver(tokens, testDirectory(), zerolog.Nop())

	rec, _ := resolvedRequest(t, rv, "garbage")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareExpiredToken(t *testing.T) {
	expired := token.NewService("test_secret", -time.Hour, nil)
	raw, err := expired.Issue("9000000001", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	tokens := token.NewService("test_secret", time.Hour, nil)
	rv := NewResolver(tokens, testDirectory(), zerolog.Nop())

	rec, _ := resolvedRequest(t, rv, raw)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareShopGone(t *testing.T) {
	tokens := token.NewService("test_secret", time.Hour, nil)
	raw, err := tokens.Issue("9000000001", 99)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rv := NewResolver(tokens, testDirectory(), zerolog.Nop())

	rec, _ := resolvedRequest(t, rv, raw)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddlewareResolvesStaff(t *testing.T) {
	tokens := token.NewService("test_secret", time.Hour, nil)
	raw, err := tokens.Issue("9000000002", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rv := NewResolver(tokens, testDirectory(), zerolog.Nop())

	rec, ctx := resolvedRequest(t, rv, raw)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	shop, ok := ShopFrom(ctx)
	if !ok || shop.ID != 1 {
		t.Fatalf("shop not resolved")
	}
	acct, ok := AccountFrom(ctx)
	if !ok || acct.Staff == nil || acct.Staff.Phone != "9000000002" {
		t.Errorf("staff not resolved: %+v", acct)
	}
}

func TestMiddlewareResolvesManager(t *testing.T) {
	tokens := token.NewService("test_secret", time.Hour, nil)
	raw, err := tokens.Issue("9000000001", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rv := NewResolver(tokens, testDirectory(), zerolog.Nop())

	rec, ctx := resolvedRequest(t, rv, raw)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	acct, _ := AccountFrom(ctx)
	if acct.Manager == nil || acct.Manager.Phone != "9000000001" {
		t.Errorf("manager not resolved: %+v", acct)
	}
}

func TestMiddlewareUnknownAccountResolvesZero(t *testing.T) {
	tokens := token.NewService("test_secret", time.Hour, nil)
	raw, err := tokens.Issue("9999999999", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rv := NewResolver(tokens, testDirectory(), zerolog.Nop())

	rec, ctx := resolvedRequest(t, rv, raw)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	acct, ok := AccountFrom(ctx)
	if !ok || !acct.IsZero() {
		t.Errorf("account = %+v, want zero", acct)
	}
}
