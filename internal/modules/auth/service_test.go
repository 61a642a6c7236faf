package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/modules/account"
	"github.com/pharmakart/pharmacy-backend/internal/modules/tenancy"
	"github.com/pharmakart/pharmacy-backend/internal/modules/token"
)

type fakeStore struct {
	managers map[string]*account.Manager
	staff    map[string]*account.Staff
	shops    map[int64]*account.Shop
	nextShop int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		managers: map[string]*account.Manager{},
		staff:    map[string]*account.Staff{},
		shops:    map[int64]*account.Shop{},
		nextShop: 1,
	}
}

func (f *fakeStore) RegisterManager(_ context.Context, m *account.Manager, shopName string) (*account.Shop, error) {
	if _, ok := f.managers[m.Phone]; ok {
		return nil, apperr.New(apperr.Conflict, "phone number already exists")
	}
	f.managers[m.Phone] = m
	shop := &account.Shop{ID: f.nextShop, Name: shopName, ManagerPhone: m.Phone}
	f.shops[shop.ID] = shop
	f.nextShop++
	return shop, nil
}

func (f *fakeStore) GetManager(_ context.Context, phone string) (*account.Manager, error) {
	if m, ok := f.managers[phone]; ok {
		return m, nil
	}
	return nil, apperr.New(apperr.NotFound, "manager not found")
}

func (f *fakeStore) GetStaffByPhone(_ context.Context, phone string) (*account.Staff, error) {
	if st, ok := f.staff[phone]; ok {
		return st, nil
	}
	return nil, apperr.New(apperr.NotFound, "staff not found")
}

func (f *fakeStore) GetShop(_ context.Context, id int64) (*account.Shop, error) {
	if s, ok := f.shops[id]; ok {
		return s, nil
	}
	return nil, apperr.New(apperr.NotFound, "shop not found")
}

func (f *fakeStore) ListShopsByManager(_ context.Context, phone string) ([]*account.Shop, error) {
	shops := []*account.Shop{}
	for id := int64(1); id < f.nextShop; id++ {
		if s, ok := f.shops[id]; ok && s.ManagerPhone == phone {
			shops = append(shops, s)
		}
	}
	return shops, nil
}

func (f *fakeStore) PhoneInUse(_ context.Context, phone string) (bool, error) {
	_, mgr := f.managers[phone]
	_, st := f.staff[phone]
	return mgr || st, nil
}

func (f *fakeStore) UpdateManagerPassword(_ context.Context, phone, hash string) error {
	m, ok := f.managers[phone]
	if !ok {
		return apperr.New(apperr.NotFound, "manager not found")
	}
	m.PasswordHash = hash
	return nil
}

func (f *fakeStore) UpdateStaffPassword(_ context.Context, phone, hash string) error {
	st, ok := f.staff[phone]
	if !ok {
		return apperr.New(apperr.NotFound, "staff not found")
	}
	st.PasswordHash = hash
	return nil
}

func newTestService(store Store) (*Service, *token.Service) {
	tokens := token.NewService("test_secret", time.Hour, nil)
	return NewService(store, tokens, zerolog.Nop()), tokens
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestRegisterIssuesScopedToken(t *testing.T) {
	store := newFakeStore()
	svc, tokens := newTestService(store)

	sess, err := svc.Register(context.Background(), RegisterRequest{
		Phone:    "9000000001",
		Password: "secret",
		Name:     "Asha",
		ShopName: "City Pharmacy",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.Shop.Name != "City Pharmacy" {
		t.Errorf("shop = %+v", sess.Shop)
	}
	claims, err := tokens.Validate(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Account != "9000000001" || claims.Shop != sess.Shop.ID {
		t.Errorf("claims = %+v", claims)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(newFakeStore())
	cases := []RegisterRequest{
		{Password: "x", ShopName: "s"},                              // missing phone
		{Phone: "12345", Password: "x", ShopName: "s"},              // short phone
		{Phone: "12345abcde", Password: "x", ShopName: "s"},         // non-digit phone
		{Phone: "9000000001", ShopName: "s"},                        // missing password
		{Phone: "9000000001", Password: "x"},                        // missing shopname
	}
	for i, req := range cases {
		if _, err := svc.Register(context.Background(), req); apperr.KindOf(err) != apperr.Validation {
			t.Errorf("case %d: err = %v, want Validation", i, err)
		}
	}
}

func TestRegisterDuplicatePhone(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	req := RegisterRequest{Phone: "9000000001", Password: "secret", ShopName: "City Pharmacy"}

	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); apperr.KindOf(err) != apperr.Conflict {
		t.Errorf("err = %v, want Conflict", err)
	}
}

func TestLoginManager(t *testing.T) {
	store := newFakeStore()
	store.managers["9000000001"] = &account.Manager{Phone: "9000000001", PasswordHash: mustHash(t, "secret")}
	store.shops[1] = &account.Shop{ID: 1, Name: "City Pharmacy", ManagerPhone: "9000000001"}
	store.nextShop = 2
	svc, _ := newTestService(store)

	sess, err := svc.Login(context.Background(), Credentials{Phone: "9000000001", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Manager == nil || sess.Staff != nil {
		t.Errorf("session = %+v, want manager", sess)
	}
	if sess.Shop.ID != 1 {
		t.Errorf("shop = %+v, want first owned shop", sess.Shop)
	}
}

func TestLoginPrefersStaff(t *testing.T) {
	store := newFakeStore()
	store.shops[1] = &account.Shop{ID: 1, Name: "City Pharmacy", ManagerPhone: "9000000001"}
	store.nextShop = 2
	store.staff["9000000002"] = &account.Staff{
		Phone: "9000000002", ShopID: 1, IsActive: true,
		PasswordHash: mustHash(t, "secret"),
	}
	svc, _ := newTestService(store)

	sess, err := svc.Login(context.Background(), Credentials{Phone: "9000000002", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Staff == nil {
		t.Fatalf("session = %+v, want staff", sess)
	}
	if sess.Shop.ID != 1 {
		t.Errorf("shop = %+v, want staff's shop", sess.Shop)
	}
}

func TestLoginDeactivatedStaff(t *testing.T) {
	store := newFakeStore()
	store.staff["9000000002"] = &account.Staff{
		Phone: "9000000002", ShopID: 1, IsActive: false,
		PasswordHash: mustHash(t, "secret"),
	}
	svc, _ := newTestService(store)

	_, err := svc.Login(context.Background(), Credentials{Phone: "9000000002", Password: "secret"})
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Errorf("err = %v, want Unauthenticated", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeStore()
	store.managers["9000000001"] = &account.Manager{Phone: "9000000001", PasswordHash: mustHash(t, "secret")}
	store.shops[1] = &account.Shop{ID: 1, ManagerPhone: "9000000001"}
	store.nextShop = 2
	svc, _ := newTestService(store)

	_, err := svc.Login(context.Background(), Credentials{Phone: "9000000001", Password: "wrong"})
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Errorf("err = %v, want Unauthenticated", err)
	}
}

func TestLoginUnknownPhone(t *testing.T) {
	svc, _ := newTestService(newFakeStore())
	_, err := svc.Login(context.Background(), Credentials{Phone: "9999999999", Password: "secret"})
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Errorf("err = %v, want Unauthenticated", err)
	}
}

func TestChangePassword(t *testing.T) {
	store := newFakeStore()
	mgr := &account.Manager{Phone: "9000000001", PasswordHash: mustHash(t, "old")}
	store.managers["9000000001"] = mgr
	svc, _ := newTestService(store)

	acct := tenancy.Account{Manager: mgr}
	if err := svc.ChangePassword(context.Background(), acct, "old", "new"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(store.managers["9000000001"].PasswordHash), []byte("new")) != nil {
		t.Errorf("password hash not updated")
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	store := newFakeStore()
	mgr := &account.Manager{Phone: "9000000001", PasswordHash: mustHash(t, "old")}
	store.managers["9000000001"] = mgr
	svc, _ := newTestService(store)

	err := svc.ChangePassword(context.Background(), tenancy.Account{Manager: mgr}, "bad", "new")
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Errorf("err = %v, want Unauthenticated", err)
	}
}
