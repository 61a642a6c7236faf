package auth

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/modules/account"
	"github.com/pharmakart/pharmacy-backend/internal/modules/tenancy"
	"github.com/pharmakart/pharmacy-backend/internal/modules/token"
)

// Store is the subset of the account store the auth service needs.
type Store interface {
	RegisterManager(ctx context.Context, m *account.Manager, shopName string) (*account.Shop, error)
	GetManager(ctx context.Context, phone string) (*account.Manager, error)
	GetStaffByPhone(ctx context.Context, phone string) (*account.Staff, error)
	GetShop(ctx context.Context, id int64) (*account.Shop, error)
	ListShopsByManager(ctx context.Context, phone string) ([]*account.Shop, error)
	PhoneInUse(ctx context.Context, phone string) (bool, error)
	UpdateManagerPassword(ctx context.Context, phone, hash string) error
	UpdateStaffPassword(ctx context.Context, phone, hash string) error
}

// RegisterRequest creates a manager together with their first shop.
type RegisterRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name"`
	ShopName string `json:"shopname"`
}

// Credentials is a login attempt.
type Credentials struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Session is the result of a successful registration or login.
type Session struct {
	Token   string
	Shop    *account.Shop
	Manager *account.Manager
	Staff   *account.Staff
}

// Service implements registration and login. Login resolves staff before
// managers, mirroring the tenancy resolver's precedence.
type Service struct {
	store  Store
	tokens *token.Service
	log    zerolog.Logger
}

// NewService creates an auth service.
func NewService(store Store, tokens *token.Service, log zerolog.Logger) *Service {
	return &Service{store: store, tokens: tokens, log: log}
}

// Register creates a manager and their first shop, then issues a token scoped
// to that shop.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if err := validPhone(req.Phone); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, apperr.New(apperr.Validation, "password is required")
	}
	if req.ShopName == "" {
		return nil, apperr.New(apperr.Validation, "shopname is required")
	}

	inUse, err := s.store.PhoneInUse(ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, apperr.New(apperr.Conflict, "phone number already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to secure password", err)
	}

	mgr := &account.Manager{Phone: req.Phone, Name: req.Name, PasswordHash: string(hash)}
	shop, err := s.store.RegisterManager(ctx, mgr, req.ShopName)
	if err != nil {
		return nil, err
	}

	tok, err := s.tokens.Issue(mgr.Phone, shop.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to generate token", err)
	}
	s.log.Info().Str("phone", mgr.Phone).Int64("shop_id", shop.ID).Msg("manager registered")
	return &Session{Token: tok, Shop: shop, Manager: mgr}, nil
}

// Login authenticates a phone/password pair. Staff accounts are tried first;
// a staff token is scoped to their shop, a manager token to the manager's
// first owned shop.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if creds.Phone == "" || creds.Password == "" {
		return nil, apperr.New(apperr.Validation, "phone and password are required")
	}

	st, err := s.store.GetStaffByPhone(ctx, creds.Phone)
	switch {
	case err == nil:
		return s.loginStaff(ctx, st, creds.Password)
	case apperr.KindOf(err) != apperr.NotFound:
		return nil, err
	}

	mgr, err := s.store.GetManager(ctx, creds.Phone)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.New(apperr.Unauthenticated, "invalid phone or password")
		}
		return nil, err
	}
	return s.loginManager(ctx, mgr, creds.Password)
}

func (s *Service) loginStaff(ctx context.Context, st *account.Staff, password string) (*Session, error) {
	if !st.IsActive {
		return nil, apperr.New(apperr.Unauthenticated, "staff account is deactivated")
	}
	if bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)) != nil {
		return nil, apperr.New(apperr.Unauthenticated, "invalid phone or password")
	}
	shop, err := s.store.GetShop(ctx, st.ShopID)
	if err != nil {
		return nil, err
	}
	tok, err := s.tokens.Issue(st.Phone, shop.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to generate token", err)
	}
	return &Session{Token: tok, Shop: shop, Staff: st}, nil
}

func (s *Service) loginManager(ctx context.Context, mgr *account.Manager, password string) (*Session, error) {
	if bcrypt.CompareHashAndPassword([]byte(mgr.PasswordHash), []byte(password)) != nil {
		return nil, apperr.New(apperr.Unauthenticated, "invalid phone or password")
	}
	shops, err := s.store.ListShopsByManager(ctx, mgr.Phone)
	if err != nil {
		return nil, err
	}
	if len(shops) == 0 {
		return nil, apperr.New(apperr.NotFound, "no shops found for this account")
	}
	tok, err := s.tokens.Issue(mgr.Phone, shops[0].ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "unable to generate token", err)
	}
	return &Session{Token: tok, Shop: shops[0], Manager: mgr}, nil
}

// ChangePassword updates the acting account's password hash.
func (s *Service) ChangePassword(ctx context.Context, acct tenancy.Account, current, next string) error {
	if next == "" {
		return apperr.New(apperr.Validation, "new password is required")
	}
	var storedHash string
	switch {
	case acct.Manager != nil:
		storedHash = acct.Manager.PasswordHash
	case acct.Staff != nil:
		storedHash = acct.Staff.PasswordHash
	default:
		return apperr.New(apperr.Unauthenticated, "account required for this operation")
	}
	if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(current)) != nil {
		return apperr.New(apperr.Unauthenticated, "invalid phone or password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "unable to secure password", err)
	}
	if acct.Manager != nil {
		return s.store.UpdateManagerPassword(ctx, acct.Manager.Phone, string(hash))
	}
	return s.store.UpdateStaffPassword(ctx, acct.Staff.Phone, string(hash))
}

func validPhone(phone string) error {
	if phone == "" {
		return apperr.New(apperr.Validation, "phone is required")
	}
	if len(phone) != 10 {
		return apperr.New(apperr.Validation, "phone number must be 10 digits")
	}
	for _, c := range phone {
		if c < '0' || c > '9' {
			return apperr.New(apperr.Validation, "phone number must be 10 digits")
		}
	}
	return nil
}
