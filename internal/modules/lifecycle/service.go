package lifecycle

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/modules/account"
	"github.com/pharmakart/pharmacy-backend/internal/modules/token"
)

// Store is the subset of the account store the lifecycle service needs.
type Store interface {
	CreateShop(ctx context.Context, s *account.Shop) error
	GetShop(ctx context.Context, id int64) (*account.Shop, error)
	ListShopsByManager(ctx context.Context, phone string) ([]*account.Shop, error)
	RenameShop(ctx context.Context, id int64, name string) error
	DeleteShop(ctx context.Context, id int64) error
	CreateStaff(ctx context.Context, st *account.Staff) error
	ListStaffByShop(ctx context.Context, shopID int64) ([]*account.Staff, error)
	DeleteStaff(ctx context.Context, phone string, shopID int64) error
	PhoneInUse(ctx context.Context, phone string) (bool, error)
}

// Service implements the manager-only shop and staff lifecycle. Staff cannot
// self-register; every operation here verifies the acting manager owns the
// target shop.
type Service struct {
	store  Store
	tokens *token.Service
	log    zerolog.Logger
}

// NewService creates a lifecycle service.
func NewService(store Store, tokens *token.Service, log zerolog.Logger) *Service {
	return &Service{store: store, tokens: tokens, log: log}
}

// AddShop creates another shop owned by the acting manager.
func (s *Service) AddShop(ctx context.Context, mgr *account.Manager, name string) (*account.Shop, error) {
	if name == "" {
		return nil, apperr.New(apperr.Validation, "shopname is required")
	}
	shop := &account.Shop{Name: name, ManagerPhone: mgr.Phone}
	if err := s.store.CreateShop(ctx, shop); err != nil {
		return nil, err
	}
	s.log.Info().Str("manager", mgr.Phone).Int64("shop_id", shop.ID).Msg("shop created")
	return shop, nil
}

// MyShops lists every shop owned by the acting manager.
func (s *Service) MyShops(ctx context.Context, mgr *account.Manager) ([]*account.Shop, error) {
	return s.store.ListShopsByManager(ctx, mgr.Phone)
}

// RenameShop renames an owned shop.
func (s *Service) RenameShop(ctx context.Context, mgr *account.Manager, shopID int64, name string) (*account.Shop, error) {
	if name == "" {
		return nil, apperr.New(apperr.Validation, "shopname is required")
	}
	shop, err := s.ownedShop(ctx, mgr, shopID)
	if err != nil {
		return nil, err
	}
	if err := s.store.RenameShop(ctx, shopID, name); err != nil {
		return nil, err
	}
	shop.Name = name
	return shop, nil
}

// DeleteShop removes an owned shop and, through the schema, everything
// scoped to it.
func (s *Service) DeleteShop(ctx context.Context, mgr *account.Manager, shopID int64) error {
	if _, err := s.ownedShop(ctx, mgr, shopID); err != nil {
		return err
	}
	return s.store.DeleteShop(ctx, shopID)
}

// SwitchShop issues a fresh token scoped to another shop the manager owns.
// The previous token stays valid until its own expiry.
func (s *Service) SwitchShop(ctx context.Context, mgr *account.Manager, shopID int64) (string, *account.Shop, error) {
	shop, err := s.ownedShop(ctx, mgr, shopID)
	if err != nil {
		return "", nil, err
	}
	tok, err := s.tokens.Issue(mgr.Phone, shop.ID)
	if err != nil {
		return "", nil, apperr.Wrap(apperr.Internal, "unable to generate token", err)
	}
	return tok, shop, nil
}

// AddStaffRequest creates a staff account in an owned shop.
type AddStaffRequest struct {
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// AddStaff creates an active staff account bound to the given shop.
func (s *Service) AddStaff(ctx context.Context, mgr *account.Manager, shopID int64, req AddStaffRequest) (*account.Staff, error) {
	if req.Phone == "" {
		return nil, apperr.New(apperr.Validation, "phone is required")
	}
	if len(req.Phone) != 10 {
		return nil, apperr.New(apperr.Validation, "phone number must be 10 digits")
	}
	if req.Password == "" {
		return nil, apperr.New(apperr.Validation, "password is required")
	}
	if _, err := s.ownedShop(ctx, mgr, shopID); err != nil {
		return nil, err
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
	st := &account.Staff{
		Phone:        req.Phone,
		Name:         req.Name,
		PasswordHash: string(hash),
		ShopID:       shopID,
		IsActive:     true,
	}
	if err := s.store.CreateStaff(ctx, st); err != nil {
		return nil, err
	}
	s.log.Info().Str("staff", st.Phone).Int64("shop_id", shopID).Msg("staff added")
	return st, nil
}

// ListStaff lists staff of an owned shop.
func (s *Service) ListStaff(ctx context.Context, mgr *account.Manager, shopID int64) ([]*account.Staff, error) {
	if _, err := s.ownedShop(ctx, mgr, shopID); err != nil {
		return nil, err
	}
	return s.store.ListStaffByShop(ctx, shopID)
}

// RemoveStaff deletes a staff account from an owned shop.
func (s *Service) RemoveStaff(ctx context.Context, mgr *account.Manager, shopID int64, phone string) error {
	if _, err := s.ownedShop(ctx, mgr, shopID); err != nil {
		return err
	}
	return s.store.DeleteStaff(ctx, phone, shopID)
}

func (s *Service) ownedShop(ctx context.Context, mgr *account.Manager, shopID int64) (*account.Shop, error) {
	shop, err := s.store.GetShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop.ManagerPhone != mgr.Phone {
		return nil, apperr.New(apperr.Forbidden, "you do not manage this shop")
	}
	return shop, nil
}
