package account

import "context"

// Repository is the persistence contract for managers, shops, and staff.
type Repository interface {
	// RegisterManager creates a manager together with their first shop in a
	// single transaction and returns the created shop.
	RegisterManager(ctx context.Context, m *Manager, shopName string) (*Shop, error)
	GetManager(ctx context.Context, phone string) (*Manager, error)
	UpdateManagerPassword(ctx context.Context, phone, hash string) error

	// PhoneInUse reports whether phone identifies any manager or staff account.
	PhoneInUse(ctx context.Context, phone string) (bool, error)

	CreateShop(ctx context.Context, s *Shop) error
	GetShop(ctx context.Context, id int64) (*Shop, error)
	ListShopsByManager(ctx context.Context, phone string) ([]*Shop, error)
	RenameShop(ctx context.Context, id int64, name string) error
	DeleteShop(ctx context.Context, id int64) error

	CreateStaff(ctx context.Context, st *Staff) error
	GetStaffByPhone(ctx context.Context, phone string) (*Staff, error)
	GetStaffInShop(ctx context.Context, phone string, shopID int64) (*Staff, error)
	ListStaffByShop(ctx context.Context, shopID int64) ([]*Staff, error)
	UpdateStaffPassword(ctx context.Context, phone, hash string) error
	DeleteStaff(ctx context.Context, phone string, shopID int64) error
}
