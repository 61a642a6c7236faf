package tenancy

import (
	"context"

	"github.com/pharmakart/pharmacy-backend/internal/modules/account"
)

// Account is the resolved acting principal: either a manager or a staff
// member, never both. The zero value means the token carried no account
// claim (shop-only legacy context).
type Account struct {
	Manager *account.Manager
	Staff   *account.Staff
}

// IsZero reports whether no principal was resolved.
func (a Account) IsZero() bool { return a.Manager == nil && a.Staff == nil }

// Phone returns the principal's identity key, or "" for a zero Account.
func (a Account) Phone() string {
	switch {
	case a.Manager != nil:
		return a.Manager.Phone
	case a.Staff != nil:
		return a.Staff.Phone
	default:
		return ""
	}
}

type ctxKey int

const (
	shopKey ctxKey = iota
	accountKey
)

// WithShop attaches the resolved shop to ctx.
func WithShop(ctx context.Context, s *account.Shop) context.Context {
	return context.WithValue(ctx, shopKey, s)
}

// ShopFrom returns the resolved shop, if any.
func ShopFrom(ctx context.Context) (*account.Shop, bool) {
	s, ok := ctx.Value(shopKey).(*account.Shop)
	return s, ok
}

// WithAccount attaches the resolved acting account to ctx.
func WithAccount(ctx context.Context, a Account) context.Context {
	return context.WithValue(ctx, accountKey, a)
}

// AccountFrom returns the resolved acting account. The second return is false
// when the middleware did not run; a zero Account with true means the token
// carried no account claim.
func AccountFrom(ctx context.Context) (Account, bool) {
	a, ok := ctx.Value(accountKey).(Account)
	return a, ok
}
