package tenancy

import (
	"context"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/modules/account"
)

// Viewer authorizes a read-only shop-scoped operation. Any request that
// resolved a shop passes, including tokens without an account claim.
func Viewer(ctx context.Context) (*account.Shop, error) {
	shop, ok := ShopFrom(ctx)
	if !ok {
		return nil, apperr.New(apperr.Unauthenticated, "authentication credentials were not provided")
	}
	return shop, nil
}

// Operator authorizes a mutating shop-scoped operation: the acting account
// must be the manager owning the resolved shop, or an active staff member of
// it. Each case is checked explicitly; there is no attribute probing.
func Operator(ctx context.Context) (*account.Shop, Account, error) {
	shop, ok := ShopFrom(ctx)
	if !ok {
		return nil, Account{}, apperr.New(apperr.Unauthenticated, "authentication credentials were not provided")
	}
	acct, _ := AccountFrom(ctx)
	if acct.IsZero() {
		return nil, Account{}, apperr.New(apperr.Unauthenticated, "account required for this operation")
	}
	switch {
	case acct.Manager != nil:
		if acct.Manager.Phone != shop.ManagerPhone {
			return nil, Account{}, apperr.New(apperr.Forbidden, "you do not manage this shop")
		}
	case acct.Staff != nil:
		if acct.Staff.ShopID != shop.ID {
			return nil, Account{}, apperr.New(apperr.Forbidden, "staff account belongs to a different shop")
		}
		if !acct.Staff.IsActive {
			return nil, Account{}, apperr.New(apperr.Forbidden, "staff account is deactivated")
		}
	}
	return shop, acct, nil
}

// ManagerOnly authorizes a lifecycle operation: only the manager owning the
// resolved shop passes. Staff is rejected regardless of shop match.
func ManagerOnly(ctx context.Context) (*account.Shop, *account.Manager, error) {
	shop, ok := ShopFrom(ctx)
	if !ok {
		return nil, nil, apperr.New(apperr.Unauthenticated, "authentication credentials were not provided")
	}
	acct, _ := AccountFrom(ctx)
	if acct.IsZero() {
		return nil, nil, apperr.New(apperr.Unauthenticated, "account required for this operation")
	}
	if acct.Manager == nil {
		return nil, nil, apperr.New(apperr.Forbidden, "manager privileges required")
	}
	if acct.Manager.Phone != shop.ManagerPhone {
		return nil, nil, apperr.New(apperr.Forbidden, "you do not manage this shop")
	}
	return shop, acct.Manager, nil
}
