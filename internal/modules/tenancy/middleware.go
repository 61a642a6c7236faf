package tenancy

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/modules/account"
	"github.com/pharmakart/pharmacy-backend/internal/modules/token"
	"github.com/pharmakart/pharmacy-backend/internal/web"
)

// Directory is the subset of the account store the resolver needs.
type Directory interface {
	GetShop(ctx context.Context, id int64) (*account.Shop, error)
	GetStaffInShop(ctx context.Context, phone string, shopID int64) (*account.Staff, error)
	GetManager(ctx context.Context, phone string) (*account.Manager, error)
}

// Resolver translates a bearer token into an authorized (Shop, Account)
// request context.
type Resolver struct {
	tokens *token.Service
	dir    Directory
	log    zerolog.Logger
}

// NewResolver creates a tenancy resolver.
func NewResolver(tokens *token.Service, dir Directory, log zerolog.Logger) *Resolver {
	return &Resolver{tokens: tokens, dir: dir, log: log}
}

// Middleware resolves the acting shop and account for every request and
// attaches them to the request context. The shop claim is mandatory; the
// account claim is optional and, when present, resolves as staff of the
// token's shop first, then as a manager globally.
func (rv *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			web.Error(w, http.StatusUnauthorized, "authentication credentials were not provided")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims, err := rv.tokens.Validate(r.Context(), raw)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrExpired):
				web.Error(w, http.StatusUnauthorized, token.ErrExpired.Error())
			case errors.Is(err, token.ErrInvalid), errors.Is(err, token.ErrRevoked):
				web.Error(w, http.StatusUnauthorized, err.Error())
			default:
				rv.log.Error().Err(err).Msg("token validation")
				web.Error(w, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		shop, err := rv.dir.GetShop(r.Context(), claims.Shop)
		if err != nil {
			if apperr.KindOf(err) == apperr.NotFound {
				web.Error(w, http.StatusUnauthorized, "shop not found for token")
				return
			}
			web.RespondError(w, rv.log, err)
			return
		}

		acct, err := rv.resolveAccount(r.Context(), claims.Account, shop.ID)
		if err != nil {
			web.RespondError(w, rv.log, err)
			return
		}

		ctx := WithShop(r.Context(), shop)
		ctx = WithAccount(ctx, acct)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveAccount maps the optional account claim to a principal. A claim that
// matches neither staff nor manager resolves to a zero Account rather than
// failing, so shop-scoped read endpoints keep working.
func (rv *Resolver) resolveAccount(ctx context.Context, phone string, shopID int64) (Account, error) {
	if phone == "" {
		return Account{}, nil
	}
	st, err := rv.dir.GetStaffInShop(ctx, phone, shopID)
	if err == nil {
		return Account{Staff: st}, nil
	}
	if apperr.KindOf(err) != apperr.NotFound {
		return Account{}, err
	}
	mgr, err := rv.dir.GetManager(ctx, phone)
	if err == nil {
		return Account{Manager: mgr}, nil
	}
	if apperr.KindOf(err) != apperr.NotFound {
		return Account{}, err
	}
	return Account{}, nil
}
