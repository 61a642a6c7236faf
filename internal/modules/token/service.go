package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validation failures are split so clients can distinguish a re-login
// situation (expired) from a tampered or malformed token (invalid).
var (
	ErrExpired = errors.New("token has expired")
	ErrInvalid = errors.New("invalid authentication token")
	ErrRevoked = errors.New("token has been revoked")
)

// DefaultTTL is how long issued tokens stay valid. There is no refresh flow;
// re-authentication is required after expiry.
const DefaultTTL = 7 * 24 * time.Hour

// Claims is the signed token payload. Account is the phone of the acting
// manager or staff member and may be empty for shop-only legacy contexts;
// Shop is always present.
type Claims struct {
	Account string `json:"account,omitempty"`
	Shop    int64  `json:"shop"`
	jwt.RegisteredClaims
}

// Service issues and validates signed, stateless tokens.
type Service struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationList
}

// NewService creates a token service. A zero ttl falls back to DefaultTTL.
func NewService(secret string, ttl time.Duration, revoked RevocationList) *Service {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if revoked == nil {
		revoked = NewNopList()
	}
	return &Service{secret: []byte(secret), ttl: ttl, revoked: revoked}
}

// Issue signs a token scoped to (account, shop). account may be empty.
func (s *Service) Issue(account string, shopID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		Account: account,
		Shop:    shopID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Validate parses and verifies a token, returning its claims. Expired tokens
// fail with ErrExpired, anything else unverifiable with ErrInvalid, and
// revoked tokens with ErrRevoked.
func (s *Service) Validate(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tok.Valid || claims.Shop <= 0 {
		return nil, ErrInvalid
	}

	revoked, err := s.revoked.IsRevoked(ctx, raw)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}

// Revoke invalidates a token until its natural expiry. With the default
// no-op list this does nothing, matching the stateless scheme.
func (s *Service) Revoke(ctx context.Context, raw string) error {
	claims, err := s.Validate(ctx, raw)
	if err != nil {
		return err
	}
	return s.revoked.Revoke(ctx, raw, claims.ExpiresAt.Time)
}
