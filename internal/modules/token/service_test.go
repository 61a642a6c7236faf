package token

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRevocationList struct {
	revoked map[string]bool
}

func (f *fakeRevocationList) Revoke(_ context.Context, raw string, _ time.Time) error {
	if f.revoked == nil {
		f.revoked = map[string]bool{}
	}
	f.revoked[raw] = true
	return nil
}

func (f *fakeRevocationList) IsRevoked(_ context.Context, raw string) (bool, error) {
	return f.revoked[raw], nil
}

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("test_secret", time.Hour, nil)

	raw, err := svc.Issue("9876543210", 42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Validate(context.Background(), raw)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Account != "9876543210" {
		t.Errorf("account = %q, want 9876543210", claims.Account)
	}
	if claims.Shop != 42 {
		t.Errorf("shop = %d, want 42", claims.Shop)
	}
}

func TestValidateExpired(t *testing.T) {
	svc := NewService("test_secret", -time.Hour, nil)

	raw, err := svc.Issue("9876543210", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Validate(context.Background(), raw); !errors.Is(err, ErrExpired) {
		t.Errorf("Validate = %v, want ErrExpired", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	issuer := NewService("secret_a", time.Hour, nil)
	verifier := NewService("secret_b", time.Hour, nil)

	raw, err := issuer.Issue("9876543210", 1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := verifier.Validate(context.Background(), raw); !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate = %v, want ErrInvalid", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	svc := NewService("test_secret", time.Hour, nil)
	if _, err := svc.Validate(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate = %v, want ErrInvalid", err)
	}
}

func TestRevoke(t *testing.T) {
	list := &fakeRevocationList{}
	svc := NewService("test_secret", time.Hour, list)

	raw, err := svc.Issue("9876543210", 7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Validate(context.Background(), raw); err != nil {
		t.Fatalf("Validate before revoke: %v", err)
	}

	if err := svc.Revoke(context.Background(), raw); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Validate(context.Background(), raw); !errors.Is(err, ErrRevoked) {
		t.Errorf("Validate after revoke = %v, want ErrRevoked", err)
	}
}

func TestMissingShopClaimIsInvalid(t *testing.T) {
	svc := NewService("test_secret", time.Hour, nil)
	raw, err := svc.Issue("9876543210", 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Validate(context.Background(), raw); !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate = %v, want ErrInvalid", err)
	}
}
