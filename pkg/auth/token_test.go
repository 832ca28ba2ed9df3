package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/eliteacai/pdv-backend/pkg/config"
	"github.com/eliteacai/pdv-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "elite-acai-pdv", ExpirationMinutes: 30}
}

func TestMintAndParseOperatorToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	operatorID := uuid.New()

	token, err := MintOperatorToken(cfg, now, Operator{
		ID:          operatorID,
		Code:        " OP01 ",
		Name:        "Maria",
		Permissions: []enums.Permission{enums.PermissionViewSales},
	})
	if err != nil {
		t.Fatalf("mint operator token: %v", err)
	}

	claims, err := ParseOperatorToken(cfg, token)
	if err != nil {
		t.Fatalf("parse operator token: %v", err)
	}
	if claims.OperatorID != operatorID {
		t.Fatalf("expected operator id %s, got %s", operatorID, claims.OperatorID)
	}
	if claims.Code != "OP01" {
		t.Fatalf("expected trimmed code, got %q", claims.Code)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	op := claims.Operator()
	if !op.Has(enums.PermissionViewSales) || op.Has(enums.PermissionViewCashRegister) {
		t.Fatalf("unexpected permissions %v", op.Permissions)
	}

	exp := now.Add(30 * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt.Time)
	}
}

func TestParseOperatorTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintOperatorToken(cfg, time.Now(), Operator{Code: "OP01"})
	if err != nil {
		t.Fatalf("mint operator token: %v", err)
	}

	other := cfg
	other.Secret = "other"
	if _, err := ParseOperatorToken(other, token); err == nil {
		t.Fatal("expected signature validation error")
	}
}

func TestParseOperatorTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintOperatorToken(cfg, time.Now().Add(-2*time.Hour), Operator{Code: "OP01"})
	if err != nil {
		t.Fatalf("mint operator token: %v", err)
	}
	_, err = ParseOperatorToken(cfg, token)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestMintOperatorTokenRequiresCode(t *testing.T) {
	if _, err := MintOperatorToken(testJWTConfig(), time.Now(), Operator{}); err == nil {
		t.Fatal("expected missing code error")
	}
}

func TestOperatorAdminRules(t *testing.T) {
	var anonymous *Operator
	if !anonymous.IsAdmin() || !anonymous.Has(enums.PermissionViewOrders) {
		t.Fatal("anonymous operator should be admin")
	}
	admin := &Operator{Code: "admin"}
	if !admin.IsAdmin() || !admin.Has(enums.PermissionViewCashRegister) {
		t.Fatal("admin code should match case-insensitively")
	}
	clerk := &Operator{Code: "OP02", Name: " Joao "}
	if clerk.IsAdmin() || clerk.Has(enums.PermissionViewOrders) {
		t.Fatal("clerk without grants should not see orders")
	}
	if clerk.DisplayName() != "Joao" {
		t.Fatalf("unexpected display name %q", clerk.DisplayName())
	}
}
