package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, cfg Config, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestParseValidToken(t *testing.T) {
	cfg := Config{Secret: "test-secret", Issuer: "homechild.identity"}
	raw := signToken(t, cfg, jwt.MapClaims{
		"iss":       cfg.Issuer,
		"sub":       "user-1",
		"family_id": "family-1",
		"scopes":    []string{ScopeActivitiesRead, ScopeChildrenWrite},
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	claims, err := Parse(raw, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.FamilyID != "family-1" {
		t.Fatalf("unexpected family: %s", claims.FamilyID)
	}
	if !claims.HasScope(ScopeActivitiesRead) || !claims.HasScope(ScopeChildrenWrite) {
		t.Fatal("expected granted scopes to be present")
	}
	if claims.HasScope(ScopeActivitiesWrite) {
		t.Fatal("unexpected scope granted")
	}
}

func TestParseSpaceDelimitedScopes(t *testing.T) {
	cfg := Config{Secret: "test-secret", Issuer: "homechild.identity"}
	raw := signToken(t, cfg, jwt.MapClaims{
		"iss":       cfg.Issuer,
		"sub":       "user-1",
		"family_id": "family-1",
		"scopes":    ScopeActivitiesRead + " " + ScopeChildrenRead,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	claims, err := Parse(raw, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(claims.Scopes) != 2 {
		t.Fatalf("expected 2 scopes, got %d", len(claims.Scopes))
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	cfg := Config{Secret: "test-secret", Issuer: "homechild.identity"}

	if _, err := Parse("", cfg); err != ErrMissingToken {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}

	expired := signToken(t, cfg, jwt.MapClaims{
		"iss":       cfg.Issuer,
		"sub":       "user-1",
		"family_id": "family-1",
		"exp":       time.Now().Add(-time.Hour).Unix(),
	})
	if _, err := Parse(expired, cfg); err == nil {
		t.Fatal("expected expired token to be rejected")
	}

	wrongIssuer := signToken(t, cfg, jwt.MapClaims{
		"iss":       "someone-else",
		"sub":       "user-1",
		"family_id": "family-1",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	if _, err := Parse(wrongIssuer, cfg); err == nil {
		t.Fatal("expected wrong issuer to be rejected")
	}

	missingFamily := signToken(t, cfg, jwt.MapClaims{
		"iss": cfg.Issuer,
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := Parse(missingFamily, cfg); err == nil {
		t.Fatal("expected token without family_id to be rejected")
	}

	tampered := signToken(t, Config{Secret: "other-secret", Issuer: cfg.Issuer}, jwt.MapClaims{
		"iss":       cfg.Issuer,
		"sub":       "user-1",
		"family_id": "family-1",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	if _, err := Parse(tampered, cfg); err == nil {
		t.Fatal("expected bad signature to be rejected")
	}
}
