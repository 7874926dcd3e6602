package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("Secret123!")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if err := CheckPassword(hash, "Secret123!"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch for wrong password")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	claims := Claims{UserID: "u1", Email: "dana@example.com", Role: RoleManager}
	token, err := GenerateToken("test-secret", claims, time.Hour)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	parsed, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.UserID != "u1" || parsed.Email != "dana@example.com" || parsed.Role != RoleManager {
		t.Fatalf("unexpected claims: %+v", parsed)
	}

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestTokenExpiry(t *testing.T) {
	token, err := GenerateToken("test-secret", Claims{UserID: "u1"}, -time.Minute)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := ParseToken("test-secret", token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleStaff, RoleManager, RoleAdmin} {
		if !ValidRole(role) {
			t.Fatalf("expected %s to be valid", role)
		}
	}
	if ValidRole("CEO") {
		t.Fatal("expected unknown role to be invalid")
	}
}
