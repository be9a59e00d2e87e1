package auth

import (
	"testing"
	"time"

	"github.com/writeit/writeit/pkg/config"
)

func testManager(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(&config.AuthConfig{JWTSecret: "test-secret", TokenTTL: ttl})
	if err != nil {
		t.Fatalf("NewTokenManager() error: %v", err)
	}
	return tm
}

func TestTokenRoundTrip(t *testing.T) {
	tm := testManager(t, time.Hour)

	token, err := tm.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	userID, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if userID != 42 {
		t.Errorf("Parse() = %d, want 42", userID)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := testManager(t, -time.Minute)

	token, err := tm.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	if _, err := tm.Parse(token); err == nil {
		t.Error("expired token should not parse")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	tm := testManager(t, time.Hour)
	token, err := tm.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	other, err := NewTokenManager(&config.AuthConfig{JWTSecret: "different", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("NewTokenManager() error: %v", err)
	}

	if _, err := other.Parse(token); err == nil {
		t.Error("token signed with another secret should not parse")
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	tm := testManager(t, time.Hour)
	if _, err := tm.Parse("not.a.token"); err == nil {
		t.Error("garbage should not parse")
	}
}

func TestEmptySecretRefused(t *testing.T) {
	if _, err := NewTokenManager(&config.AuthConfig{JWTSecret: "", TokenTTL: time.Hour}); err == nil {
		t.Error("empty jwt_secret must be refused")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}

	if !CheckPassword(hash, "hunter2hunter2") {
		t.Error("correct password should verify")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Error("wrong password should not verify")
	}
}
