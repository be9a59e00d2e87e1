package cache

import (
	"context"
	"testing"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{"single part", []string{"test"}},
		{"multiple parts", []string{"community", "by-key", "golang"}},
		{"empty parts", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			// Hash should be consistent
			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			// Hash should be 32 characters (MD5 hex)
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}
}

func TestHashKeyDistinguishesParts(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not collide
	if HashKey("ab", "c") == HashKey("a", "bc") {
		t.Error("HashKey() should separate parts before hashing")
	}
}

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"simple key", "test", "writeit:test"},
		{"key with colon", "test:key", "writeit:test:key"},
		{"empty key", "", "writeit:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cache.NamespaceKey(tt.key); got != tt.expected {
				t.Errorf("NamespaceKey(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestDisabledCacheIsSafe(t *testing.T) {
	var c *Cache

	if _, err := c.Get(context.Background(), "k"); err != ErrCacheDisabled {
		t.Errorf("nil cache Get should return ErrCacheDisabled, got %v", err)
	}
	if err := c.Set(context.Background(), "k", "v", 0); err != ErrCacheDisabled {
		t.Errorf("nil cache Set should return ErrCacheDisabled, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("nil cache Close should be a no-op, got %v", err)
	}
}
