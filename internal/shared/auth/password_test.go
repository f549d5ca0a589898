package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_Hash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	password := "my-secure-password"

	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	if hash == "" || hash == password {
		t.Fatalf("Hash() returned %q", hash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		t.Errorf("Hash() produced invalid bcrypt hash: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(hash)); cost != bcrypt.MinCost {
		t.Errorf("cost = %d, want %d", cost, bcrypt.MinCost)
	}
}

func TestHasher_SaltsEachHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash1, _ := h.Hash("same-password")
	hash2, _ := h.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestHasher_Verify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"correct password", "s3cret", false},
		{"wrong password", "other", true},
		{"empty password", "", true},
		{"different case", "S3CRET", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Verify(hash, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestHasher_CostFallback(t *testing.T) {
	for _, cost := range []int{0, 100} {
		hash, err := NewHasher(cost).Hash("pw")
		if err != nil {
			t.Fatalf("Hash() failed: %v", err)
		}
		got, err := bcrypt.Cost([]byte(hash))
		if err != nil {
			t.Fatalf("bcrypt.Cost() failed: %v", err)
		}
		if got != bcrypt.DefaultCost {
			t.Errorf("NewHasher(%d) cost = %d, want %d", cost, got, bcrypt.DefaultCost)
		}
	}
}

func TestHasher_EmptyPasswordRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("")
	if err != nil {
		t.Fatalf("Hash() failed with empty password: %v", err)
	}
	if err := h.Verify(hash, ""); err != nil {
		t.Errorf("Verify() failed for empty password round trip: %v", err)
	}
}
