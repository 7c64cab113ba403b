package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptCost(t *testing.T) {
	cases := []struct {
		env  string
		want int
	}{
		{"", bcrypt.DefaultCost},
		{"not-a-number", bcrypt.DefaultCost},
		{"6", 6},
		{"3", bcrypt.DefaultCost},  // below MinCost
		{"40", bcrypt.DefaultCost}, // above MaxCost
	}
	for _, tc := range cases {
		t.Setenv("BCRYPT_COST", tc.env)
		if got := bcryptCost(); got != tc.want {
			t.Fatalf("bcryptCost with BCRYPT_COST=%q = %d, want %d", tc.env, got, tc.want)
		}
	}
}

func TestHashAndComparePassword(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4") // MinCost keeps the test fast

	hashed, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(string(hashed), "s3cret"); err != nil {
		t.Fatalf("ComparePassword rejected the original password: %v", err)
	}
	if err := ComparePassword(string(hashed), "wrong"); err == nil {
		t.Fatalf("ComparePassword accepted a wrong password")
	}
}
