package utils

import (
	"strings"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.com"}
	invalid := []string{"", "not-an-email", "a@b", "@example.com"}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Fatalf("%q should be valid", e)
		}
	}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Fatalf("%q should be invalid", e)
		}
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	// a valid local number becomes E.164
	got := NormalizePhoneNumber("0912345678", "VN")
	if !strings.HasPrefix(got, "+84") {
		t.Fatalf("expected +84 prefix, got %q", got)
	}

	// unparseable input passes through untouched
	for _, raw := range []string{"", "call me", "12"} {
		if got := NormalizePhoneNumber(raw, "VN"); got != raw {
			t.Fatalf("expected passthrough for %q, got %q", raw, got)
		}
	}
}

func TestJwtRoundTrip(t *testing.T) {
	token, err := JwtGenerate(42, "staff1", "staff")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}

	parsed, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || !parsed.Valid {
		t.Fatalf("unexpected claims type or invalid token")
	}
	if claims.ID != 42 || claims.Username != "staff1" || claims.Role != "staff" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJwtValidate_RejectsGarbage(t *testing.T) {
	if _, err := JwtValidate("not.a.token"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
