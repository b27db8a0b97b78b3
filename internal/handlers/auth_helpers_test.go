package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateOTP_SixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateOTP()
		if err != nil {
			t.Fatalf("generateOTP returned error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
	}
}

func TestShouldLockAccount(t *testing.T) {
	cases := []struct {
		attempts int
		locked   bool
	}{
		{0, false},
		{1, false},
		{4, false},
		{5, true},
		{6, true},
	}
	for _, tc := range cases {
		if got := shouldLockAccount(tc.attempts); got != tc.locked {
			t.Errorf("shouldLockAccount(%d) = %v, want %v", tc.attempts, got, tc.locked)
		}
	}
}

func TestIssueToken_RoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()
	secret := "test-secret"

	signed, err := issueToken(userID, true, secret, time.Hour)
	if err != nil {
		t.Fatalf("issueToken returned error: %v", err)
	}

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	if claims["userId"] != userID.Hex() {
		t.Fatalf("userId claim = %v, want %s", claims["userId"], userID.Hex())
	}
	if claims["isAdmin"] != true {
		t.Fatalf("isAdmin claim = %v, want true", claims["isAdmin"])
	}
}

func TestIssueToken_WrongSecretFails(t *testing.T) {
	signed, err := issueToken(primitive.NewObjectID(), false, "secret-a", time.Hour)
	if err != nil {
		t.Fatalf("issueToken returned error: %v", err)
	}

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret-b"), nil
	})
	if err == nil && token.Valid {
		t.Fatal("token verified under the wrong secret")
	}
}

func TestValidateRegistration(t *testing.T) {
	if err := validateRegistration("A User", "user@example.com", "secret1", ""); err != nil {
		t.Fatalf("valid registration rejected: %v", err)
	}
	if err := validateRegistration("A User", "user@example.com", "secret1", "9876543210"); err != nil {
		t.Fatalf("valid phone rejected: %v", err)
	}
	if err := validateRegistration("", "user@example.com", "secret1", ""); err == nil {
		t.Fatal("empty name must be rejected")
	}
	if err := validateRegistration("A User", "not-an-email", "secret1", ""); err == nil {
		t.Fatal("malformed email must be rejected")
	}
	if err := validateRegistration("A User", "user@example.com", "short", ""); err == nil {
		t.Fatal("short password must be rejected")
	}
	if err := validateRegistration("A User", "user@example.com", "secret1", "12345"); err == nil {
		t.Fatal("short phone must be rejected")
	}
}

func TestLastDigits(t *testing.T) {
	if got := lastDigits("4111 1111 1111 1234", 4); got != "1234" {
		t.Fatalf("lastDigits = %q, want 1234", got)
	}
	if got := lastDigits("12", 4); got != "12" {
		t.Fatalf("lastDigits on short input = %q, want 12", got)
	}
	if got := lastDigits("", 4); got != "" {
		t.Fatalf("lastDigits on empty input = %q, want empty", got)
	}
}
