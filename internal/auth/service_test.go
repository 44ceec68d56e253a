package auth_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"medvault-backend/internal/auth"
	"medvault-backend/internal/users"
)

const defaultQuota = 100 << 20

func newService() *auth.Service {
	return auth.NewService(users.NewMemoryRepo(), defaultQuota)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	svc := newService()

	user, token, err := svc.Register(context.Background(), "+9779811111111", "Password123", "Asha Rai")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if user.PasswordHash == "Password123" {
		t.Fatal("password stored as plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Password123")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if user.StorageQuota != defaultQuota {
		t.Fatalf("expected quota %d, got %d", defaultQuota, user.StorageQuota)
	}
	if user.StorageUsed != 0 {
		t.Fatalf("expected zero usage, got %d", user.StorageUsed)
	}
}

func TestRegisterValidatesPhoneBeforePassword(t *testing.T) {
	svc := newService()

	// Both fields invalid; the phone error must win.
	_, _, err := svc.Register(context.Background(), "12345", "short", "")
	if !errors.Is(err, auth.ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}

	_, _, err = svc.Register(context.Background(), "+9779811111111", "nodigits", "")
	if !errors.Is(err, auth.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterRejectsDuplicatePhone(t *testing.T) {
	svc := newService()

	if _, _, err := svc.Register(context.Background(), "+9779811111111", "Password123", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, _, err := svc.Register(context.Background(), "+9779811111111", "Password456", "")
	if !errors.Is(err, users.ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newService()
	if _, _, err := svc.Register(context.Background(), "+9779811111111", "Password123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, token, err := svc.Login(context.Background(), "+9779811111111", "Password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || user.PhoneNumber != "+9779811111111" {
		t.Fatalf("unexpected login result: token=%q phone=%q", token, user.PhoneNumber)
	}

	if _, _, err := svc.Login(context.Background(), "+9779811111111", "WrongPass1"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "+9779822222222", "Password123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown phone, got %v", err)
	}
}

func TestLoginRejectsMalformedPhone(t *testing.T) {
	svc := newService()
	if _, _, err := svc.Register(context.Background(), "+9779811111111", "Password123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Validation runs before any lookup or password check, so a malformed
	// phone never looks like a credential mismatch.
	for _, phone := range []string{"12345", "9779811111111", "+977981111111", "+97798111111111"} {
		if _, _, err := svc.Login(context.Background(), phone, "Password123"); !errors.Is(err, auth.ErrInvalidPhone) {
			t.Fatalf("phone %q: expected ErrInvalidPhone, got %v", phone, err)
		}
	}
}
