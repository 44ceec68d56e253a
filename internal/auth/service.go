package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	sharedauth "medvault-backend/internal/shared/auth"
	"medvault-backend/internal/users"
)

type Service struct {
	Users        users.Repo
	DefaultQuota int64
}

func NewService(repo users.Repo, defaultQuota int64) *Service {
	return &Service{Users: repo, DefaultQuota: defaultQuota}
}

// Register creates an account for the phone number and returns the stored
// user with a signed session token. The phone number is validated before
// the password so a request failing both reports the phone error.
func (s *Service) Register(ctx context.Context, phoneNumber, password, fullName string) (users.User, string, error) {
	if s == nil || s.Users == nil {
		return users.User{}, "", errors.New("auth service not configured")
	}
	phoneNumber = strings.TrimSpace(phoneNumber)
	if !validPhone(phoneNumber) {
		return users.User{}, "", ErrInvalidPhone
	}
	if !validPassword(password) {
		return users.User{}, "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, "", err
	}
	user := users.User{
		ID:           uuid.NewString(),
		PhoneNumber:  phoneNumber,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		StorageQuota: s.DefaultQuota,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return users.User{}, "", err
	}
	stored, err := s.Users.GetByID(ctx, user.ID)
	if err != nil {
		return users.User{}, "", err
	}
	token, err := sharedauth.SignToken(stored.ID)
	if err != nil {
		return users.User{}, "", err
	}
	return stored, token, nil
}

// Login verifies the credentials and returns the user with a fresh token.
// Malformed phone numbers are rejected before any lookup. Unknown phone
// numbers and wrong passwords report the same error so the response does
// not reveal which accounts exist.
func (s *Service) Login(ctx context.Context, phoneNumber, password string) (users.User, string, error) {
	if s == nil || s.Users == nil {
		return users.User{}, "", errors.New("auth service not configured")
	}
	phoneNumber = strings.TrimSpace(phoneNumber)
	if !validPhone(phoneNumber) {
		return users.User{}, "", ErrInvalidPhone
	}
	user, err := s.Users.GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return users.User{}, "", ErrInvalidCredentials
		}
		return users.User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return users.User{}, "", ErrInvalidCredentials
	}
	token, err := sharedauth.SignToken(user.ID)
	if err != nil {
		return users.User{}, "", err
	}
	return user, token, nil
}
