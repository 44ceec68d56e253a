package users

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// UpdateProfile applies the non-nil fields of the update onto the stored
// profile. Omitted fields keep their current values.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	applyField(&user.FullName, update.FullName)
	applyField(&user.DateOfBirth, update.DateOfBirth)
	applyField(&user.Gender, update.Gender)
	applyField(&user.BloodType, update.BloodType)
	applyField(&user.Allergies, update.Allergies)
	applyField(&user.ChronicConditions, update.ChronicConditions)
	applyField(&user.EmergencyContactName, update.EmergencyContactName)
	applyField(&user.EmergencyContactPhone, update.EmergencyContactPhone)
	if err := s.Repo.UpdateProfile(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, userID)
}

type ProfileUpdate struct {
	FullName              *string
	DateOfBirth           *string
	Gender                *string
	BloodType             *string
	Allergies             *string
	ChronicConditions     *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
}

func applyField(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
