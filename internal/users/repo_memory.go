package users

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	users   map[string]User
	byPhone map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:   make(map[string]User),
		byPhone: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPhone[user.PhoneNumber]; ok {
		return ErrPhoneTaken
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.StorageUsed = 0
	r.users[user.ID] = user
	r.byPhone[user.PhoneNumber] = user.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetByPhone(ctx context.Context, phoneNumber string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byPhone[phoneNumber]
	if !ok {
		return User{}, ErrNotFound
	}
	return r.users[userID], nil
}

func (r *MemoryRepo) UpdateProfile(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	existing.FullName = user.FullName
	existing.DateOfBirth = user.DateOfBirth
	existing.Gender = user.Gender
	existing.BloodType = user.BloodType
	existing.Allergies = user.Allergies
	existing.ChronicConditions = user.ChronicConditions
	existing.EmergencyContactName = user.EmergencyContactName
	existing.EmergencyContactPhone = user.EmergencyContactPhone
	existing.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = existing
	return nil
}

func (r *MemoryRepo) ReserveStorage(ctx context.Context, userID string, n int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	if user.StorageUsed+n > user.StorageQuota {
		return ErrQuotaExceeded
	}
	user.StorageUsed += n
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return nil
}

func (r *MemoryRepo) ReleaseStorage(ctx context.Context, userID string, n int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.StorageUsed -= n
	if user.StorageUsed < 0 {
		user.StorageUsed = 0
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return nil
}
