package users

import "context"

var (
	ErrNotFound      = errNotFound{}
	ErrPhoneTaken    = errPhoneTaken{}
	ErrQuotaExceeded = errQuotaExceeded{}
)

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

type errPhoneTaken struct{}

func (errPhoneTaken) Error() string { return "phone number already registered" }

type errQuotaExceeded struct{}

func (errQuotaExceeded) Error() string { return "storage quota exceeded" }

type Repo interface {
	Create(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByPhone(ctx context.Context, phoneNumber string) (User, error)
	UpdateProfile(ctx context.Context, user User) error
	// ReserveStorage adds n bytes to the user's usage counter, failing with
	// ErrQuotaExceeded when the result would overrun the quota.
	ReserveStorage(ctx context.Context, userID string, n int64) error
	// ReleaseStorage subtracts n bytes from the usage counter, flooring at zero.
	ReleaseStorage(ctx context.Context, userID string, n int64) error
}
