package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateDetectsPhoneConflict(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := User{
		ID:           "user-1",
		PhoneNumber:  "+9779811111111",
		PasswordHash: "hash",
		FullName:     "Asha Rai",
		StorageQuota: 100 << 20,
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.PhoneNumber, user.PasswordHash, user.FullName, user.StorageQuota).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Create(context.Background(), user); !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoReserveStorageGuardsQuota(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("user-1", int64(1024)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.ReserveStorage(context.Background(), "user-1", 1024); err != nil {
		t.Fatalf("ReserveStorage: %v", err)
	}

	// The guarded update matches nothing when the quota would overflow;
	// the follow-up lookup distinguishes that from a missing user.
	mock.ExpectExec("UPDATE users").
		WithArgs("user-1", int64(1<<40)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{
		"id", "phone_number", "password_hash", "full_name", "date_of_birth", "gender", "blood_type",
		"allergies", "chronic_conditions", "emergency_contact_name", "emergency_contact_phone",
		"storage_used", "storage_quota", "created_at", "updated_at",
	}).AddRow("user-1", "+9779811111111", "hash", nil, nil, nil, nil, nil, nil, nil, nil,
		int64(0), int64(100<<20), time.Now().UTC(), time.Now().UTC())
	mock.ExpectQuery("SELECT").WithArgs("user-1").WillReturnRows(rows)

	if err := repo.ReserveStorage(context.Background(), "user-1", 1<<40); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
