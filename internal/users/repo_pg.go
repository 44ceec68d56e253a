package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, phone_number, password_hash, full_name, storage_used, storage_quota, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, $5, now(), now())
ON CONFLICT (phone_number) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.PhoneNumber,
		user.PasswordHash,
		nullableString(user.FullName),
		user.StorageQuota,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPhoneTaken
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = selectUser + ` WHERE id = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetByPhone(ctx context.Context, phoneNumber string) (User, error) {
	const query = selectUser + ` WHERE phone_number = $1 LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, phoneNumber))
}

func (r *PGRepo) UpdateProfile(ctx context.Context, user User) error {
	const query = `
UPDATE users SET
  full_name = $2,
  date_of_birth = $3,
  gender = $4,
  blood_type = $5,
  allergies = $6,
  chronic_conditions = $7,
  emergency_contact_name = $8,
  emergency_contact_phone = $9,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		user.ID,
		nullableString(user.FullName),
		nullableString(user.DateOfBirth),
		nullableString(user.Gender),
		nullableString(user.BloodType),
		nullableString(user.Allergies),
		nullableString(user.ChronicConditions),
		nullableString(user.EmergencyContactName),
		nullableString(user.EmergencyContactPhone),
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ReserveStorage(ctx context.Context, userID string, n int64) error {
	const query = `
UPDATE users
SET storage_used = storage_used + $2, updated_at = now()
WHERE id = $1 AND storage_used + $2 <= storage_quota`
	res, err := r.DB.ExecContext(ctx, query, userID, n)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, getErr := r.GetByID(ctx, userID); getErr != nil {
			return getErr
		}
		return ErrQuotaExceeded
	}
	return nil
}

func (r *PGRepo) ReleaseStorage(ctx context.Context, userID string, n int64) error {
	const query = `
UPDATE users
SET storage_used = GREATEST(storage_used - $2, 0), updated_at = now()
WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, userID, n)
	return err
}

const selectUser = `
SELECT id, phone_number, password_hash, full_name, date_of_birth, gender, blood_type,
       allergies, chronic_conditions, emergency_contact_name, emergency_contact_phone,
       storage_used, storage_quota, created_at, updated_at
FROM users`

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	var user User
	var fullName sql.NullString
	var dateOfBirth sql.NullString
	var gender sql.NullString
	var bloodType sql.NullString
	var allergies sql.NullString
	var chronicConditions sql.NullString
	var emergencyName sql.NullString
	var emergencyPhone sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(
		&user.ID,
		&user.PhoneNumber,
		&user.PasswordHash,
		&fullName,
		&dateOfBirth,
		&gender,
		&bloodType,
		&allergies,
		&chronicConditions,
		&emergencyName,
		&emergencyPhone,
		&user.StorageUsed,
		&user.StorageQuota,
		&user.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if fullName.Valid {
		user.FullName = fullName.String
	}
	if dateOfBirth.Valid {
		user.DateOfBirth = dateOfBirth.String
	}
	if gender.Valid {
		user.Gender = gender.String
	}
	if bloodType.Valid {
		user.BloodType = bloodType.String
	}
	if allergies.Valid {
		user.Allergies = allergies.String
	}
	if chronicConditions.Valid {
		user.ChronicConditions = chronicConditions.String
	}
	if emergencyName.Valid {
		user.EmergencyContactName = emergencyName.String
	}
	if emergencyPhone.Valid {
		user.EmergencyContactPhone = emergencyPhone.String
	}
	if updatedAt.Valid {
		user.UpdatedAt = updatedAt.Time
	} else {
		user.UpdatedAt = time.Now().UTC()
	}
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
