package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
)

func (r *userRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, username, password_hash, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `
		SELECT id, username, password_hash, role, created_at, updated_at
		FROM users
		WHERE username = $1
	`
	var user model.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET username = $1, password_hash = $2, updated_at = $3
		WHERE id = $4
	`
	user.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (r *userRepository) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	query := `SELECT NOT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	var available bool
	if err := r.db.GetContext(ctx, &available, query, username); err != nil {
		return false, fmt.Errorf("failed to check username availability: %w", err)
	}
	return available, nil
}

func (r *userRepository) insertUser(ctx context.Context, tx *sqlx.Tx, user *model.User) error {
	query := `
		INSERT INTO users (username, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	return tx.QueryRowContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
}

func (r *userRepository) CreateWithPatient(ctx context.Context, user *model.User, patient *model.Patient) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.insertUser(ctx, tx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		query := `
			INSERT INTO patients (
				user_id, full_name, email, date_of_birth, gender,
				contact_number, address, medical_history, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`
		patient.UserID = &user.ID
		patient.CreatedAt = user.CreatedAt
		patient.UpdatedAt = user.CreatedAt

		if err := tx.QueryRowContext(ctx, query,
			user.ID,
			patient.FullName,
			patient.Email,
			patient.DateOfBirth,
			patient.Gender,
			patient.ContactNumber,
			patient.Address,
			patient.MedicalHistory,
			patient.CreatedAt,
			patient.UpdatedAt,
		).Scan(&patient.ID); err != nil {
			return fmt.Errorf("failed to create patient profile: %w", err)
		}
		return nil
	})
}

func (r *userRepository) CreateWithDoctor(ctx context.Context, user *model.User, doctor *model.Doctor, specializationIDs []int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.insertUser(ctx, tx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		query := `
			INSERT INTO doctors (
				user_id, full_name, email, experience_years,
				qualification, designation, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`
		doctor.UserID = &user.ID
		doctor.CreatedAt = user.CreatedAt
		doctor.UpdatedAt = user.CreatedAt

		if err := tx.QueryRowContext(ctx, query,
			user.ID,
			doctor.FullName,
			doctor.Email,
			doctor.ExperienceYears,
			doctor.Qualification,
			doctor.Designation,
			doctor.CreatedAt,
			doctor.UpdatedAt,
		).Scan(&doctor.ID); err != nil {
			return fmt.Errorf("failed to create doctor profile: %w", err)
		}

		for _, specID := range specializationIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO doctor_specializations (doctor_id, specialization_id) VALUES ($1, $2)`,
				doctor.ID, specID,
			); err != nil {
				return fmt.Errorf("failed to link specialization: %w", err)
			}
		}
		return nil
	})
}

func (r *userRepository) CreateWithAdmin(ctx context.Context, user *model.User, admin *model.Administrator) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.insertUser(ctx, tx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		query := `
			INSERT INTO administrators (user_id, full_name, email)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		admin.UserID = &user.ID

		if err := tx.QueryRowContext(ctx, query,
			user.ID,
			admin.FullName,
			admin.Email,
		).Scan(&admin.ID); err != nil {
			return fmt.Errorf("failed to create administrator profile: %w", err)
		}
		return nil
	})
}
