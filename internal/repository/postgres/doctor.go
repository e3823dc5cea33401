package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
)

func (r *doctorRepository) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	query := `
		SELECT id, user_id, full_name, email, experience_years,
		       qualification, designation, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID int64) (*model.Doctor, error) {
	query := `
		SELECT id, user_id, full_name, email, experience_years,
		       qualification, designation, created_at, updated_at
		FROM doctors
		WHERE user_id = $1
	`
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get doctor by user: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET full_name = $1, email = $2, experience_years = $3,
		    qualification = $4, designation = $5, updated_at = $6
		WHERE id = $7
	`
	doctor.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		doctor.FullName,
		doctor.Email,
		doctor.ExperienceYears,
		doctor.Qualification,
		doctor.Designation,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("doctor not found")
	}
	return nil
}

func (r *doctorRepository) UpdateSpecializations(ctx context.Context, doctorID int64, specializationIDs []int64) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM doctor_specializations WHERE doctor_id = $1`, doctorID,
		); err != nil {
			return fmt.Errorf("failed to clear specializations: %w", err)
		}
		for _, specID := range specializationIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO doctor_specializations (doctor_id, specialization_id) VALUES ($1, $2)`,
				doctorID, specID,
			); err != nil {
				return fmt.Errorf("failed to link specialization: %w", err)
			}
		}
		return nil
	})
}

func (r *doctorRepository) Search(ctx context.Context, specialization string) ([]*model.DoctorSummary, error) {
	query := `
		SELECT d.id, d.full_name, d.experience_years, d.qualification, d.designation,
		       COALESCE(string_agg(s.name, ', '), '') AS specializations
		FROM doctors d
		LEFT JOIN doctor_specializations ds ON ds.doctor_id = d.id
		LEFT JOIN specializations s ON s.id = ds.specialization_id
		WHERE d.user_id IS NOT NULL
	`
	args := []interface{}{}
	if specialization != "" {
		query += ` AND EXISTS (
			SELECT 1 FROM doctor_specializations ds2
			JOIN specializations s2 ON s2.id = ds2.specialization_id
			WHERE ds2.doctor_id = d.id AND s2.name ILIKE $1
		)`
		args = append(args, "%"+specialization+"%")
	}
	query += ` GROUP BY d.id ORDER BY d.full_name ASC`

	var doctors []*model.DoctorSummary
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) Deactivate(ctx context.Context, doctorID, userID int64) (bool, error) {
	var deactivated bool
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE doctors SET user_id = NULL, designation = 'Inactive', updated_at = $1
			 WHERE id = $2 AND user_id = $3`,
			time.Now(), doctorID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to detach doctor account: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE appointments SET status = $1, updated_at = $2
			 WHERE doctor_id = $3 AND status IN ($4, $5)`,
			model.AppointmentStatusCanceled, time.Now(), doctorID,
			model.AppointmentStatusRequested, model.AppointmentStatusScheduled,
		); err != nil {
			return fmt.Errorf("failed to cancel doctor appointments: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		deactivated = true
		return nil
	})
	return deactivated, err
}
