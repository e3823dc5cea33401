package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
)

func (r *patientRepository) Get(ctx context.Context, id int64) (*model.Patient, error) {
	query := `
		SELECT id, user_id, full_name, email, date_of_birth, gender,
		       contact_number, address, medical_history, created_at, updated_at
		FROM patients
		WHERE id = $1
	`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID int64) (*model.Patient, error) {
	query := `
		SELECT id, user_id, full_name, email, date_of_birth, gender,
		       contact_number, address, medical_history, created_at, updated_at
		FROM patients
		WHERE user_id = $1
	`
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get patient by user: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET full_name = $1, email = $2, date_of_birth = $3, gender = $4,
		    contact_number = $5, address = $6, medical_history = $7, updated_at = $8
		WHERE id = $9
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		patient.FullName,
		patient.Email,
		patient.DateOfBirth,
		patient.Gender,
		patient.ContactNumber,
		patient.Address,
		patient.MedicalHistory,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("patient not found")
	}
	return nil
}

func (r *patientRepository) Deactivate(ctx context.Context, patientID, userID int64) (bool, error) {
	var deactivated bool
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE patients SET user_id = NULL, updated_at = $1 WHERE id = $2 AND user_id = $3`,
			time.Now(), patientID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to detach patient account: %w", err)
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
			 WHERE patient_id = $3 AND status IN ($4, $5)`,
			model.AppointmentStatusCanceled, time.Now(), patientID,
			model.AppointmentStatusRequested, model.AppointmentStatusScheduled,
		); err != nil {
			return fmt.Errorf("failed to cancel patient appointments: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		deactivated = true
		return nil
	})
	return deactivated, err
}
