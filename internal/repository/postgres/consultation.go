package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clinicore/clinic-api/internal/model"
)

// Save persists the whole consultation aggregate in one transaction.
// The final statement flips the appointment from Scheduled to Completed
// with a guarded update; when that guard fails the transaction is
// rolled back and Save returns false, leaving no partial writes behind.
func (r *consultationRepository) Save(ctx context.Context, consultation *model.Consultation) (bool, error) {
	var committed bool
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		record := consultation.Record
		record.CreatedAt = now
		record.UpdatedAt = now

		if err := tx.QueryRowContext(ctx, `
			INSERT INTO medical_records (
				appointment_id, doctor_id, patient_id, symptoms,
				physical_examination, treatment_plan, follow_up_date,
				total_price, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`,
			record.AppointmentID,
			record.DoctorID,
			record.PatientID,
			record.Symptoms,
			record.PhysicalExamination,
			record.TreatmentPlan,
			record.FollowUpDate,
			record.TotalPrice,
			record.CreatedAt,
			record.UpdatedAt,
		).Scan(&record.ID); err != nil {
			return fmt.Errorf("failed to create medical record: %w", err)
		}

		for _, testID := range consultation.TestIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO medical_record_tests (record_id, test_id) VALUES ($1, $2)`,
				record.ID, testID,
			); err != nil {
				return fmt.Errorf("failed to link test: %w", err)
			}
		}

		for _, prescription := range consultation.Prescriptions {
			prescription.RecordID = record.ID
			if err := tx.QueryRowContext(ctx, `
				INSERT INTO prescriptions (
					record_id, medication_id, medication_name, dosage,
					duration_days, quantity, total_price
				) VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id
			`,
				prescription.RecordID,
				prescription.MedicationID,
				prescription.MedicationName,
				prescription.Dosage,
				prescription.DurationDays,
				prescription.Quantity,
				prescription.TotalPrice,
			).Scan(&prescription.ID); err != nil {
				return fmt.Errorf("failed to create prescription: %w", err)
			}
		}

		billing := consultation.Billing
		billing.MedicalRecordID = record.ID
		billing.CreatedAt = now
		billing.UpdatedAt = now

		if err := tx.QueryRowContext(ctx, `
			INSERT INTO billings (
				patient_id, doctor_id, medical_record_id, consultation_fee,
				total_tests_price, total_medications_price, grand_total,
				status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`,
			billing.PatientID,
			billing.DoctorID,
			billing.MedicalRecordID,
			billing.ConsultationFee,
			billing.TotalTestsPrice,
			billing.TotalMedicationsPrice,
			billing.GrandTotal,
			billing.Status,
			billing.CreatedAt,
			billing.UpdatedAt,
		).Scan(&billing.ID); err != nil {
			return fmt.Errorf("failed to create billing: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE medical_records SET billing_id = $1 WHERE id = $2`,
			billing.ID, record.ID,
		); err != nil {
			return fmt.Errorf("failed to backfill record billing id: %w", err)
		}
		record.BillingID = &billing.ID

		if _, err := tx.ExecContext(ctx,
			`UPDATE prescriptions SET billing_id = $1 WHERE record_id = $2`,
			billing.ID, record.ID,
		); err != nil {
			return fmt.Errorf("failed to backfill prescription billing ids: %w", err)
		}
		for _, prescription := range consultation.Prescriptions {
			prescription.BillingID = &billing.ID
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE appointments
			SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
		`,
			model.AppointmentStatusCompleted, now,
			record.AppointmentID, model.AppointmentStatusScheduled,
		)
		if err != nil {
			return fmt.Errorf("failed to complete appointment: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return errAppointmentNotScheduled
		}

		committed = true
		return nil
	})
	if errors.Is(err, errAppointmentNotScheduled) {
		return false, nil
	}
	return committed, err
}

var errAppointmentNotScheduled = errors.New("appointment is no longer scheduled")
