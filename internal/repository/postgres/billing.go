package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicore/clinic-api/internal/model"
)

func (r *billingRepository) Get(ctx context.Context, id int64) (*model.Billing, error) {
	query := `
		SELECT id, patient_id, doctor_id, medical_record_id, consultation_fee,
		       total_tests_price, total_medications_price, grand_total, status,
		       created_at, updated_at
		FROM billings
		WHERE id = $1
	`
	var billing model.Billing
	if err := r.db.GetContext(ctx, &billing, query, id); err != nil {
		return nil, fmt.Errorf("failed to get billing: %w", err)
	}
	return &billing, nil
}

func (r *billingRepository) GetForDoctor(ctx context.Context, id, doctorID int64) (*model.Billing, error) {
	query := `
		SELECT id, patient_id, doctor_id, medical_record_id, consultation_fee,
		       total_tests_price, total_medications_price, grand_total, status,
		       created_at, updated_at
		FROM billings
		WHERE id = $1 AND doctor_id = $2
	`
	var billing model.Billing
	if err := r.db.GetContext(ctx, &billing, query, id, doctorID); err != nil {
		return nil, fmt.Errorf("failed to get billing for doctor: %w", err)
	}
	return &billing, nil
}

// MarkPaid only succeeds on a pending bill; a second caller loses the
// race and gets false back.
func (r *billingRepository) MarkPaid(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE billings
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query,
		model.BillingStatusPaid, time.Now(), id, model.BillingStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark billing paid: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

const billingListSelect = `
	SELECT b.id, b.patient_id, b.doctor_id, b.medical_record_id,
	       b.consultation_fee, b.total_tests_price, b.total_medications_price,
	       b.grand_total, b.status, b.created_at, b.updated_at,
	       p.full_name AS patient_name,
	       d.full_name AS doctor_name
	FROM billings b
	JOIN patients p ON p.id = b.patient_id
	JOIN doctors d ON d.id = b.doctor_id
`

func (r *billingRepository) ListAll(ctx context.Context) ([]*model.BillingWithNames, error) {
	query := billingListSelect + ` ORDER BY b.created_at DESC`

	var billings []*model.BillingWithNames
	if err := r.db.SelectContext(ctx, &billings, query); err != nil {
		return nil, fmt.Errorf("failed to list billings: %w", err)
	}
	return billings, nil
}

func (r *billingRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*model.BillingWithNames, error) {
	query := billingListSelect + ` WHERE b.doctor_id = $1 ORDER BY b.created_at DESC`

	var billings []*model.BillingWithNames
	if err := r.db.SelectContext(ctx, &billings, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list billings for doctor: %w", err)
	}
	return billings, nil
}

func (r *billingRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.BillingWithNames, error) {
	query := billingListSelect + ` WHERE b.patient_id = $1 ORDER BY b.created_at DESC`

	var billings []*model.BillingWithNames
	if err := r.db.SelectContext(ctx, &billings, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list billings for patient: %w", err)
	}
	return billings, nil
}
