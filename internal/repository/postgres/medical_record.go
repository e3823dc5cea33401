package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicore/clinic-api/internal/model"
)

func (r *medicalRecordRepository) Get(ctx context.Context, id int64) (*model.MedicalRecord, error) {
	query := `
		SELECT id, appointment_id, doctor_id, patient_id, symptoms,
		       physical_examination, treatment_plan, follow_up_date,
		       total_price, billing_id, created_at, updated_at
		FROM medical_records
		WHERE id = $1
	`
	var record model.MedicalRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, fmt.Errorf("failed to get medical record: %w", err)
	}
	return &record, nil
}

func (r *medicalRecordRepository) GetForDoctor(ctx context.Context, id, doctorID, patientID int64) (*model.MedicalRecord, error) {
	query := `
		SELECT id, appointment_id, doctor_id, patient_id, symptoms,
		       physical_examination, treatment_plan, follow_up_date,
		       total_price, billing_id, created_at, updated_at
		FROM medical_records
		WHERE id = $1 AND doctor_id = $2 AND patient_id = $3
	`
	var record model.MedicalRecord
	if err := r.db.GetContext(ctx, &record, query, id, doctorID, patientID); err != nil {
		return nil, fmt.Errorf("failed to get medical record for doctor: %w", err)
	}
	return &record, nil
}

func (r *medicalRecordRepository) Update(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		UPDATE medical_records
		SET symptoms = $1, physical_examination = $2, treatment_plan = $3,
		    follow_up_date = $4, updated_at = $5
		WHERE id = $6
	`
	record.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		record.Symptoms,
		record.PhysicalExamination,
		record.TreatmentPlan,
		record.FollowUpDate,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("medical record not found")
	}
	return nil
}

func (r *medicalRecordRepository) ListHistoryByPatient(ctx context.Context, patientID int64) ([]*model.PatientMedicalRecord, error) {
	type recordRow struct {
		model.MedicalRecord
		DoctorName string `db:"doctor_name"`
	}

	query := `
		SELECT m.id, m.appointment_id, m.doctor_id, m.patient_id, m.symptoms,
		       m.physical_examination, m.treatment_plan, m.follow_up_date,
		       m.total_price, m.billing_id, m.created_at, m.updated_at,
		       d.full_name AS doctor_name
		FROM medical_records m
		JOIN doctors d ON d.id = m.doctor_id
		WHERE m.patient_id = $1
		ORDER BY m.created_at DESC
	`
	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list medical history: %w", err)
	}
	if len(rows) == 0 {
		return []*model.PatientMedicalRecord{}, nil
	}

	records := make([]*model.PatientMedicalRecord, 0, len(rows))
	byID := make(map[int64]*model.PatientMedicalRecord, len(rows))
	for _, row := range rows {
		record := &model.PatientMedicalRecord{
			MedicalRecord: row.MedicalRecord,
			DoctorName:    row.DoctorName,
			Tests:         []model.Test{},
			Prescriptions: []model.Prescription{},
		}
		records = append(records, record)
		byID[record.ID] = record
	}

	type testRow struct {
		RecordID int64 `db:"record_id"`
		model.Test
	}
	testQuery := `
		SELECT mt.record_id, t.id, t.name, t.price
		FROM medical_record_tests mt
		JOIN tests t ON t.id = mt.test_id
		JOIN medical_records m ON m.id = mt.record_id
		WHERE m.patient_id = $1
	`
	var tests []testRow
	if err := r.db.SelectContext(ctx, &tests, testQuery, patientID); err != nil {
		return nil, fmt.Errorf("failed to list record tests: %w", err)
	}
	for _, t := range tests {
		if record, ok := byID[t.RecordID]; ok {
			record.Tests = append(record.Tests, t.Test)
		}
	}

	prescriptionQuery := `
		SELECT p.id, p.record_id, p.medication_id, p.medication_name,
		       p.dosage, p.duration_days, p.quantity, p.total_price, p.billing_id
		FROM prescriptions p
		JOIN medical_records m ON m.id = p.record_id
		WHERE m.patient_id = $1
	`
	var prescriptions []model.Prescription
	if err := r.db.SelectContext(ctx, &prescriptions, prescriptionQuery, patientID); err != nil {
		return nil, fmt.Errorf("failed to list record prescriptions: %w", err)
	}
	for _, p := range prescriptions {
		if record, ok := byID[p.RecordID]; ok {
			record.Prescriptions = append(record.Prescriptions, p)
		}
	}

	billingQuery := `
		SELECT id, patient_id, doctor_id, medical_record_id, consultation_fee,
		       total_tests_price, total_medications_price, grand_total, status,
		       created_at, updated_at
		FROM billings
		WHERE patient_id = $1
	`
	var billings []model.Billing
	if err := r.db.SelectContext(ctx, &billings, billingQuery, patientID); err != nil {
		return nil, fmt.Errorf("failed to list record billings: %w", err)
	}
	for i := range billings {
		if record, ok := byID[billings[i].MedicalRecordID]; ok {
			record.Billing = &billings[i]
		}
	}

	return records, nil
}

func (r *medicalRecordRepository) ListTestDetailsByPatient(ctx context.Context, patientID int64) ([]*model.PatientTestDetail, error) {
	query := `
		SELECT mt.record_id, t.name AS test_name, t.price AS test_price
		FROM medical_record_tests mt
		JOIN tests t ON t.id = mt.test_id
		JOIN medical_records m ON m.id = mt.record_id
		WHERE m.patient_id = $1
		ORDER BY mt.record_id DESC
	`
	var details []*model.PatientTestDetail
	if err := r.db.SelectContext(ctx, &details, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list test details: %w", err)
	}
	return details, nil
}

func (r *medicalRecordRepository) ListPrescriptionsByPatient(ctx context.Context, patientID int64) ([]*model.Prescription, error) {
	query := `
		SELECT p.id, p.record_id, p.medication_id, p.medication_name,
		       p.dosage, p.duration_days, p.quantity, p.total_price, p.billing_id
		FROM prescriptions p
		JOIN medical_records m ON m.id = p.record_id
		WHERE m.patient_id = $1
		ORDER BY p.id DESC
	`
	var prescriptions []*model.Prescription
	if err := r.db.SelectContext(ctx, &prescriptions, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}
