package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicore/clinic-api/internal/model"
)

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			patient_id, doctor_id, appointment_date, symptoms, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt

	if err := r.db.QueryRowContext(ctx, query,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.AppointmentDate,
		appointment.Symptoms,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	).Scan(&appointment.ID); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, appointment_date, symptoms, status,
		       created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetForDoctor(ctx context.Context, id, doctorID int64) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, appointment_date, symptoms, status,
		       created_at, updated_at
		FROM appointments
		WHERE id = $1 AND doctor_id = $2
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id, doctorID); err != nil {
		return nil, fmt.Errorf("failed to get appointment for doctor: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetForPatient(ctx context.Context, id, patientID int64) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, appointment_date, symptoms, status,
		       created_at, updated_at
		FROM appointments
		WHERE id = $1 AND patient_id = $2
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id, patientID); err != nil {
		return nil, fmt.Errorf("failed to get appointment for patient: %w", err)
	}
	return &appointment, nil
}

// UpdateDate moves the appointment and writes the resulting status in
// one guarded update; the write is skipped when the row no longer
// holds the status the caller read.
func (r *appointmentRepository) UpdateDate(ctx context.Context, id int64, date time.Time, from, to model.AppointmentStatus) (bool, error) {
	query := `
		UPDATE appointments
		SET appointment_date = $1, status = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, date, to, time.Now(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to reschedule appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// UpdateStatus writes the new status only when the row still holds the
// expected one, so two concurrent transitions cannot both win.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, from, to model.AppointmentStatus) (bool, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID int64, status model.AppointmentStatus) ([]*model.AppointmentWithPatient, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.appointment_date, a.symptoms,
		       a.status, a.created_at, a.updated_at,
		       p.full_name AS patient_name
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.doctor_id = $1
	`
	args := []interface{}{doctorID}
	if status != "" {
		query += ` AND a.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY a.appointment_date ASC`

	var appointments []*model.AppointmentWithPatient
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments for doctor: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]*model.AppointmentWithDoctor, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.appointment_date, a.symptoms,
		       a.status, a.created_at, a.updated_at,
		       d.full_name AS doctor_name
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC
	`
	var appointments []*model.AppointmentWithDoctor
	if err := r.db.SelectContext(ctx, &appointments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments for patient: %w", err)
	}
	return appointments, nil
}
