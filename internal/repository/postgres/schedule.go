package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicore/clinic-api/internal/model"
)

func (r *scheduleRepository) Create(ctx context.Context, schedule *model.DoctorSchedule) error {
	query := `
		INSERT INTO doctor_schedules (doctor_id, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = schedule.CreatedAt

	if err := r.db.QueryRowContext(ctx, query,
		schedule.DoctorID,
		schedule.StartDate,
		schedule.EndDate,
		schedule.Status,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	).Scan(&schedule.ID); err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepository) Get(ctx context.Context, id int64) (*model.DoctorSchedule, error) {
	query := `
		SELECT id, doctor_id, start_date, end_date, status, created_at, updated_at
		FROM doctor_schedules
		WHERE id = $1
	`
	var schedule model.DoctorSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &schedule, nil
}

func (r *scheduleRepository) GetForDoctor(ctx context.Context, id, doctorID int64) (*model.DoctorSchedule, error) {
	query := `
		SELECT id, doctor_id, start_date, end_date, status, created_at, updated_at
		FROM doctor_schedules
		WHERE id = $1 AND doctor_id = $2
	`
	var schedule model.DoctorSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id, doctorID); err != nil {
		return nil, fmt.Errorf("failed to get schedule for doctor: %w", err)
	}
	return &schedule, nil
}

func (r *scheduleRepository) UpdateWindow(ctx context.Context, schedule *model.DoctorSchedule) error {
	query := `
		UPDATE doctor_schedules
		SET start_date = $1, end_date = $2, updated_at = $3
		WHERE id = $4
	`
	schedule.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		schedule.StartDate,
		schedule.EndDate,
		schedule.UpdatedAt,
		schedule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule window: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("schedule not found")
	}
	return nil
}

func (r *scheduleRepository) UpdateStatus(ctx context.Context, id int64, from, to model.ScheduleStatus) (bool, error) {
	query := `
		UPDATE doctor_schedules
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update schedule status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *scheduleRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]*model.DoctorSchedule, error) {
	query := `
		SELECT id, doctor_id, start_date, end_date, status, created_at, updated_at
		FROM doctor_schedules
		WHERE doctor_id = $1
		ORDER BY start_date ASC
	`
	var schedules []*model.DoctorSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

func (r *scheduleRepository) ListWithDoctor(ctx context.Context, doctorID int64) ([]*model.ScheduleWithDoctor, error) {
	query := `
		SELECT s.id, s.doctor_id, s.start_date, s.end_date, s.status,
		       s.created_at, s.updated_at,
		       d.full_name AS doctor_name
		FROM doctor_schedules s
		JOIN doctors d ON d.id = s.doctor_id
	`
	args := []interface{}{}
	if doctorID > 0 {
		query += ` WHERE s.doctor_id = $1`
		args = append(args, doctorID)
	}
	query += ` ORDER BY s.start_date ASC`

	var schedules []*model.ScheduleWithDoctor
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list schedules with doctor: %w", err)
	}
	return schedules, nil
}

// HasActiveWindow reports whether the date falls inside any Scheduled
// window for the doctor, bounds inclusive.
func (r *scheduleRepository) HasActiveWindow(ctx context.Context, doctorID int64, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM doctor_schedules
			WHERE doctor_id = $1
			  AND status = $2
			  AND $3 >= start_date
			  AND $3 <= end_date
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, doctorID, model.ScheduleStatusScheduled, date); err != nil {
		return false, fmt.Errorf("failed to check schedule window: %w", err)
	}
	return exists, nil
}

func (r *scheduleRepository) HasOverlap(ctx context.Context, doctorID int64, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM doctor_schedules
			WHERE doctor_id = $1
			  AND status = $2
			  AND start_date <= $4
			  AND end_date >= $3
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, doctorID, model.ScheduleStatusScheduled, start, end); err != nil {
		return false, fmt.Errorf("failed to check schedule overlap: %w", err)
	}
	return exists, nil
}
