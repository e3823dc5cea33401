package model

import "time"

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
	ScheduleStatusCompleted ScheduleStatus = "completed"
)

var scheduleTransitions = map[ScheduleStatus][]ScheduleStatus{
	ScheduleStatusScheduled: {ScheduleStatusCancelled, ScheduleStatusCompleted},
}

func (s ScheduleStatus) CanTransitionTo(next ScheduleStatus) bool {
	for _, allowed := range scheduleTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ScheduleStatus) Terminal() bool {
	return len(scheduleTransitions[s]) == 0
}

// DoctorSchedule is a doctor's availability window. An appointment date
// is bookable only when it falls inside a window (inclusive on both
// ends) whose status is Scheduled.
type DoctorSchedule struct {
	ID        int64          `db:"id" json:"id"`
	DoctorID  int64          `db:"doctor_id" json:"doctor_id"`
	StartDate time.Time      `db:"start_date" json:"start_date"`
	EndDate   time.Time      `db:"end_date" json:"end_date"`
	Status    ScheduleStatus `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// Covers reports whether the window contains the given date.
func (s *DoctorSchedule) Covers(date time.Time) bool {
	return s.Status == ScheduleStatusScheduled &&
		!date.Before(s.StartDate) && !date.After(s.EndDate)
}

type CreateScheduleRequest struct {
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required,gtfield=StartDate"`
}

type UpdateScheduleRequest struct {
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required,gtfield=StartDate"`
}

// ScheduleWithDoctor is the admin-facing listing row.
type ScheduleWithDoctor struct {
	DoctorSchedule
	DoctorName string `db:"doctor_name" json:"doctor_name"`
}
