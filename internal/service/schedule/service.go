package schedule

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/internal/service/audit"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

// Service owns doctor availability windows. Windows are terminal once
// cancelled or completed; updates only touch the date range.
type Service struct {
	schedules     repository.ScheduleRepository
	doctors       repository.DoctorRepository
	auditor       *audit.Service
	rejectOverlap bool
	logger        *zerolog.Logger
}

func NewService(
	schedules repository.ScheduleRepository,
	doctors repository.DoctorRepository,
	auditor *audit.Service,
	rejectOverlap bool,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		schedules:     schedules,
		doctors:       doctors,
		auditor:       auditor,
		rejectOverlap: rejectOverlap,
		logger:        logger,
	}
}

func (s *Service) Create(ctx context.Context, userID int64, req *model.CreateScheduleRequest) (*model.DoctorSchedule, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}

	if !req.EndDate.After(req.StartDate) {
		return nil, apperrors.BadRequest("end date must be after start date", nil)
	}

	if s.rejectOverlap {
		overlaps, err := s.schedules.HasOverlap(ctx, doctor.ID, req.StartDate, req.EndDate)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if overlaps {
			return nil, apperrors.ScheduleConflict("window overlaps an existing schedule")
		}
	}

	schedule := &model.DoctorSchedule{
		DoctorID:  doctor.ID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    model.ScheduleStatusScheduled,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.audit(ctx, userID, "create", schedule.ID)
	return schedule, nil
}

func (s *Service) Update(ctx context.Context, userID, scheduleID int64, req *model.UpdateScheduleRequest) (*model.DoctorSchedule, error) {
	schedule, err := s.getOwn(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	return s.applyWindow(ctx, userID, schedule, req)
}

// UpdateByAdmin edits any doctor's window by schedule ID.
func (s *Service) UpdateByAdmin(ctx context.Context, userID, scheduleID int64, req *model.UpdateScheduleRequest) (*model.DoctorSchedule, error) {
	schedule, err := s.schedules.Get(ctx, scheduleID)
	if err != nil {
		return nil, notFoundOr("schedule", err)
	}
	return s.applyWindow(ctx, userID, schedule, req)
}

// Cancel withdraws an active window. Completed windows stay completed.
func (s *Service) Cancel(ctx context.Context, userID, scheduleID int64) (*model.DoctorSchedule, error) {
	schedule, err := s.getOwn(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, userID, schedule, model.ScheduleStatusCancelled, "cancel")
}

// Complete closes out an active window. Cancelled windows stay
// cancelled.
func (s *Service) Complete(ctx context.Context, userID, scheduleID int64) (*model.DoctorSchedule, error) {
	schedule, err := s.getOwn(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, userID, schedule, model.ScheduleStatusCompleted, "complete")
}

// CancelByAdmin withdraws any doctor's window.
func (s *Service) CancelByAdmin(ctx context.Context, userID, scheduleID int64) (*model.DoctorSchedule, error) {
	schedule, err := s.schedules.Get(ctx, scheduleID)
	if err != nil {
		return nil, notFoundOr("schedule", err)
	}
	return s.transition(ctx, userID, schedule, model.ScheduleStatusCancelled, "cancel")
}

// CompleteByAdmin closes out any doctor's window.
func (s *Service) CompleteByAdmin(ctx context.Context, userID, scheduleID int64) (*model.DoctorSchedule, error) {
	schedule, err := s.schedules.Get(ctx, scheduleID)
	if err != nil {
		return nil, notFoundOr("schedule", err)
	}
	return s.transition(ctx, userID, schedule, model.ScheduleStatusCompleted, "complete")
}

// getOwn resolves the window through the calling doctor so one doctor
// cannot touch another's schedule.
func (s *Service) getOwn(ctx context.Context, userID, scheduleID int64) (*model.DoctorSchedule, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}
	schedule, err := s.schedules.GetForDoctor(ctx, scheduleID, doctor.ID)
	if err != nil {
		return nil, notFoundOr("schedule", err)
	}
	return schedule, nil
}

func (s *Service) applyWindow(ctx context.Context, actorID int64, schedule *model.DoctorSchedule, req *model.UpdateScheduleRequest) (*model.DoctorSchedule, error) {
	if schedule.Status.Terminal() {
		return nil, apperrors.InvalidTransition("schedule can no longer be updated")
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, apperrors.BadRequest("end date must be after start date", nil)
	}

	schedule.StartDate = req.StartDate
	schedule.EndDate = req.EndDate
	if err := s.schedules.UpdateWindow(ctx, schedule); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.audit(ctx, actorID, "update", schedule.ID)
	return schedule, nil
}

func (s *Service) transition(ctx context.Context, actorID int64, schedule *model.DoctorSchedule, to model.ScheduleStatus, action string) (*model.DoctorSchedule, error) {
	if !schedule.Status.CanTransitionTo(to) {
		return nil, apperrors.InvalidTransition("schedule is already " + string(schedule.Status))
	}

	ok, err := s.schedules.UpdateStatus(ctx, schedule.ID, schedule.Status, to)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.InvalidTransition("schedule was modified concurrently")
	}
	schedule.Status = to

	s.audit(ctx, actorID, action, schedule.ID)
	return schedule, nil
}

// ListOwn returns the calling doctor's windows.
func (s *Service) ListOwn(ctx context.Context, userID int64) ([]*model.DoctorSchedule, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}
	schedules, err := s.schedules.ListByDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return schedules, nil
}

// ListAll returns windows joined with doctor names, optionally
// filtered to one doctor. Used by the admin and patient views.
func (s *Service) ListAll(ctx context.Context, doctorID int64) ([]*model.ScheduleWithDoctor, error) {
	schedules, err := s.schedules.ListWithDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return schedules, nil
}

func (s *Service) audit(ctx context.Context, userID int64, action string, scheduleID int64) {
	if err := s.auditor.Log(ctx, userID, action, "schedule", scheduleID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}
}

func notFoundOr(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}
