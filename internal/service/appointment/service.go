package appointment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/email"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/internal/service/audit"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

// Service owns the appointment lifecycle. Every status change goes
// through a guarded update so concurrent transitions cannot both win.
type Service struct {
	appointments repository.AppointmentRepository
	schedules    repository.ScheduleRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	emailSvc     email.Service
	auditor      *audit.Service
	metrics      *metrics.Metrics
	logger       *zerolog.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	schedules repository.ScheduleRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	emailSvc email.Service,
	auditor *audit.Service,
	m *metrics.Metrics,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		appointments: appointments,
		schedules:    schedules,
		doctors:      doctors,
		patients:     patients,
		emailSvc:     emailSvc,
		auditor:      auditor,
		metrics:      m,
		logger:       logger,
	}
}

// Request books a new appointment for the patient attached to userID.
// The date must fall inside an active schedule window of the target
// doctor; the appointment starts out awaiting doctor approval.
func (s *Service) Request(ctx context.Context, userID int64, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}

	if _, err := s.doctors.Get(ctx, req.DoctorID); err != nil {
		return nil, notFoundOr("doctor", err)
	}

	if !req.AppointmentDate.After(time.Now()) {
		return nil, apperrors.BadRequest("appointment date must be in the future", nil)
	}

	covered, err := s.schedules.HasActiveWindow(ctx, req.DoctorID, req.AppointmentDate)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !covered {
		return nil, apperrors.ScheduleConflict("doctor is not available on the requested date")
	}

	appointment := &model.Appointment{
		PatientID:       patient.ID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.AppointmentDate,
		Symptoms:        req.Symptoms,
		Status:          model.AppointmentStatusRequested,
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.metrics.AppointmentsRequested.Inc()
	s.audit(ctx, userID, "request", appointment.ID)
	return appointment, nil
}

// Approve moves a requested appointment to scheduled. Only the doctor
// the appointment belongs to can approve it.
func (s *Service) Approve(ctx context.Context, userID, appointmentID int64) (*model.Appointment, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}

	appointment, err := s.appointments.GetForDoctor(ctx, appointmentID, doctor.ID)
	if err != nil {
		return nil, notFoundOr("appointment", err)
	}

	if !appointment.Status.CanTransitionTo(model.AppointmentStatusScheduled) {
		return nil, apperrors.InvalidTransition("only a requested appointment can be approved")
	}

	ok, err := s.appointments.UpdateStatus(ctx, appointment.ID, appointment.Status, model.AppointmentStatusScheduled)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.InvalidTransition("appointment was modified concurrently")
	}
	appointment.Status = model.AppointmentStatusScheduled

	s.metrics.AppointmentsApproved.Inc()
	s.audit(ctx, userID, "approve", appointment.ID)
	s.notify(ctx, appointment, true)
	return appointment, nil
}

// CancelByPatient cancels the patient's own appointment.
func (s *Service) CancelByPatient(ctx context.Context, userID, appointmentID int64) (*model.Appointment, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}
	appointment, err := s.appointments.GetForPatient(ctx, appointmentID, patient.ID)
	if err != nil {
		return nil, notFoundOr("appointment", err)
	}
	return s.cancel(ctx, userID, appointment)
}

// CancelByDoctor cancels an appointment on the doctor's own calendar.
func (s *Service) CancelByDoctor(ctx context.Context, userID, appointmentID int64) (*model.Appointment, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}
	appointment, err := s.appointments.GetForDoctor(ctx, appointmentID, doctor.ID)
	if err != nil {
		return nil, notFoundOr("appointment", err)
	}
	return s.cancel(ctx, userID, appointment)
}

// CancelByAdmin cancels any appointment.
func (s *Service) CancelByAdmin(ctx context.Context, userID, appointmentID int64) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, notFoundOr("appointment", err)
	}
	return s.cancel(ctx, userID, appointment)
}

func (s *Service) cancel(ctx context.Context, actorID int64, appointment *model.Appointment) (*model.Appointment, error) {
	if !appointment.Status.CanTransitionTo(model.AppointmentStatusCanceled) {
		return nil, apperrors.InvalidTransition("appointment can no longer be cancelled")
	}

	ok, err := s.appointments.UpdateStatus(ctx, appointment.ID, appointment.Status, model.AppointmentStatusCanceled)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.InvalidTransition("appointment was modified concurrently")
	}
	appointment.Status = model.AppointmentStatusCanceled

	s.metrics.AppointmentsCancelled.Inc()
	s.audit(ctx, actorID, "cancel", appointment.ID)
	s.notify(ctx, appointment, false)
	return appointment, nil
}

// RescheduleByPatient moves the patient's appointment to a new date.
// The move demotes the appointment back to requested so the doctor has
// to approve the new date.
func (s *Service) RescheduleByPatient(ctx context.Context, userID, appointmentID int64, newDate time.Time) (*model.Appointment, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}
	appointment, err := s.appointments.GetForPatient(ctx, appointmentID, patient.ID)
	if err != nil {
		return nil, notFoundOr("appointment", err)
	}
	return s.reschedule(ctx, userID, appointment, newDate, model.AppointmentStatusRequested)
}

// RescheduleByDoctor moves an appointment on the doctor's calendar
// without changing its status.
func (s *Service) RescheduleByDoctor(ctx context.Context, userID, appointmentID int64, newDate time.Time) (*model.Appointment, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}
	appointment, err := s.appointments.GetForDoctor(ctx, appointmentID, doctor.ID)
	if err != nil {
		return nil, notFoundOr("appointment", err)
	}
	return s.reschedule(ctx, userID, appointment, newDate, appointment.Status)
}

// RescheduleByAdmin moves any appointment without changing its status.
func (s *Service) RescheduleByAdmin(ctx context.Context, userID, appointmentID int64, newDate time.Time) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, notFoundOr("appointment", err)
	}
	return s.reschedule(ctx, userID, appointment, newDate, appointment.Status)
}

func (s *Service) reschedule(ctx context.Context, actorID int64, appointment *model.Appointment, newDate time.Time, newStatus model.AppointmentStatus) (*model.Appointment, error) {
	if appointment.Status.Terminal() {
		return nil, apperrors.InvalidTransition("appointment can no longer be rescheduled")
	}

	if !newDate.After(time.Now()) {
		return nil, apperrors.BadRequest("appointment date must be in the future", nil)
	}

	covered, err := s.schedules.HasActiveWindow(ctx, appointment.DoctorID, newDate)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !covered {
		return nil, apperrors.ScheduleConflict("doctor is not available on the requested date")
	}

	ok, err := s.appointments.UpdateDate(ctx, appointment.ID, newDate, appointment.Status, newStatus)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.InvalidTransition("appointment was modified concurrently")
	}
	appointment.AppointmentDate = newDate
	appointment.Status = newStatus

	s.audit(ctx, actorID, "reschedule", appointment.ID)
	return appointment, nil
}

func (s *Service) Get(ctx context.Context, appointmentID int64) (*model.Appointment, error) {
	appointment, err := s.appointments.Get(ctx, appointmentID)
	if err != nil {
		return nil, notFoundOr("appointment", err)
	}
	return appointment, nil
}

// ListForDoctor returns the doctor's appointments joined with patient
// names, optionally filtered by status.
func (s *Service) ListForDoctor(ctx context.Context, userID int64, status model.AppointmentStatus) ([]*model.AppointmentWithPatient, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}
	appointments, err := s.appointments.ListByDoctor(ctx, doctor.ID, status)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appointments, nil
}

// ListForPatient returns the patient's appointments joined with doctor
// names.
func (s *Service) ListForPatient(ctx context.Context, userID int64) ([]*model.AppointmentWithDoctor, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}
	appointments, err := s.appointments.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appointments, nil
}

func (s *Service) audit(ctx context.Context, userID int64, action string, appointmentID int64) {
	if err := s.auditor.Log(ctx, userID, action, "appointment", appointmentID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}
}

func (s *Service) notify(ctx context.Context, appointment *model.Appointment, approved bool) {
	patient, err := s.patients.Get(ctx, appointment.PatientID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("patient_id", appointment.PatientID).Msg("failed to load patient for notification")
		return
	}

	if approved {
		err = s.emailSvc.SendAppointmentApproved(ctx, patient.Email, patient.FullName, appointment.AppointmentDate)
	} else {
		err = s.emailSvc.SendAppointmentCancelled(ctx, patient.Email, patient.FullName, appointment.AppointmentDate)
	}
	if err != nil {
		s.logger.Warn().Err(err).Int64("appointment_id", appointment.ID).Msg("failed to send appointment email")
	}
}

func notFoundOr(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}
