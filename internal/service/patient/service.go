package patient

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/internal/service/audit"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/security"
)

// Service covers patient self-service and the admin-side patient
// management operations.
type Service struct {
	patients     repository.PatientRepository
	users        repository.UserRepository
	records      repository.MedicalRecordRepository
	appointments repository.AppointmentRepository
	hasher       security.PasswordHasher
	auditor      *audit.Service
	logger       *zerolog.Logger
}

func NewService(
	patients repository.PatientRepository,
	users repository.UserRepository,
	records repository.MedicalRecordRepository,
	appointments repository.AppointmentRepository,
	hasher security.PasswordHasher,
	auditor *audit.Service,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		patients:     patients,
		users:        users,
		records:      records,
		appointments: appointments,
		hasher:       hasher,
		auditor:      auditor,
		logger:       logger,
	}
}

func (s *Service) GetPersonalInfo(ctx context.Context, userID int64) (*model.PatientPersonalInfo, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, notFoundOr("user", err)
	}

	return &model.PatientPersonalInfo{
		UserID:         user.ID,
		Username:       user.Username,
		FullName:       patient.FullName,
		Email:          patient.Email,
		DateOfBirth:    patient.DateOfBirth,
		Gender:         patient.Gender,
		ContactNumber:  patient.ContactNumber,
		Address:        patient.Address,
		MedicalHistory: patient.MedicalHistory,
	}, nil
}

// UpdatePersonalInfo is the patient self-service profile update. A
// username change re-runs the availability gate and a non-empty new
// password is re-hashed.
func (s *Service) UpdatePersonalInfo(ctx context.Context, userID int64, req *model.UpdatePersonalInfoRequest) (*model.PatientPersonalInfo, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, notFoundOr("user", err)
	}

	if req.Username != user.Username {
		available, err := s.users.IsUsernameAvailable(ctx, req.Username)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if !available {
			return nil, apperrors.AlreadyTaken("username is already taken")
		}
		user.Username = req.Username
	}
	if req.NewPassword != "" {
		hash, err := s.hasher.Hash(req.NewPassword)
		if err != nil {
			return nil, badPassword(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Internal(err)
	}

	patient.FullName = req.FullName
	patient.Email = req.Email
	patient.DateOfBirth = req.DateOfBirth
	patient.Gender = req.Gender
	patient.ContactNumber = req.ContactNumber
	patient.Address = req.Address
	patient.MedicalHistory = req.MedicalHistory

	if err := s.patients.Update(ctx, patient); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.auditor.Log(ctx, userID, "update", "patient", patient.ID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}

	return s.GetPersonalInfo(ctx, userID)
}

// ListHistory returns the patient's consultations with their tests,
// prescriptions and bills.
func (s *Service) ListHistory(ctx context.Context, userID int64) ([]*model.PatientMedicalRecord, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}
	history, err := s.records.ListHistoryByPatient(ctx, patient.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return history, nil
}

func (s *Service) ListTestDetails(ctx context.Context, userID int64) ([]*model.PatientTestDetail, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}
	details, err := s.records.ListTestDetailsByPatient(ctx, patient.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return details, nil
}

func (s *Service) ListPrescriptions(ctx context.Context, userID int64) ([]*model.Prescription, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}
	prescriptions, err := s.records.ListPrescriptionsByPatient(ctx, patient.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return prescriptions, nil
}

// Get returns a patient profile by ID for the admin views.
func (s *Service) Get(ctx context.Context, patientID int64) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}
	return patient, nil
}

// Update applies an admin-side partial update to a patient profile.
func (s *Service) Update(ctx context.Context, actorID, patientID int64, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}

	if req.FullName != nil {
		patient.FullName = *req.FullName
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = *req.DateOfBirth
	}
	if req.ContactNumber != nil {
		patient.ContactNumber = *req.ContactNumber
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = *req.MedicalHistory
	}

	if err := s.patients.Update(ctx, patient); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.auditor.Log(ctx, actorID, "update", "patient", patient.ID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}
	return patient, nil
}

// Deactivate removes the patient's login and cancels their open
// appointments. The clinical history stays on file.
func (s *Service) Deactivate(ctx context.Context, actorID, patientID int64) error {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return notFoundOr("patient", err)
	}
	if patient.UserID == nil {
		return apperrors.BadRequest("patient is already deactivated", nil)
	}

	deactivated, err := s.patients.Deactivate(ctx, patient.ID, *patient.UserID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !deactivated {
		return apperrors.BadRequest("patient is already deactivated", nil)
	}

	if err := s.auditor.Log(ctx, actorID, "deactivate", "patient", patient.ID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}
	return nil
}

// badPassword surfaces the length floor to the caller; anything else
// from the hasher stays generic.
func badPassword(err error) error {
	if errors.Is(err, security.ErrPasswordTooShort) {
		return apperrors.BadRequest(err.Error(), err)
	}
	return apperrors.BadRequest("invalid password", err)
}

func notFoundOr(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}
