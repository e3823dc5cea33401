package doctor

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

// Service covers the doctor profile, the patient-facing doctor search
// and the admin-side doctor management operations.
type Service struct {
	doctors repository.DoctorRepository
	auditor *audit.Service
	logger  *zerolog.Logger
}

func NewService(doctors repository.DoctorRepository, auditor *audit.Service, logger *zerolog.Logger) *Service {
	return &Service{
		doctors: doctors,
		auditor: auditor,
		logger:  logger,
	}
}

// GetProfile returns the doctor profile attached to a login account.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*model.Doctor, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}
	return doctor, nil
}

func (s *Service) Get(ctx context.Context, doctorID int64) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}
	return doctor, nil
}

// Search lists active doctors, optionally filtered by specialization
// name.
func (s *Service) Search(ctx context.Context, specialization string) ([]*model.DoctorSummary, error) {
	doctors, err := s.doctors.Search(ctx, specialization)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return doctors, nil
}

// Update applies an admin-side partial update to a doctor profile.
// When SpecializationIDs is present the links are replaced wholesale.
func (s *Service) Update(ctx context.Context, actorID, doctorID int64, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}

	if req.FullName != nil {
		doctor.FullName = *req.FullName
	}
	if req.Email != nil {
		doctor.Email = *req.Email
	}
	if req.ExperienceYears != nil {
		doctor.ExperienceYears = *req.ExperienceYears
	}
	if req.Qualification != nil {
		doctor.Qualification = *req.Qualification
	}
	if req.Designation != nil {
		doctor.Designation = *req.Designation
	}

	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, apperrors.Internal(err)
	}
	if req.SpecializationIDs != nil {
		if err := s.doctors.UpdateSpecializations(ctx, doctor.ID, req.SpecializationIDs); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	if err := s.auditor.Log(ctx, actorID, "update", "doctor", doctor.ID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}
	return doctor, nil
}

// Deactivate removes the doctor's login and cancels their open
// appointments. Past consultations keep pointing at the profile.
func (s *Service) Deactivate(ctx context.Context, actorID, doctorID int64) error {
	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return notFoundOr("doctor", err)
	}
	if doctor.UserID == nil {
		return apperrors.BadRequest("doctor is already deactivated", nil)
	}

	deactivated, err := s.doctors.Deactivate(ctx, doctor.ID, *doctor.UserID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !deactivated {
		return apperrors.BadRequest("doctor is already deactivated", nil)
	}

	if err := s.auditor.Log(ctx, actorID, "deactivate", "doctor", doctor.ID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}
	return nil
}

func notFoundOr(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}
