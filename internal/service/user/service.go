package user

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/email"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/internal/service/audit"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/security"
)

// Service handles account registration. Every registration runs the
// username availability gate and writes the account and its role
// profile in a single transaction.
type Service struct {
	users    repository.UserRepository
	hasher   security.PasswordHasher
	emailSvc email.Service
	auditor  *audit.Service
	logger   *zerolog.Logger
}

func NewService(
	users repository.UserRepository,
	hasher security.PasswordHasher,
	emailSvc email.Service,
	auditor *audit.Service,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		emailSvc: emailSvc,
		auditor:  auditor,
		logger:   logger,
	}
}

func (s *Service) CheckUsername(ctx context.Context, username string) (*model.UsernameAvailability, error) {
	available, err := s.users.IsUsernameAvailable(ctx, username)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	result := &model.UsernameAvailability{
		Username:    username,
		IsAvailable: available,
	}
	if available {
		result.Message = "username is available"
	} else {
		result.Message = "username is already taken"
	}
	return result, nil
}

func (s *Service) requireAvailable(ctx context.Context, username string) error {
	available, err := s.users.IsUsernameAvailable(ctx, username)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !available {
		return apperrors.AlreadyTaken("username is already taken")
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

func (s *Service) RegisterPatient(ctx context.Context, req *model.RegisterPatientRequest) (*model.Patient, error) {
	if err := s.requireAvailable(ctx, req.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, badPassword(err)
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         model.RolePatient,
	}
	patient := &model.Patient{
		FullName:       req.FullName,
		Email:          req.Email,
		DateOfBirth:    req.DateOfBirth,
		Gender:         req.Gender,
		ContactNumber:  req.ContactNumber,
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
	}

	if err := s.users.CreateWithPatient(ctx, user, patient); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.emailSvc.SendWelcome(ctx, patient.Email, patient.FullName); err != nil {
		s.logger.Warn().Err(err).Str("email", patient.Email).Msg("failed to send welcome email")
	}
	if err := s.auditor.Log(ctx, user.ID, "register", "patient", patient.ID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}

	return patient, nil
}

func (s *Service) RegisterDoctor(ctx context.Context, actorID int64, req *model.RegisterDoctorRequest) (*model.Doctor, error) {
	if err := s.requireAvailable(ctx, req.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, badPassword(err)
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         model.RoleDoctor,
	}
	doctor := &model.Doctor{
		FullName:        req.FullName,
		Email:           req.Email,
		ExperienceYears: req.ExperienceYears,
		Qualification:   req.Qualification,
		Designation:     req.Designation,
	}

	if err := s.users.CreateWithDoctor(ctx, user, doctor, req.SpecializationIDs); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.auditor.Log(ctx, actorID, "register", "doctor", doctor.ID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}
	return doctor, nil
}

func (s *Service) RegisterAdmin(ctx context.Context, actorID int64, req *model.RegisterAdminRequest) (*model.Administrator, error) {
	if err := s.requireAvailable(ctx, req.Username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, badPassword(err)
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	admin := &model.Administrator{
		FullName: req.FullName,
		Email:    req.Email,
	}

	if err := s.users.CreateWithAdmin(ctx, user, admin); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.auditor.Log(ctx, actorID, "register", "administrator", admin.ID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}
	return admin, nil
}
