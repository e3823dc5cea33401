package billing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/internal/service/audit"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

// Service owns bill settlement and the role-scoped billing views. A
// bill moves from pending to paid exactly once; totals are fixed at
// consultation time and never recomputed.
type Service struct {
	billings repository.BillingRepository
	doctors  repository.DoctorRepository
	patients repository.PatientRepository
	auditor  *audit.Service
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
}

func NewService(
	billings repository.BillingRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	auditor *audit.Service,
	m *metrics.Metrics,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		billings: billings,
		doctors:  doctors,
		patients: patients,
		auditor:  auditor,
		metrics:  m,
		logger:   logger,
	}
}

// MarkPaidByDoctor settles a bill belonging to the calling doctor.
func (s *Service) MarkPaidByDoctor(ctx context.Context, userID, billingID int64) (*model.Billing, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}
	billing, err := s.billings.GetForDoctor(ctx, billingID, doctor.ID)
	if err != nil {
		return nil, notFoundOr("billing", err)
	}
	return s.markPaid(ctx, userID, billing)
}

// MarkPaidByAdmin settles any bill.
func (s *Service) MarkPaidByAdmin(ctx context.Context, userID, billingID int64) (*model.Billing, error) {
	billing, err := s.billings.Get(ctx, billingID)
	if err != nil {
		return nil, notFoundOr("billing", err)
	}
	return s.markPaid(ctx, userID, billing)
}

func (s *Service) markPaid(ctx context.Context, actorID int64, billing *model.Billing) (*model.Billing, error) {
	if !billing.Status.CanTransitionTo(model.BillingStatusPaid) {
		return nil, apperrors.InvalidTransition("bill is already paid")
	}

	ok, err := s.billings.MarkPaid(ctx, billing.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.InvalidTransition("bill is already paid")
	}
	billing.Status = model.BillingStatusPaid

	s.metrics.BillsPaid.Inc()
	if err := s.auditor.Log(ctx, actorID, "mark_paid", "billing", billing.ID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}
	return billing, nil
}

func (s *Service) Get(ctx context.Context, billingID int64) (*model.Billing, error) {
	billing, err := s.billings.Get(ctx, billingID)
	if err != nil {
		return nil, notFoundOr("billing", err)
	}
	return billing, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*model.BillingWithNames, error) {
	billings, err := s.billings.ListAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return billings, nil
}

func (s *Service) ListForDoctor(ctx context.Context, userID int64) ([]*model.BillingWithNames, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}
	billings, err := s.billings.ListByDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return billings, nil
}

func (s *Service) ListForPatient(ctx context.Context, userID int64) ([]*model.BillingWithNames, error) {
	patient, err := s.patients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("patient", err)
	}
	billings, err := s.billings.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return billings, nil
}

func notFoundOr(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}
