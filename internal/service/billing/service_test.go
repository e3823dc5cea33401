package billing

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/service/audit"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "billing")

type fakeBillingRepo struct {
	billings map[int64]*model.Billing
	// forces the guarded pending->paid update to match no row
	loseRace bool
}

func (f *fakeBillingRepo) Get(_ context.Context, id int64) (*model.Billing, error) {
	b, ok := f.billings[id]
	if !ok {
		return nil, fmt.Errorf("failed to get billing: %w", sql.ErrNoRows)
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBillingRepo) GetForDoctor(_ context.Context, id, doctorID int64) (*model.Billing, error) {
	b, ok := f.billings[id]
	if !ok || b.DoctorID != doctorID {
		return nil, fmt.Errorf("failed to get billing: %w", sql.ErrNoRows)
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBillingRepo) MarkPaid(_ context.Context, id int64) (bool, error) {
	if f.loseRace {
		return false, nil
	}
	b, ok := f.billings[id]
	if !ok || b.Status != model.BillingStatusPending {
		return false, nil
	}
	b.Status = model.BillingStatusPaid
	return true, nil
}

func (f *fakeBillingRepo) ListAll(context.Context) ([]*model.BillingWithNames, error) {
	return nil, nil
}

func (f *fakeBillingRepo) ListByDoctor(context.Context, int64) ([]*model.BillingWithNames, error) {
	return nil, nil
}

func (f *fakeBillingRepo) ListByPatient(context.Context, int64) ([]*model.BillingWithNames, error) {
	return nil, nil
}

type fakeDoctorRepo struct {
	doctor *model.Doctor
}

func (f *fakeDoctorRepo) Get(context.Context, int64) (*model.Doctor, error) {
	return f.doctor, nil
}

func (f *fakeDoctorRepo) GetByUserID(_ context.Context, userID int64) (*model.Doctor, error) {
	if f.doctor == nil || f.doctor.UserID == nil || *f.doctor.UserID != userID {
		return nil, fmt.Errorf("failed to get doctor: %w", sql.ErrNoRows)
	}
	return f.doctor, nil
}

func (f *fakeDoctorRepo) Update(context.Context, *model.Doctor) error { return nil }
func (f *fakeDoctorRepo) UpdateSpecializations(context.Context, int64, []int64) error {
	return nil
}
func (f *fakeDoctorRepo) Search(context.Context, string) ([]*model.DoctorSummary, error) {
	return nil, nil
}
func (f *fakeDoctorRepo) Deactivate(context.Context, int64, int64) (bool, error) {
	return false, nil
}

type fakePatientRepo struct{}

func (fakePatientRepo) Get(context.Context, int64) (*model.Patient, error) {
	return nil, fmt.Errorf("failed to get patient: %w", sql.ErrNoRows)
}
func (fakePatientRepo) GetByUserID(context.Context, int64) (*model.Patient, error) {
	return nil, fmt.Errorf("failed to get patient: %w", sql.ErrNoRows)
}
func (fakePatientRepo) Update(context.Context, *model.Patient) error { return nil }
func (fakePatientRepo) Deactivate(context.Context, int64, int64) (bool, error) {
	return false, nil
}

type fakeAuditRepo struct{}

func (fakeAuditRepo) Create(context.Context, *model.AuditLog) error { return nil }
func (fakeAuditRepo) List(context.Context, map[string]interface{}) ([]*model.AuditLog, error) {
	return nil, nil
}
func (fakeAuditRepo) Cleanup(context.Context, time.Time) (int64, error) { return 0, nil }

const (
	doctorUserID = int64(20)
	adminUserID  = int64(30)
	doctorID     = int64(2)
	billingID    = int64(9)
)

func newService(billings *fakeBillingRepo) *Service {
	duid := doctorUserID
	logger := zerolog.Nop()
	return NewService(
		billings,
		&fakeDoctorRepo{doctor: &model.Doctor{ID: doctorID, UserID: &duid}},
		fakePatientRepo{},
		audit.NewService(fakeAuditRepo{}),
		testMetrics,
		&logger,
	)
}

func pendingBill() *fakeBillingRepo {
	return &fakeBillingRepo{billings: map[int64]*model.Billing{
		billingID: {
			ID:         billingID,
			PatientID:  1,
			DoctorID:   doctorID,
			GrandTotal: 380,
			Status:     model.BillingStatusPending,
		},
	}}
}

func TestMarkPaidByDoctor(t *testing.T) {
	billings := pendingBill()
	svc := newService(billings)

	paid, err := svc.MarkPaidByDoctor(context.Background(), doctorUserID, billingID)
	require.NoError(t, err)
	assert.Equal(t, model.BillingStatusPaid, paid.Status)
	assert.Equal(t, model.BillingStatusPaid, billings.billings[billingID].Status)
}

func TestMarkPaidTwice(t *testing.T) {
	billings := pendingBill()
	svc := newService(billings)

	_, err := svc.MarkPaidByAdmin(context.Background(), adminUserID, billingID)
	require.NoError(t, err)

	_, err = svc.MarkPaidByAdmin(context.Background(), adminUserID, billingID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
}

func TestMarkPaidLosesRace(t *testing.T) {
	billings := pendingBill()
	billings.loseRace = true
	svc := newService(billings)

	_, err := svc.MarkPaidByAdmin(context.Background(), adminUserID, billingID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
}

func TestMarkPaidForeignBill(t *testing.T) {
	billings := pendingBill()
	billings.billings[billingID].DoctorID = doctorID + 1
	svc := newService(billings)

	_, err := svc.MarkPaidByDoctor(context.Background(), doctorUserID, billingID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestMarkPaidUnknownBill(t *testing.T) {
	svc := newService(&fakeBillingRepo{billings: map[int64]*model.Billing{}})

	_, err := svc.MarkPaidByAdmin(context.Background(), adminUserID, billingID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
