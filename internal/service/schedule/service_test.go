package schedule

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
)

type fakeScheduleRepo struct {
	schedules map[int64]*model.DoctorSchedule
	nextID    int64
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[int64]*model.DoctorSchedule)}
}

func (f *fakeScheduleRepo) Create(_ context.Context, s *model.DoctorSchedule) error {
	f.nextID++
	s.ID = f.nextID
	copied := *s
	f.schedules[s.ID] = &copied
	return nil
}

func (f *fakeScheduleRepo) Get(_ context.Context, id int64) (*model.DoctorSchedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, fmt.Errorf("failed to get schedule: %w", sql.ErrNoRows)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeScheduleRepo) GetForDoctor(ctx context.Context, id, doctorID int64) (*model.DoctorSchedule, error) {
	s, err := f.Get(ctx, id)
	if err != nil || s.DoctorID != doctorID {
		return nil, fmt.Errorf("failed to get schedule: %w", sql.ErrNoRows)
	}
	return s, nil
}

func (f *fakeScheduleRepo) UpdateWindow(_ context.Context, s *model.DoctorSchedule) error {
	stored, ok := f.schedules[s.ID]
	if !ok {
		return fmt.Errorf("schedule not found")
	}
	stored.StartDate = s.StartDate
	stored.EndDate = s.EndDate
	return nil
}

func (f *fakeScheduleRepo) UpdateStatus(_ context.Context, id int64, from, to model.ScheduleStatus) (bool, error) {
	s, ok := f.schedules[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

func (f *fakeScheduleRepo) ListByDoctor(_ context.Context, doctorID int64) ([]*model.DoctorSchedule, error) {
	var out []*model.DoctorSchedule
	for _, s := range f.schedules {
		if s.DoctorID == doctorID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) ListWithDoctor(context.Context, int64) ([]*model.ScheduleWithDoctor, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) HasActiveWindow(_ context.Context, doctorID int64, date time.Time) (bool, error) {
	for _, s := range f.schedules {
		if s.DoctorID == doctorID && s.Covers(date) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeScheduleRepo) HasOverlap(_ context.Context, doctorID int64, start, end time.Time) (bool, error) {
	for _, s := range f.schedules {
		if s.DoctorID == doctorID && s.Status == model.ScheduleStatusScheduled &&
			!s.StartDate.After(end) && !s.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
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
)

func newService(schedules *fakeScheduleRepo, rejectOverlap bool) *Service {
	duid := doctorUserID
	logger := zerolog.Nop()
	return NewService(
		schedules,
		&fakeDoctorRepo{doctor: &model.Doctor{ID: doctorID, UserID: &duid}},
		audit.NewService(fakeAuditRepo{}),
		rejectOverlap,
		&logger,
	)
}

func window(startDay, endDay int) *model.CreateScheduleRequest {
	return &model.CreateScheduleRequest{
		StartDate: time.Date(2025, 6, startDay, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, endDay, 17, 0, 0, 0, time.UTC),
	}
}

func TestCreate(t *testing.T) {
	schedules := newFakeScheduleRepo()
	svc := newService(schedules, false)

	created, err := svc.Create(context.Background(), doctorUserID, window(1, 15))
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleStatusScheduled, created.Status)
	assert.Equal(t, doctorID, created.DoctorID)
	assert.NotZero(t, created.ID)
}

func TestCreateInvertedRange(t *testing.T) {
	svc := newService(newFakeScheduleRepo(), false)

	_, err := svc.Create(context.Background(), doctorUserID, &model.CreateScheduleRequest{
		StartDate: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestCreateOverlapAllowedByDefault(t *testing.T) {
	schedules := newFakeScheduleRepo()
	svc := newService(schedules, false)

	_, err := svc.Create(context.Background(), doctorUserID, window(1, 15))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), doctorUserID, window(10, 20))
	assert.NoError(t, err, "overlapping windows are legal unless rejection is enabled")
}

func TestCreateOverlapRejected(t *testing.T) {
	schedules := newFakeScheduleRepo()
	svc := newService(schedules, true)

	_, err := svc.Create(context.Background(), doctorUserID, window(1, 15))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), doctorUserID, window(10, 20))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrScheduleConflict))

	_, err = svc.Create(context.Background(), doctorUserID, window(16, 25))
	assert.NoError(t, err, "disjoint window is fine")
}

func TestUpdateWindow(t *testing.T) {
	schedules := newFakeScheduleRepo()
	svc := newService(schedules, false)

	created, err := svc.Create(context.Background(), doctorUserID, window(1, 15))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), doctorUserID, created.ID, &model.UpdateScheduleRequest{
		StartDate: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 16, 17, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.StartDate.Day())
	assert.Equal(t, 16, updated.EndDate.Day())
}

func TestUpdateTerminalWindow(t *testing.T) {
	schedules := newFakeScheduleRepo()
	svc := newService(schedules, false)

	created, err := svc.Create(context.Background(), doctorUserID, window(1, 15))
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), doctorUserID, created.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), doctorUserID, created.ID, &model.UpdateScheduleRequest{
		StartDate: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 16, 17, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
}

func TestCancelThenComplete(t *testing.T) {
	schedules := newFakeScheduleRepo()
	svc := newService(schedules, false)

	created, err := svc.Create(context.Background(), doctorUserID, window(1, 15))
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), doctorUserID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleStatusCancelled, cancelled.Status)

	_, err = svc.Complete(context.Background(), doctorUserID, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
}

func TestCompleteThenCancel(t *testing.T) {
	schedules := newFakeScheduleRepo()
	svc := newService(schedules, false)

	created, err := svc.Create(context.Background(), doctorUserID, window(1, 15))
	require.NoError(t, err)

	completed, err := svc.Complete(context.Background(), doctorUserID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleStatusCompleted, completed.Status)

	_, err = svc.Cancel(context.Background(), doctorUserID, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
}

// Admins act on any doctor's window by schedule ID; they have no
// doctor profile of their own.
func TestAdminUpdateAnotherDoctorsWindow(t *testing.T) {
	schedules := newFakeScheduleRepo()
	svc := newService(schedules, false)

	created, err := svc.Create(context.Background(), doctorUserID, window(1, 15))
	require.NoError(t, err)
	schedules.schedules[created.ID].DoctorID = doctorID + 1

	updated, err := svc.UpdateByAdmin(context.Background(), adminUserID, created.ID, &model.UpdateScheduleRequest{
		StartDate: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 16, 17, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 16, updated.EndDate.Day())
}

func TestAdminCancelAndComplete(t *testing.T) {
	schedules := newFakeScheduleRepo()
	svc := newService(schedules, false)

	created, err := svc.Create(context.Background(), doctorUserID, window(1, 15))
	require.NoError(t, err)

	cancelled, err := svc.CancelByAdmin(context.Background(), adminUserID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleStatusCancelled, cancelled.Status)

	_, err = svc.CompleteByAdmin(context.Background(), adminUserID, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))

	_, err = svc.UpdateByAdmin(context.Background(), adminUserID, created.ID, &model.UpdateScheduleRequest{
		StartDate: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 16, 17, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
}

func TestAdminCancelMissingSchedule(t *testing.T) {
	svc := newService(newFakeScheduleRepo(), false)

	_, err := svc.CancelByAdmin(context.Background(), adminUserID, int64(404))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestCancelForeignSchedule(t *testing.T) {
	schedules := newFakeScheduleRepo()
	svc := newService(schedules, false)

	created, err := svc.Create(context.Background(), doctorUserID, window(1, 15))
	require.NoError(t, err)
	schedules.schedules[created.ID].DoctorID = doctorID + 1

	_, err = svc.Cancel(context.Background(), doctorUserID, created.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
