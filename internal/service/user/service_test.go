package user

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/service/audit"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/security"
)

type fakeUserRepo struct {
	taken map[string]bool

	createdUser    *model.User
	createdPatient *model.Patient
	createdDoctor  *model.Doctor
	createdAdmin   *model.Administrator
	doctorSpecs    []int64
}

func (f *fakeUserRepo) Get(context.Context, int64) (*model.User, error) {
	return nil, fmt.Errorf("failed to get user: %w", sql.ErrNoRows)
}

func (f *fakeUserRepo) GetByUsername(context.Context, string) (*model.User, error) {
	return nil, fmt.Errorf("failed to get user: %w", sql.ErrNoRows)
}

func (f *fakeUserRepo) Update(context.Context, *model.User) error { return nil }

func (f *fakeUserRepo) IsUsernameAvailable(_ context.Context, username string) (bool, error) {
	return !f.taken[username], nil
}

func (f *fakeUserRepo) CreateWithPatient(_ context.Context, user *model.User, patient *model.Patient) error {
	user.ID = 1
	patient.ID = 1
	patient.UserID = &user.ID
	f.createdUser = user
	f.createdPatient = patient
	return nil
}

func (f *fakeUserRepo) CreateWithDoctor(_ context.Context, user *model.User, doctor *model.Doctor, specializationIDs []int64) error {
	user.ID = 2
	doctor.ID = 2
	doctor.UserID = &user.ID
	f.createdUser = user
	f.createdDoctor = doctor
	f.doctorSpecs = specializationIDs
	return nil
}

func (f *fakeUserRepo) CreateWithAdmin(_ context.Context, user *model.User, admin *model.Administrator) error {
	user.ID = 3
	admin.ID = 3
	admin.UserID = &user.ID
	f.createdUser = user
	f.createdAdmin = admin
	return nil
}

type fakeAuditRepo struct{}

func (fakeAuditRepo) Create(context.Context, *model.AuditLog) error { return nil }
func (fakeAuditRepo) List(context.Context, map[string]interface{}) ([]*model.AuditLog, error) {
	return nil, nil
}
func (fakeAuditRepo) Cleanup(context.Context, time.Time) (int64, error) { return 0, nil }

type fakeEmail struct {
	welcomes []string
}

func (f *fakeEmail) SendAppointmentApproved(context.Context, string, string, time.Time) error {
	return nil
}

func (f *fakeEmail) SendAppointmentCancelled(context.Context, string, string, time.Time) error {
	return nil
}

func (f *fakeEmail) SendWelcome(_ context.Context, to, _ string) error {
	f.welcomes = append(f.welcomes, to)
	return nil
}

func newFixture() (*Service, *fakeUserRepo, *fakeEmail) {
	users := &fakeUserRepo{taken: map[string]bool{"taken": true}}
	emailSvc := &fakeEmail{}
	logger := zerolog.Nop()
	svc := NewService(
		users,
		security.NewBcryptHasher(bcrypt.MinCost),
		emailSvc,
		audit.NewService(fakeAuditRepo{}),
		&logger,
	)
	return svc, users, emailSvc
}

func TestCheckUsername(t *testing.T) {
	svc, _, _ := newFixture()

	free, err := svc.CheckUsername(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.True(t, free.IsAvailable)
	assert.Equal(t, "username is available", free.Message)

	taken, err := svc.CheckUsername(context.Background(), "taken")
	require.NoError(t, err)
	assert.False(t, taken.IsAvailable)
	assert.Equal(t, "username is already taken", taken.Message)
}

func TestRegisterPatient(t *testing.T) {
	svc, users, emailSvc := newFixture()

	patient, err := svc.RegisterPatient(context.Background(), &model.RegisterPatientRequest{
		Username:      "jdoe",
		Password:      "correct-horse-battery",
		FullName:      "John Doe",
		Email:         "john@clinic.test",
		DateOfBirth:   time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC),
		Gender:        "male",
		ContactNumber: "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "John Doe", patient.FullName)
	require.NotNil(t, patient.UserID)

	require.NotNil(t, users.createdUser)
	assert.Equal(t, model.RolePatient, users.createdUser.Role)
	assert.NotEqual(t, "correct-horse-battery", users.createdUser.PasswordHash, "password is stored hashed")
	assert.NotEmpty(t, users.createdUser.PasswordHash)

	assert.Equal(t, []string{"john@clinic.test"}, emailSvc.welcomes)
}

func TestRegisterPatientTakenUsername(t *testing.T) {
	svc, users, _ := newFixture()

	_, err := svc.RegisterPatient(context.Background(), &model.RegisterPatientRequest{
		Username:      "taken",
		Password:      "correct-horse-battery",
		FullName:      "John Doe",
		Email:         "john@clinic.test",
		DateOfBirth:   time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC),
		Gender:        "male",
		ContactNumber: "555-0100",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrAlreadyTaken))
	assert.Nil(t, users.createdUser, "nothing is written when the gate rejects")
}

func TestRegisterPatientShortPassword(t *testing.T) {
	svc, _, _ := newFixture()

	_, err := svc.RegisterPatient(context.Background(), &model.RegisterPatientRequest{
		Username: "jdoe",
		Password: "short",
		FullName: "John Doe",
		Email:    "john@clinic.test",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestRegisterDoctor(t *testing.T) {
	svc, users, _ := newFixture()

	doctor, err := svc.RegisterDoctor(context.Background(), 30, &model.RegisterDoctorRequest{
		Username:          "drgrey",
		Password:          "correct-horse-battery",
		FullName:          "Dr. Meredith Grey",
		Email:             "grey@clinic.test",
		ExperienceYears:   12,
		Qualification:     "MD",
		Designation:       "Senior Surgeon",
		SpecializationIDs: []int64{1, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Meredith Grey", doctor.FullName)
	assert.Equal(t, model.RoleDoctor, users.createdUser.Role)
	assert.Equal(t, []int64{1, 3}, users.doctorSpecs)
}

func TestRegisterAdmin(t *testing.T) {
	svc, users, _ := newFixture()

	admin, err := svc.RegisterAdmin(context.Background(), 30, &model.RegisterAdminRequest{
		Username: "root",
		Password: "correct-horse-battery",
		FullName: "Site Admin",
		Email:    "admin@clinic.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "Site Admin", admin.FullName)
	assert.Equal(t, model.RoleAdmin, users.createdUser.Role)
}
