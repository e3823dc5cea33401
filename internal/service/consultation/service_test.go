package consultation

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
	"github.com/clinicore/clinic-api/internal/service/catalog"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "consultation")

type fakeConsultationRepo struct {
	saved *model.Consultation
	// simulates the appointment being flipped out of Scheduled by a
	// concurrent writer before the transaction commits
	staleAppointment bool
}

func (f *fakeConsultationRepo) Save(_ context.Context, c *model.Consultation) (bool, error) {
	if f.staleAppointment {
		return false, nil
	}
	c.Record.ID = 100
	c.Billing.ID = 200
	c.Record.BillingID = &c.Billing.ID
	f.saved = c
	return true, nil
}

type fakeRecordRepo struct {
	records map[int64]*model.MedicalRecord
}

func (f *fakeRecordRepo) Get(_ context.Context, id int64) (*model.MedicalRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("failed to get medical record: %w", sql.ErrNoRows)
	}
	return r, nil
}

func (f *fakeRecordRepo) GetForDoctor(_ context.Context, id, doctorID, patientID int64) (*model.MedicalRecord, error) {
	r, ok := f.records[id]
	if !ok || r.DoctorID != doctorID || r.PatientID != patientID {
		return nil, fmt.Errorf("failed to get medical record: %w", sql.ErrNoRows)
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRecordRepo) Update(_ context.Context, record *model.MedicalRecord) error {
	f.records[record.ID] = record
	return nil
}

func (f *fakeRecordRepo) ListHistoryByPatient(context.Context, int64) ([]*model.PatientMedicalRecord, error) {
	return nil, nil
}

func (f *fakeRecordRepo) ListTestDetailsByPatient(context.Context, int64) ([]*model.PatientTestDetail, error) {
	return nil, nil
}

func (f *fakeRecordRepo) ListPrescriptionsByPatient(context.Context, int64) ([]*model.Prescription, error) {
	return nil, nil
}

type fakeAppointmentRepo struct {
	appointments map[int64]*model.Appointment
}

func (f *fakeAppointmentRepo) Create(context.Context, *model.Appointment) error { return nil }

func (f *fakeAppointmentRepo) Get(_ context.Context, id int64) (*model.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok {
		return nil, fmt.Errorf("failed to get appointment: %w", sql.ErrNoRows)
	}
	return a, nil
}

func (f *fakeAppointmentRepo) GetForDoctor(_ context.Context, id, doctorID int64) (*model.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok || a.DoctorID != doctorID {
		return nil, fmt.Errorf("failed to get appointment: %w", sql.ErrNoRows)
	}
	return a, nil
}

func (f *fakeAppointmentRepo) GetForPatient(_ context.Context, id, patientID int64) (*model.Appointment, error) {
	a, ok := f.appointments[id]
	if !ok || a.PatientID != patientID {
		return nil, fmt.Errorf("failed to get appointment: %w", sql.ErrNoRows)
	}
	return a, nil
}

func (f *fakeAppointmentRepo) UpdateDate(context.Context, int64, time.Time, model.AppointmentStatus, model.AppointmentStatus) (bool, error) {
	return true, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(context.Context, int64, model.AppointmentStatus, model.AppointmentStatus) (bool, error) {
	return false, nil
}

func (f *fakeAppointmentRepo) ListByDoctor(context.Context, int64, model.AppointmentStatus) ([]*model.AppointmentWithPatient, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) ListByPatient(context.Context, int64) ([]*model.AppointmentWithDoctor, error) {
	return nil, nil
}

type fakeDoctorRepo struct {
	doctor *model.Doctor
}

func (f *fakeDoctorRepo) Get(_ context.Context, id int64) (*model.Doctor, error) {
	if f.doctor == nil || f.doctor.ID != id {
		return nil, fmt.Errorf("failed to get doctor: %w", sql.ErrNoRows)
	}
	return f.doctor, nil
}

func (f *fakeDoctorRepo) GetByUserID(_ context.Context, userID int64) (*model.Doctor, error) {
	if f.doctor == nil || f.doctor.UserID == nil || *f.doctor.UserID != userID {
		return nil, fmt.Errorf("failed to get doctor: %w", sql.ErrNoRows)
	}
	return f.doctor, nil
}

func (f *fakeDoctorRepo) Update(context.Context, *model.Doctor) error { return nil }

func (f *fakeDoctorRepo) UpdateSpecializations(context.Context, int64, []int64) error { return nil }

func (f *fakeDoctorRepo) Search(context.Context, string) ([]*model.DoctorSummary, error) {
	return nil, nil
}

func (f *fakeDoctorRepo) Deactivate(context.Context, int64, int64) (bool, error) {
	return false, nil
}

type fakeCatalogRepo struct {
	tests       map[int64]*model.Test
	medications map[int64]*model.Medication
}

func (f *fakeCatalogRepo) ListTests(context.Context) ([]*model.Test, error) { return nil, nil }

func (f *fakeCatalogRepo) GetTestsByIDs(_ context.Context, ids []int64) ([]*model.Test, error) {
	var out []*model.Test
	for _, id := range ids {
		if t, ok := f.tests[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) CreateTest(context.Context, *model.Test) error { return nil }
func (f *fakeCatalogRepo) UpdateTest(context.Context, *model.Test) error { return nil }

func (f *fakeCatalogRepo) GetTest(_ context.Context, id int64) (*model.Test, error) {
	t, ok := f.tests[id]
	if !ok {
		return nil, fmt.Errorf("failed to get test: %w", sql.ErrNoRows)
	}
	return t, nil
}

func (f *fakeCatalogRepo) ListMedications(context.Context) ([]*model.Medication, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) GetMedication(_ context.Context, id int64) (*model.Medication, error) {
	m, ok := f.medications[id]
	if !ok {
		return nil, fmt.Errorf("failed to get medication: %w", sql.ErrNoRows)
	}
	return m, nil
}

func (f *fakeCatalogRepo) CreateMedication(context.Context, *model.Medication) error { return nil }
func (f *fakeCatalogRepo) UpdateMedication(context.Context, *model.Medication) error { return nil }

func (f *fakeCatalogRepo) ListSpecializations(context.Context) ([]*model.Specialization, error) {
	return nil, nil
}

type fakeAuditRepo struct{}

func (fakeAuditRepo) Create(context.Context, *model.AuditLog) error { return nil }
func (fakeAuditRepo) List(context.Context, map[string]interface{}) ([]*model.AuditLog, error) {
	return nil, nil
}
func (fakeAuditRepo) Cleanup(context.Context, time.Time) (int64, error) { return 0, nil }

const (
	doctorUserID  = int64(20)
	doctorID      = int64(2)
	patientID     = int64(1)
	appointmentID = int64(7)
)

type fixture struct {
	svc           *Service
	consultations *fakeConsultationRepo
	appointments  *fakeAppointmentRepo
	records       *fakeRecordRepo
}

func newFixture() *fixture {
	duid := doctorUserID
	doctors := &fakeDoctorRepo{doctor: &model.Doctor{ID: doctorID, UserID: &duid, FullName: "Dr. Meredith Grey"}}
	appointments := &fakeAppointmentRepo{appointments: map[int64]*model.Appointment{
		appointmentID: {
			ID:              appointmentID,
			PatientID:       patientID,
			DoctorID:        doctorID,
			AppointmentDate: time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC),
			Status:          model.AppointmentStatusScheduled,
		},
	}}
	catalogRepo := &fakeCatalogRepo{
		tests: map[int64]*model.Test{
			1: {ID: 1, Name: "Complete Blood Count", Price: 200},
			2: {ID: 2, Name: "Lipid Profile", Price: 150},
		},
		medications: map[int64]*model.Medication{
			5: {ID: 5, Name: "Amoxicillin", PricePerUnit: 50},
		},
	}
	consultations := &fakeConsultationRepo{}
	records := &fakeRecordRepo{records: make(map[int64]*model.MedicalRecord)}

	logger := zerolog.Nop()
	svc := NewService(
		consultations, records, appointments, doctors,
		catalog.NewService(catalogRepo, time.Minute),
		audit.NewService(fakeAuditRepo{}), testMetrics, &logger,
	)
	return &fixture{svc: svc, consultations: consultations, appointments: appointments, records: records}
}

func TestConductPricesEverything(t *testing.T) {
	f := newFixture()

	consultation, err := f.svc.Conduct(context.Background(), doctorUserID, appointmentID, &model.ConductConsultationRequest{
		Symptoms:            "persistent cough",
		PhysicalExamination: "clear lungs",
		TreatmentPlan:       "rest and antibiotics",
		TestIDs:             []int64{1},
		Prescriptions: []model.PrescriptionInput{
			{MedicationID: 5, Dosage: "500mg twice daily", DurationDays: 7, Quantity: 2},
		},
		ConsultationFee: 80,
	})
	require.NoError(t, err)

	assert.Equal(t, 300.0, consultation.Record.TotalPrice, "tests 200 + medications 100")
	require.Len(t, consultation.Prescriptions, 1)
	assert.Equal(t, "Amoxicillin", consultation.Prescriptions[0].MedicationName)
	assert.Equal(t, 100.0, consultation.Prescriptions[0].TotalPrice)

	assert.Equal(t, 200.0, consultation.Billing.TotalTestsPrice)
	assert.Equal(t, 100.0, consultation.Billing.TotalMedicationsPrice)
	assert.Equal(t, 380.0, consultation.Billing.GrandTotal, "fee 80 + tests 200 + medications 100")
	assert.Equal(t, model.BillingStatusPending, consultation.Billing.Status)

	require.NotNil(t, f.consultations.saved)
	assert.Equal(t, appointmentID, f.consultations.saved.Record.AppointmentID)
	assert.Equal(t, patientID, f.consultations.saved.Record.PatientID)
}

func TestConductDropsUnknownMedication(t *testing.T) {
	f := newFixture()

	consultation, err := f.svc.Conduct(context.Background(), doctorUserID, appointmentID, &model.ConductConsultationRequest{
		Symptoms:            "headache",
		PhysicalExamination: "normal",
		TreatmentPlan:       "hydration",
		Prescriptions: []model.PrescriptionInput{
			{MedicationID: 999, Dosage: "once daily", DurationDays: 3, Quantity: 1},
			{MedicationID: 5, Dosage: "500mg", DurationDays: 5, Quantity: 1},
		},
		ConsultationFee: 60,
	})
	require.NoError(t, err)

	require.Len(t, consultation.Prescriptions, 1, "unknown medication is skipped, not fatal")
	assert.Equal(t, int64(5), consultation.Prescriptions[0].MedicationID)
	assert.Equal(t, 110.0, consultation.Billing.GrandTotal)
}

func TestConductUnknownTestsIgnored(t *testing.T) {
	f := newFixture()

	consultation, err := f.svc.Conduct(context.Background(), doctorUserID, appointmentID, &model.ConductConsultationRequest{
		Symptoms:            "fatigue",
		PhysicalExamination: "normal",
		TreatmentPlan:       "bloodwork",
		TestIDs:             []int64{1, 2, 999},
		ConsultationFee:     50,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{1, 2}, consultation.TestIDs)
	assert.Equal(t, 350.0, consultation.Billing.TotalTestsPrice)
	assert.Equal(t, 400.0, consultation.Billing.GrandTotal)
}

func TestConductRequiresScheduled(t *testing.T) {
	f := newFixture()
	f.appointments.appointments[appointmentID].Status = model.AppointmentStatusRequested

	_, err := f.svc.Conduct(context.Background(), doctorUserID, appointmentID, &model.ConductConsultationRequest{
		Symptoms:            "cough",
		PhysicalExamination: "normal",
		TreatmentPlan:       "rest",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
}

func TestConductLosesRace(t *testing.T) {
	f := newFixture()
	f.consultations.staleAppointment = true

	_, err := f.svc.Conduct(context.Background(), doctorUserID, appointmentID, &model.ConductConsultationRequest{
		Symptoms:            "cough",
		PhysicalExamination: "normal",
		TreatmentPlan:       "rest",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTransition))
}

func TestConductForeignAppointment(t *testing.T) {
	f := newFixture()
	f.appointments.appointments[appointmentID].DoctorID = doctorID + 1

	_, err := f.svc.Conduct(context.Background(), doctorUserID, appointmentID, &model.ConductConsultationRequest{
		Symptoms:            "cough",
		PhysicalExamination: "normal",
		TreatmentPlan:       "rest",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestUpdateRecord(t *testing.T) {
	f := newFixture()
	f.records.records[100] = &model.MedicalRecord{
		ID:            100,
		AppointmentID: appointmentID,
		DoctorID:      doctorID,
		PatientID:     patientID,
		Symptoms:      "cough",
		TreatmentPlan: "rest",
	}

	plan := "rest and fluids"
	updated, err := f.svc.UpdateRecord(context.Background(), doctorUserID, 100, patientID, &model.UpdateMedicalRecordRequest{
		TreatmentPlan: &plan,
	})
	require.NoError(t, err)
	assert.Equal(t, "rest and fluids", updated.TreatmentPlan)
	assert.Equal(t, "cough", updated.Symptoms, "unset fields are left alone")
}

func TestGetRecordWrongPatient(t *testing.T) {
	f := newFixture()
	f.records.records[100] = &model.MedicalRecord{ID: 100, DoctorID: doctorID, PatientID: patientID}

	_, err := f.svc.GetRecord(context.Background(), doctorUserID, 100, patientID+1)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}
