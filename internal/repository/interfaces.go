package repository

import (
	"context"
	"time"

	"github.com/clinicore/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	// UserRepository handles login accounts and the transactional
	// account+profile registration flows.
	UserRepository interface {
		Get(ctx context.Context, id int64) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		IsUsernameAvailable(ctx context.Context, username string) (bool, error)
		CreateWithPatient(ctx context.Context, user *model.User, patient *model.Patient) error
		CreateWithDoctor(ctx context.Context, user *model.User, doctor *model.Doctor, specializationIDs []int64) error
		CreateWithAdmin(ctx context.Context, user *model.User, admin *model.Administrator) error
	}

	PatientRepository interface {
		Get(ctx context.Context, id int64) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID int64) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		// Deactivate detaches the login account, cancels every
		// requested/scheduled appointment and deletes the user row in
		// one transaction. The clinical history is retained.
		Deactivate(ctx context.Context, patientID, userID int64) (bool, error)
	}

	DoctorRepository interface {
		Get(ctx context.Context, id int64) (*model.Doctor, error)
		GetByUserID(ctx context.Context, userID int64) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		UpdateSpecializations(ctx context.Context, doctorID int64, specializationIDs []int64) error
		Search(ctx context.Context, specialization string) ([]*model.DoctorSummary, error)
		Deactivate(ctx context.Context, doctorID, userID int64) (bool, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id int64) (*model.Appointment, error)
		GetForDoctor(ctx context.Context, id, doctorID int64) (*model.Appointment, error)
		GetForPatient(ctx context.Context, id, patientID int64) (*model.Appointment, error)
		// UpdateDate moves the appointment and writes the resulting
		// status under the same guard as UpdateStatus.
		UpdateDate(ctx context.Context, id int64, date time.Time, from, to model.AppointmentStatus) (bool, error)
		// UpdateStatus is a compare-and-swap write: it succeeds only if
		// the row still holds the expected current status, so two
		// concurrent transitions cannot both win.
		UpdateStatus(ctx context.Context, id int64, from, to model.AppointmentStatus) (bool, error)
		ListByDoctor(ctx context.Context, doctorID int64, status model.AppointmentStatus) ([]*model.AppointmentWithPatient, error)
		ListByPatient(ctx context.Context, patientID int64) ([]*model.AppointmentWithDoctor, error)
	}

	ScheduleRepository interface {
		Create(ctx context.Context, schedule *model.DoctorSchedule) error
		Get(ctx context.Context, id int64) (*model.DoctorSchedule, error)
		GetForDoctor(ctx context.Context, id, doctorID int64) (*model.DoctorSchedule, error)
		UpdateWindow(ctx context.Context, schedule *model.DoctorSchedule) error
		UpdateStatus(ctx context.Context, id int64, from, to model.ScheduleStatus) (bool, error)
		ListByDoctor(ctx context.Context, doctorID int64) ([]*model.DoctorSchedule, error)
		ListWithDoctor(ctx context.Context, doctorID int64) ([]*model.ScheduleWithDoctor, error)
		// HasActiveWindow is the sole conflict predicate used by the
		// appointment engine: date inside [start, end] of any window
		// whose status is Scheduled, bounds inclusive.
		HasActiveWindow(ctx context.Context, doctorID int64, date time.Time) (bool, error)
		HasOverlap(ctx context.Context, doctorID int64, start, end time.Time) (bool, error)
	}

	MedicalRecordRepository interface {
		Get(ctx context.Context, id int64) (*model.MedicalRecord, error)
		GetForDoctor(ctx context.Context, id, doctorID, patientID int64) (*model.MedicalRecord, error)
		Update(ctx context.Context, record *model.MedicalRecord) error
		ListHistoryByPatient(ctx context.Context, patientID int64) ([]*model.PatientMedicalRecord, error)
		ListTestDetailsByPatient(ctx context.Context, patientID int64) ([]*model.PatientTestDetail, error)
		ListPrescriptionsByPatient(ctx context.Context, patientID int64) ([]*model.Prescription, error)
	}

	// ConsultationRepository persists the consultation aggregate in a
	// single transaction: record, test joins, prescriptions, billing,
	// billing-ID back-fill and the Scheduled→Completed appointment flip.
	// Returns false without writing anything when the appointment was
	// concurrently moved out of Scheduled.
	ConsultationRepository interface {
		Save(ctx context.Context, consultation *model.Consultation) (bool, error)
	}

	BillingRepository interface {
		Get(ctx context.Context, id int64) (*model.Billing, error)
		GetForDoctor(ctx context.Context, id, doctorID int64) (*model.Billing, error)
		MarkPaid(ctx context.Context, id int64) (bool, error)
		ListAll(ctx context.Context) ([]*model.BillingWithNames, error)
		ListByDoctor(ctx context.Context, doctorID int64) ([]*model.BillingWithNames, error)
		ListByPatient(ctx context.Context, patientID int64) ([]*model.BillingWithNames, error)
	}

	CatalogRepository interface {
		ListTests(ctx context.Context) ([]*model.Test, error)
		GetTestsByIDs(ctx context.Context, ids []int64) ([]*model.Test, error)
		CreateTest(ctx context.Context, test *model.Test) error
		UpdateTest(ctx context.Context, test *model.Test) error
		GetTest(ctx context.Context, id int64) (*model.Test, error)
		ListMedications(ctx context.Context) ([]*model.Medication, error)
		GetMedication(ctx context.Context, id int64) (*model.Medication, error)
		CreateMedication(ctx context.Context, medication *model.Medication) error
		UpdateMedication(ctx context.Context, medication *model.Medication) error
		ListSpecializations(ctx context.Context) ([]*model.Specialization, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filters map[string]interface{}) ([]*model.AuditLog, error)
		Cleanup(ctx context.Context, before time.Time) (int64, error)
	}

	// TokenRevocationStore tracks revoked token IDs until their natural
	// expiry; backed by Redis.
	TokenRevocationStore interface {
		Revoke(ctx context.Context, tokenID string, until time.Time) error
		IsRevoked(ctx context.Context, tokenID string) (bool, error)
	}
)
