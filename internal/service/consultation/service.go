package consultation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/repository"
	"github.com/clinicore/clinic-api/internal/service/audit"
	"github.com/clinicore/clinic-api/internal/service/catalog"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

// Service finalizes scheduled appointments. Conduct prices the ordered
// tests and prescriptions, writes the record and the bill in a single
// transaction and flips the appointment to completed.
type Service struct {
	consultations repository.ConsultationRepository
	records       repository.MedicalRecordRepository
	appointments  repository.AppointmentRepository
	doctors       repository.DoctorRepository
	catalogSvc    *catalog.Service
	auditor       *audit.Service
	metrics       *metrics.Metrics
	logger        *zerolog.Logger
}

func NewService(
	consultations repository.ConsultationRepository,
	records repository.MedicalRecordRepository,
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	catalogSvc *catalog.Service,
	auditor *audit.Service,
	m *metrics.Metrics,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		consultations: consultations,
		records:       records,
		appointments:  appointments,
		doctors:       doctors,
		catalogSvc:    catalogSvc,
		auditor:       auditor,
		metrics:       m,
		logger:        logger,
	}
}

// Conduct closes out a scheduled appointment on the calling doctor's
// calendar. Prescriptions referencing a medication that no longer
// exists are dropped rather than failing the whole consultation.
func (s *Service) Conduct(ctx context.Context, userID, appointmentID int64, req *model.ConductConsultationRequest) (*model.Consultation, error) {
	start := time.Now()

	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}

	appointment, err := s.appointments.GetForDoctor(ctx, appointmentID, doctor.ID)
	if err != nil {
		return nil, notFoundOr("appointment", err)
	}
	if appointment.Status != model.AppointmentStatusScheduled {
		return nil, apperrors.InvalidTransition("only a scheduled appointment can be consulted")
	}

	tests, err := s.catalogSvc.GetTestsByIDs(ctx, req.TestIDs)
	if err != nil {
		return nil, err
	}
	var testsTotal float64
	testIDs := make([]int64, 0, len(tests))
	for _, test := range tests {
		testsTotal += test.Price
		testIDs = append(testIDs, test.ID)
	}

	prescriptions := make([]*model.Prescription, 0, len(req.Prescriptions))
	var medicationsTotal float64
	for _, input := range req.Prescriptions {
		medication, err := s.catalogSvc.GetMedication(ctx, input.MedicationID)
		if err != nil {
			if apperrors.IsCode(err, apperrors.ErrNotFound) {
				s.logger.Warn().Int64("medication_id", input.MedicationID).Msg("skipping prescription for unknown medication")
				continue
			}
			return nil, err
		}

		total := medication.PricePerUnit * float64(input.Quantity)
		medicationsTotal += total
		prescriptions = append(prescriptions, &model.Prescription{
			MedicationID:   medication.ID,
			MedicationName: medication.Name,
			Dosage:         input.Dosage,
			DurationDays:   input.DurationDays,
			Quantity:       input.Quantity,
			TotalPrice:     total,
		})
	}

	consultation := &model.Consultation{
		Record: &model.MedicalRecord{
			AppointmentID:       appointment.ID,
			DoctorID:            doctor.ID,
			PatientID:           appointment.PatientID,
			Symptoms:            req.Symptoms,
			PhysicalExamination: req.PhysicalExamination,
			TreatmentPlan:       req.TreatmentPlan,
			FollowUpDate:        req.FollowUpDate,
			TotalPrice:          testsTotal + medicationsTotal,
		},
		TestIDs:       testIDs,
		Prescriptions: prescriptions,
		Billing: &model.Billing{
			PatientID:             appointment.PatientID,
			DoctorID:              doctor.ID,
			ConsultationFee:       req.ConsultationFee,
			TotalTestsPrice:       testsTotal,
			TotalMedicationsPrice: medicationsTotal,
			GrandTotal:            req.ConsultationFee + testsTotal + medicationsTotal,
			Status:                model.BillingStatusPending,
		},
	}

	ok, err := s.consultations.Save(ctx, consultation)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, apperrors.InvalidTransition("appointment is no longer scheduled")
	}

	s.metrics.ConsultationsTotal.Inc()
	s.metrics.ConsultationLatency.Observe(time.Since(start).Seconds())
	if err := s.auditor.Log(ctx, userID, "conduct", "consultation", consultation.Record.ID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}
	return consultation, nil
}

// GetRecord returns a record the calling doctor wrote for the given
// patient.
func (s *Service) GetRecord(ctx context.Context, userID, recordID, patientID int64) (*model.MedicalRecord, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}
	record, err := s.records.GetForDoctor(ctx, recordID, doctor.ID, patientID)
	if err != nil {
		return nil, notFoundOr("medical record", err)
	}
	return record, nil
}

// UpdateRecord amends the clinical fields of a record the calling
// doctor wrote. Pricing and billing are never touched here.
func (s *Service) UpdateRecord(ctx context.Context, userID, recordID, patientID int64, req *model.UpdateMedicalRecordRequest) (*model.MedicalRecord, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr("doctor", err)
	}
	record, err := s.records.GetForDoctor(ctx, recordID, doctor.ID, patientID)
	if err != nil {
		return nil, notFoundOr("medical record", err)
	}

	if req.Symptoms != nil {
		record.Symptoms = *req.Symptoms
	}
	if req.PhysicalExamination != nil {
		record.PhysicalExamination = *req.PhysicalExamination
	}
	if req.TreatmentPlan != nil {
		record.TreatmentPlan = *req.TreatmentPlan
	}
	if req.FollowUpDate != nil {
		record.FollowUpDate = req.FollowUpDate
	}

	if err := s.records.Update(ctx, record); err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.auditor.Log(ctx, userID, "update", "medical_record", record.ID, nil); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write audit log")
	}
	return record, nil
}

func notFoundOr(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}
