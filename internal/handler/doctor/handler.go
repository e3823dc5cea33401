package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/service/appointment"
	"github.com/clinicore/clinic-api/internal/service/billing"
	"github.com/clinicore/clinic-api/internal/service/consultation"
	"github.com/clinicore/clinic-api/internal/service/doctor"
	"github.com/clinicore/clinic-api/internal/service/schedule"
)

// Handler serves the doctor-facing API. Every route is scoped to the
// authenticated doctor's own calendar, patients and bills.
type Handler struct {
	doctorService       *doctor.Service
	appointmentService  *appointment.Service
	scheduleService     *schedule.Service
	consultationService *consultation.Service
	billingService      *billing.Service
}

func NewHandler(
	doctorService *doctor.Service,
	appointmentService *appointment.Service,
	scheduleService *schedule.Service,
	consultationService *consultation.Service,
	billingService *billing.Service,
) *Handler {
	return &Handler{
		doctorService:       doctorService,
		appointmentService:  appointmentService,
		scheduleService:     scheduleService,
		consultationService: consultationService,
		billingService:      billingService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authmw *middleware.AuthMiddleware) {
	group := r.Group("/doctor", authmw.Authenticate(), authmw.RequireRole(model.RoleDoctor))
	{
		group.GET("/profile", h.GetProfile)

		group.GET("/appointments", h.ListAppointments)
		group.PUT("/appointments/:id/approve", h.ApproveAppointment)
		group.PUT("/appointments/:id/cancel", h.CancelAppointment)
		group.PUT("/appointments/:id/reschedule", h.RescheduleAppointment)
		group.POST("/appointments/:id/consultation", h.ConductConsultation)

		group.GET("/patients/:patientId/records/:id", h.GetMedicalRecord)
		group.PUT("/patients/:patientId/records/:id", h.UpdateMedicalRecord)

		group.POST("/schedules", h.CreateSchedule)
		group.GET("/schedules", h.ListSchedules)
		group.PUT("/schedules/:id", h.UpdateSchedule)
		group.PUT("/schedules/:id/cancel", h.CancelSchedule)
		group.PUT("/schedules/:id/complete", h.CompleteSchedule)

		group.GET("/billings", h.ListBillings)
		group.PUT("/billings/:id/pay", h.MarkBillingPaid)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.doctorService.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	status := model.AppointmentStatus(c.Query("status"))
	appointments, err := h.appointmentService.ListForDoctor(c.Request.Context(), middleware.UserID(c), status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) ApproveAppointment(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointmentService.Approve(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appt))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointmentService.CancelByDoctor(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appt))
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	appt, err := h.appointmentService.RescheduleByDoctor(c.Request.Context(), middleware.UserID(c), id, req.NewAppointmentDate)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appt))
}

// ConductConsultation finalizes a scheduled appointment: it writes the
// medical record, prices the tests and prescriptions and opens a bill.
func (h *Handler) ConductConsultation(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var req model.ConductConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.consultationService.Conduct(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"record":  result.Record,
		"billing": result.Billing,
	}))
}

func (h *Handler) GetMedicalRecord(c *gin.Context) {
	patientID, ok := handler.IDParam(c, "patientId")
	if !ok {
		return
	}
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.consultationService.GetRecord(c.Request.Context(), middleware.UserID(c), id, patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) UpdateMedicalRecord(c *gin.Context) {
	patientID, ok := handler.IDParam(c, "patientId")
	if !ok {
		return
	}
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	record, err := h.consultationService.UpdateRecord(c.Request.Context(), middleware.UserID(c), id, patientID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) CreateSchedule(c *gin.Context) {
	var req model.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	sched, err := h.scheduleService.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(sched))
}

func (h *Handler) ListSchedules(c *gin.Context) {
	schedules, err := h.scheduleService.ListOwn(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(schedules))
}

func (h *Handler) UpdateSchedule(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	sched, err := h.scheduleService.Update(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sched))
}

func (h *Handler) CancelSchedule(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	sched, err := h.scheduleService.Cancel(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sched))
}

func (h *Handler) CompleteSchedule(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	sched, err := h.scheduleService.Complete(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sched))
}

func (h *Handler) ListBillings(c *gin.Context) {
	billings, err := h.billingService.ListForDoctor(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(billings))
}

func (h *Handler) MarkBillingPaid(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	bill, err := h.billingService.MarkPaidByDoctor(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(bill))
}
