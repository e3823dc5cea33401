package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/service/appointment"
	"github.com/clinicore/clinic-api/internal/service/audit"
	"github.com/clinicore/clinic-api/internal/service/billing"
	"github.com/clinicore/clinic-api/internal/service/catalog"
	"github.com/clinicore/clinic-api/internal/service/doctor"
	"github.com/clinicore/clinic-api/internal/service/patient"
	"github.com/clinicore/clinic-api/internal/service/schedule"
	"github.com/clinicore/clinic-api/internal/service/user"
)

// Handler serves the administrative API: staff onboarding, profile
// management, appointment oversight, catalogs and the audit trail.
type Handler struct {
	userService        *user.Service
	patientService     *patient.Service
	doctorService      *doctor.Service
	appointmentService *appointment.Service
	scheduleService    *schedule.Service
	billingService     *billing.Service
	catalogService     *catalog.Service
	auditService       *audit.Service
}

func NewHandler(
	userService *user.Service,
	patientService *patient.Service,
	doctorService *doctor.Service,
	appointmentService *appointment.Service,
	scheduleService *schedule.Service,
	billingService *billing.Service,
	catalogService *catalog.Service,
	auditService *audit.Service,
) *Handler {
	return &Handler{
		userService:        userService,
		patientService:     patientService,
		doctorService:      doctorService,
		appointmentService: appointmentService,
		scheduleService:    scheduleService,
		billingService:     billingService,
		catalogService:     catalogService,
		auditService:       auditService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authmw *middleware.AuthMiddleware) {
	group := r.Group("/admin", authmw.Authenticate(), authmw.RequireRole(model.RoleAdmin))
	{
		group.POST("/doctors", h.RegisterDoctor)
		group.POST("/admins", h.RegisterAdmin)

		group.GET("/patients/:id", h.GetPatient)
		group.PUT("/patients/:id", h.UpdatePatient)
		group.DELETE("/patients/:id", h.DeactivatePatient)

		group.GET("/doctors/:id", h.GetDoctor)
		group.PUT("/doctors/:id", h.UpdateDoctor)
		group.DELETE("/doctors/:id", h.DeactivateDoctor)

		group.GET("/appointments/:id", h.GetAppointment)
		group.PUT("/appointments/:id/cancel", h.CancelAppointment)
		group.PUT("/appointments/:id/reschedule", h.RescheduleAppointment)

		group.GET("/schedules", h.ListSchedules)
		group.PUT("/schedules/:id", h.UpdateSchedule)
		group.PUT("/schedules/:id/cancel", h.CancelSchedule)
		group.PUT("/schedules/:id/complete", h.CompleteSchedule)

		group.GET("/billings", h.ListBillings)
		group.PUT("/billings/:id/pay", h.MarkBillingPaid)

		group.POST("/catalog/tests", h.CreateTest)
		group.PUT("/catalog/tests/:id", h.UpdateTest)
		group.POST("/catalog/medications", h.CreateMedication)
		group.PUT("/catalog/medications/:id", h.UpdateMedication)

		group.GET("/audit", h.ListAuditLogs)
	}
}

func (h *Handler) RegisterDoctor(c *gin.Context) {
	var req model.RegisterDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	doc, err := h.userService.RegisterDoctor(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(doc))
}

func (h *Handler) RegisterAdmin(c *gin.Context) {
	var req model.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	admin, err := h.userService.RegisterAdmin(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(admin))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.patientService.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	p, err := h.patientService.Update(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

// DeactivatePatient removes the patient's login and cancels their open
// appointments; the clinical history stays on file.
func (h *Handler) DeactivatePatient(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	if err := h.patientService.Deactivate(c.Request.Context(), middleware.UserID(c), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "patient deactivated"}))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.doctorService.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doc))
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	doc, err := h.doctorService.Update(c.Request.Context(), middleware.UserID(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doc))
}

func (h *Handler) DeactivateDoctor(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	if err := h.doctorService.Deactivate(c.Request.Context(), middleware.UserID(c), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "doctor deactivated"}))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointmentService.Get(c.Request.Context(), id)
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

	appt, err := h.appointmentService.CancelByAdmin(c.Request.Context(), middleware.UserID(c), id)
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

	appt, err := h.appointmentService.RescheduleByAdmin(c.Request.Context(), middleware.UserID(c), id, req.NewAppointmentDate)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appt))
}

func (h *Handler) ListSchedules(c *gin.Context) {
	var doctorID int64
	if raw := c.Query("doctor_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor_id"))
			return
		}
		doctorID = parsed
	}

	schedules, err := h.scheduleService.ListAll(c.Request.Context(), doctorID)
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

	sched, err := h.scheduleService.UpdateByAdmin(c.Request.Context(), middleware.UserID(c), id, &req)
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

	sched, err := h.scheduleService.CancelByAdmin(c.Request.Context(), middleware.UserID(c), id)
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

	sched, err := h.scheduleService.CompleteByAdmin(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(sched))
}

func (h *Handler) ListBillings(c *gin.Context) {
	billings, err := h.billingService.ListAll(c.Request.Context())
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

	bill, err := h.billingService.MarkPaidByAdmin(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(bill))
}

func (h *Handler) CreateTest(c *gin.Context) {
	var req model.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	test, err := h.catalogService.CreateTest(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(test))
}

func (h *Handler) UpdateTest(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var req model.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	test := &model.Test{ID: id, Name: req.Name, Price: req.Price}
	if err := h.catalogService.UpdateTest(c.Request.Context(), test); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(test))
}

func (h *Handler) CreateMedication(c *gin.Context) {
	var req model.CreateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	medication, err := h.catalogService.CreateMedication(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(medication))
}

func (h *Handler) UpdateMedication(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	var req model.CreateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	medication := &model.Medication{ID: id, Name: req.Name, PricePerUnit: req.PricePerUnit}
	if err := h.catalogService.UpdateMedication(c.Request.Context(), medication); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(medication))
}

func (h *Handler) ListAuditLogs(c *gin.Context) {
	filters := make(map[string]interface{})
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user_id"))
			return
		}
		filters["user_id"] = userID
	}
	if entityType := c.Query("entity_type"); entityType != "" {
		filters["entity_type"] = entityType
	}
	if action := c.Query("action"); action != "" {
		filters["action"] = action
	}

	logs, err := h.auditService.List(c.Request.Context(), filters)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(logs))
}
