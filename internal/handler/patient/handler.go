package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/service/appointment"
	"github.com/clinicore/clinic-api/internal/service/billing"
	"github.com/clinicore/clinic-api/internal/service/doctor"
	"github.com/clinicore/clinic-api/internal/service/patient"
	"github.com/clinicore/clinic-api/internal/service/schedule"
)

// Handler serves the patient-facing API. Every route is scoped to the
// authenticated patient; no patient ID is ever taken from the request.
type Handler struct {
	patientService     *patient.Service
	appointmentService *appointment.Service
	doctorService      *doctor.Service
	scheduleService    *schedule.Service
	billingService     *billing.Service
}

func NewHandler(
	patientService *patient.Service,
	appointmentService *appointment.Service,
	doctorService *doctor.Service,
	scheduleService *schedule.Service,
	billingService *billing.Service,
) *Handler {
	return &Handler{
		patientService:     patientService,
		appointmentService: appointmentService,
		doctorService:      doctorService,
		scheduleService:    scheduleService,
		billingService:     billingService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authmw *middleware.AuthMiddleware) {
	group := r.Group("/patient", authmw.Authenticate(), authmw.RequireRole(model.RolePatient))
	{
		group.GET("/profile", h.GetProfile)
		group.PUT("/profile", h.UpdateProfile)

		group.GET("/history", h.ListHistory)
		group.GET("/tests", h.ListTests)
		group.GET("/prescriptions", h.ListPrescriptions)
		group.GET("/billings", h.ListBillings)

		group.GET("/doctors", h.SearchDoctors)
		group.GET("/doctors/:id/schedules", h.ListDoctorSchedules)

		group.POST("/appointments", h.BookAppointment)
		group.GET("/appointments", h.ListAppointments)
		group.PUT("/appointments/:id/cancel", h.CancelAppointment)
		group.PUT("/appointments/:id/reschedule", h.RescheduleAppointment)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	info, err := h.patientService.GetPersonalInfo(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(info))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdatePersonalInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	info, err := h.patientService.UpdatePersonalInfo(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(info))
}

func (h *Handler) ListHistory(c *gin.Context) {
	history, err := h.patientService.ListHistory(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(history))
}

func (h *Handler) ListTests(c *gin.Context) {
	tests, err := h.patientService.ListTestDetails(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(tests))
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	prescriptions, err := h.patientService.ListPrescriptions(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescriptions))
}

func (h *Handler) ListBillings(c *gin.Context) {
	billings, err := h.billingService.ListForPatient(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(billings))
}

func (h *Handler) SearchDoctors(c *gin.Context) {
	doctors, err := h.doctorService.Search(c.Request.Context(), c.Query("specialization"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

// ListDoctorSchedules shows a doctor's availability windows so the
// patient can pick a bookable date.
func (h *Handler) ListDoctorSchedules(c *gin.Context) {
	doctorID, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	schedules, err := h.scheduleService.ListAll(c.Request.Context(), doctorID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(schedules))
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	appt, err := h.appointmentService.Request(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appt))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.appointmentService.ListForPatient(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := handler.IDParam(c, "id")
	if !ok {
		return
	}

	appt, err := h.appointmentService.CancelByPatient(c.Request.Context(), middleware.UserID(c), id)
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

	appt, err := h.appointmentService.RescheduleByPatient(c.Request.Context(), middleware.UserID(c), id, req.NewAppointmentDate)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appt))
}
