package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/service/catalog"
)

// Handler serves the read side of the test, medication and
// specialization catalogs to any authenticated user.
type Handler struct {
	catalogService *catalog.Service
}

func NewHandler(catalogService *catalog.Service) *Handler {
	return &Handler{catalogService: catalogService}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authmw *middleware.AuthMiddleware) {
	group := r.Group("/catalog", authmw.Authenticate())
	{
		group.GET("/tests", h.ListTests)
		group.GET("/medications", h.ListMedications)
		group.GET("/specializations", h.ListSpecializations)
	}
}

func (h *Handler) ListTests(c *gin.Context) {
	tests, err := h.catalogService.ListTests(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(tests))
}

func (h *Handler) ListMedications(c *gin.Context) {
	medications, err := h.catalogService.ListMedications(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(medications))
}

func (h *Handler) ListSpecializations(c *gin.Context) {
	specializations, err := h.catalogService.ListSpecializations(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(specializations))
}
