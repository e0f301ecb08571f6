package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-directory/internal/handler"
	"github.com/jwalitptl/clinic-directory/internal/model"
	clinicService "github.com/jwalitptl/clinic-directory/internal/service/clinic"
	draftService "github.com/jwalitptl/clinic-directory/internal/service/draft"
)

// Handler is the admin clinic editor.
type Handler struct {
	service clinicService.ClinicServicer
	drafts  draftService.DraftServicer
}

func NewHandler(service clinicService.ClinicServicer, drafts draftService.DraftServicer) *Handler {
	return &Handler{service: service, drafts: drafts}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/admin/clinics")
	{
		clinics.POST("", h.CreateClinic)
		clinics.GET("", h.ListClinics)
		clinics.GET("/:id", h.GetClinic)
		clinics.PATCH("/:id", h.UpdateClinic)
		clinics.DELETE("/:id", h.DeleteClinic)
		clinics.GET("/:id/preview", h.PreviewClinic)
		clinics.POST("/:id/accreditations", h.AddAccreditation)
	}
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req model.CreateClinicRequest
	if !handler.Bind(c, &req) {
		return
	}

	clinic, err := h.service.CreateClinic(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(clinic))
}

func (h *Handler) ListClinics(c *gin.Context) {
	var filter model.AdminClinicFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid query"))
		return
	}

	page, err := h.service.ListClinics(c.Request.Context(), &filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(page))
}

func (h *Handler) GetClinic(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	clinic, err := h.service.GetClinic(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

// UpdateClinic applies a partial update: absent fields are untouched, empty
// values clear the column.
func (h *Handler) UpdateClinic(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	p, ok := handler.BindPatch(c, clinicService.UpdateSchema)
	if !ok {
		return
	}

	clinic, err := h.service.UpdateClinic(c.Request.Context(), id, p)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) DeleteClinic(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteClinic(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) PreviewClinic(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	preview, err := h.drafts.Preview(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(preview))
}

func (h *Handler) AddAccreditation(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.CreateAccreditationRequest
	if !handler.Bind(c, &req) {
		return
	}

	a, err := h.service.AddAccreditation(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(a))
}
