package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-directory/internal/handler"
	"github.com/jwalitptl/clinic-directory/internal/model"
	patientService "github.com/jwalitptl/clinic-directory/internal/service/patient"
	apperrors "github.com/jwalitptl/clinic-directory/pkg/errors"
)

// Handler serves /patient/*. Routes expect an authenticated patient.
type Handler struct {
	service patientService.PatientServicer
}

func NewHandler(service patientService.PatientServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patient")
	{
		patients.GET("/requests", h.ListRequests)
		patients.POST("/requests", h.CreateRequest)
		patients.POST("/reviews", h.CreateReview)
		patients.POST("/reports", h.CreateReport)
	}
}

func patientID(c *gin.Context) (uuid.UUID, bool) {
	p, ok := handler.Principal(c)
	if !ok {
		return uuid.Nil, false
	}
	if p.Role != model.RolePatient {
		handler.RespondError(c, apperrors.Forbidden("patients only"))
		return uuid.Nil, false
	}
	return p.UserID, true
}

func (h *Handler) ListRequests(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}

	requests, err := h.service.ListRequests(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(requests))
}

func (h *Handler) CreateRequest(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}
	var req model.PatientBookingRequest
	if !handler.Bind(c, &req) {
		return
	}

	booking, err := h.service.CreateRequest(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(booking))
}

func (h *Handler) CreateReview(c *gin.Context) {
	id, ok := patientID(c)
	if !ok {
		return
	}
	var req model.CreateReviewRequest
	if !handler.Bind(c, &req) {
		return
	}

	review, err := h.service.CreateReview(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(review))
}

func (h *Handler) CreateReport(c *gin.Context) {
	if _, ok := patientID(c); !ok {
		return
	}
	var req model.PatientReportRequest
	if !handler.Bind(c, &req) {
		return
	}
	clinicID, err := uuid.Parse(req.ClinicID)
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest("invalid clinic_id", err))
		return
	}

	report, err := h.service.CreateReport(c.Request.Context(), clinicID, &req.CreateReportRequest)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(report))
}
