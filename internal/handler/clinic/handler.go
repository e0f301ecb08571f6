package clinic

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-directory/internal/handler"
	"github.com/jwalitptl/clinic-directory/internal/model"
	bookingService "github.com/jwalitptl/clinic-directory/internal/service/booking"
	clinicService "github.com/jwalitptl/clinic-directory/internal/service/clinic"
	patientService "github.com/jwalitptl/clinic-directory/internal/service/patient"
)

// Handler serves the public catalog.
type Handler struct {
	service  clinicService.ClinicServicer
	bookings bookingService.BookingServicer
	reports  patientService.PatientServicer
	writes   []gin.HandlerFunc
}

// NewHandler builds the public handler. writeLimits run before the public
// write endpoints (requests and reports).
func NewHandler(
	service clinicService.ClinicServicer,
	bookings bookingService.BookingServicer,
	reports patientService.PatientServicer,
	writeLimits ...gin.HandlerFunc,
) *Handler {
	return &Handler{
		service:  service,
		bookings: bookings,
		reports:  reports,
		writes:   writeLimits,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/clinics")
	{
		clinics.GET("", h.ListClinics)
		clinics.GET("/:slug", h.GetClinic)
		clinics.POST("/:slug/requests", handler.Chain(h.writes, h.CreateRequest)...)
		clinics.POST("/:slug/reports", handler.Chain(h.writes, h.CreateReport)...)
	}
}

func (h *Handler) ListClinics(c *gin.Context) {
	var filter model.ClinicFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid query"))
		return
	}

	page, err := h.service.ListPublic(c.Request.Context(), &filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(page))
}

func (h *Handler) GetClinic(c *gin.Context) {
	detail, err := h.service.GetPublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail))
}

func (h *Handler) CreateRequest(c *gin.Context) {
	var req model.CreateBookingRequest
	if !handler.Bind(c, &req) {
		return
	}

	detail, err := h.service.GetPublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), detail.Clinic.ID, nil, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(booking))
}

func (h *Handler) CreateReport(c *gin.Context) {
	var req model.CreateReportRequest
	if !handler.Bind(c, &req) {
		return
	}

	detail, err := h.service.GetPublicBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	report, err := h.reports.CreateReport(c.Request.Context(), detail.Clinic.ID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(report))
}
