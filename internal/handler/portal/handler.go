// Package portal serves the clinic-owner area: the profile draft wizard and
// the booking table. The clinic is always taken from the caller's token.
package portal

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-directory/internal/handler"
	"github.com/jwalitptl/clinic-directory/internal/model"
	bookingService "github.com/jwalitptl/clinic-directory/internal/service/booking"
	draftService "github.com/jwalitptl/clinic-directory/internal/service/draft"
)

type Handler struct {
	drafts   draftService.DraftServicer
	bookings bookingService.BookingServicer
}

func NewHandler(drafts draftService.DraftServicer, bookings bookingService.BookingServicer) *Handler {
	return &Handler{drafts: drafts, bookings: bookings}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	portal := r.Group("/portal")
	{
		portal.GET("/draft", h.GetDraft)
		portal.PATCH("/draft", h.SaveDraft)
		portal.POST("/draft/submit", h.SubmitDraft)
		portal.GET("/draft/preview", h.PreviewDraft)

		portal.GET("/bookings", h.ListBookings)
		portal.PATCH("/bookings/:id", h.UpdateBookingStatus)
	}
}

func (h *Handler) GetDraft(c *gin.Context) {
	clinicID, ok := handler.ClinicScope(c)
	if !ok {
		return
	}

	d, err := h.drafts.Get(c.Request.Context(), clinicID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(d))
}

func (h *Handler) SaveDraft(c *gin.Context) {
	clinicID, ok := handler.ClinicScope(c)
	if !ok {
		return
	}
	p, ok := handler.BindPatch(c, draftService.Schema)
	if !ok {
		return
	}

	d, err := h.drafts.Save(c.Request.Context(), clinicID, p)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(d))
}

func (h *Handler) SubmitDraft(c *gin.Context) {
	clinicID, ok := handler.ClinicScope(c)
	if !ok {
		return
	}

	d, err := h.drafts.Submit(c.Request.Context(), clinicID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(d))
}

func (h *Handler) PreviewDraft(c *gin.Context) {
	clinicID, ok := handler.ClinicScope(c)
	if !ok {
		return
	}

	preview, err := h.drafts.Preview(c.Request.Context(), clinicID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(preview))
}

func (h *Handler) ListBookings(c *gin.Context) {
	clinicID, ok := handler.ClinicScope(c)
	if !ok {
		return
	}
	var filter model.BookingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid query"))
		return
	}

	page, err := h.bookings.List(c.Request.Context(), clinicID, &filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(page))
}

func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	clinicID, ok := handler.ClinicScope(c)
	if !ok {
		return
	}
	bookingID, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateBookingStatusRequest
	if !handler.Bind(c, &req) {
		return
	}

	booking, err := h.bookings.UpdateStatus(c.Request.Context(), clinicID, bookingID, req.Status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(booking))
}
