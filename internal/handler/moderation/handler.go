package moderation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-directory/internal/handler"
	"github.com/jwalitptl/clinic-directory/internal/model"
	moderationService "github.com/jwalitptl/clinic-directory/internal/service/moderation"
)

type Handler struct {
	service moderationService.ModerationServicer
}

func NewHandler(service moderationService.ModerationServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	queue := r.Group("/admin/moderation")
	{
		queue.GET("", h.ListQueue)
		queue.GET("/:clinic_id", h.GetItem)
		queue.POST("/:clinic_id/approve", h.Approve)
		queue.POST("/:clinic_id/reject", h.Reject)
	}
}

type rejectRequest struct {
	Reason string `json:"reason" form:"reason" binding:"required,max=1000"`
}

func (h *Handler) ListQueue(c *gin.Context) {
	status := model.DraftStatus(c.Query("status"))

	items, err := h.service.ListQueue(c.Request.Context(), status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}

func (h *Handler) GetItem(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "clinic_id")
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail))
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "clinic_id")
	if !ok {
		return
	}

	item, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(item))
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "clinic_id")
	if !ok {
		return
	}
	var req rejectRequest
	if !handler.Bind(c, &req) {
		return
	}

	item, err := h.service.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(item))
}
