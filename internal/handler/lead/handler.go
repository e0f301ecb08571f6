package lead

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-directory/internal/handler"
	"github.com/jwalitptl/clinic-directory/internal/model"
	leadService "github.com/jwalitptl/clinic-directory/internal/service/lead"
)

type Handler struct {
	service leadService.LeadServicer
	limits  []gin.HandlerFunc
}

func NewHandler(service leadService.LeadServicer, limits ...gin.HandlerFunc) *Handler {
	return &Handler{service: service, limits: limits}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/leads/partner", handler.Chain(h.limits, h.CreatePartnerLead)...)
}

func (h *Handler) CreatePartnerLead(c *gin.Context) {
	var req model.CreatePartnerLeadRequest
	if !handler.Bind(c, &req) {
		return
	}

	lead, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(lead))
}
