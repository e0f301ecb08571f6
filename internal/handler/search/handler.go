package search

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-directory/internal/handler"
	searchService "github.com/jwalitptl/clinic-directory/internal/service/search"
)

type Handler struct {
	service searchService.SearchServicer
}

func NewHandler(service searchService.SearchServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/search", h.Search)
}

func (h *Handler) Search(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("limit must be a number"))
			return
		}
		limit = n
	}

	results, err := h.service.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(results))
}
