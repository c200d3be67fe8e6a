package http

import (
	"net/http"

	"anoa.com/bragboard/internal/middleware"
	searchService "anoa.com/bragboard/internal/modules/search/service"
	"anoa.com/bragboard/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service searchService.SearchService
}

func NewSearchHandler(service searchService.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Token hands out a fresh tenant token for client-side shoutout search.
func (h *SearchHandler) Token(c *gin.Context) {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	token, err := h.service.TokenFor(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"search_token": token, "index": searchService.ShoutoutIndex}})
}
