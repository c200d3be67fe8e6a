package http

import (
	"net/http"

	"anoa.com/bragboard/internal/middleware"
	"anoa.com/bragboard/internal/modules/feed/dto"
	feedService "anoa.com/bragboard/internal/modules/feed/service"
	"anoa.com/bragboard/pkg/response"
	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	service feedService.FeedService
}

func NewFeedHandler(service feedService.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

// List handles GET /posts?recipient=&department=&date=&sender=&page=&limit=.
func (h *FeedHandler) List(c *gin.Context) {
	viewer, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.FeedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	feed, err := h.service.QueryFeed(c.Request.Context(), viewer, query.Filter())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}
