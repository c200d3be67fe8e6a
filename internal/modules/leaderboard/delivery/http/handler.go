package http

import (
	"net/http"

	"anoa.com/bragboard/internal/middleware"
	"anoa.com/bragboard/internal/modules/leaderboard/dto"
	leaderboardService "anoa.com/bragboard/internal/modules/leaderboard/service"
	"anoa.com/bragboard/pkg/response"
	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	service leaderboardService.LeaderboardService
}

func NewLeaderboardHandler(service leaderboardService.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// Global handles GET /leaderboard/global?limit=N.
func (h *LeaderboardHandler) Global(c *gin.Context) {
	var query dto.LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Global(c.Request.Context(), query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

// Department handles GET /leaderboard/department?department=D&limit=N.
func (h *LeaderboardHandler) Department(c *gin.Context) {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.LeaderboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Department(c.Request.Context(), actor, query.Department, query.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *LeaderboardHandler) Me(c *gin.Context) {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.Me(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
