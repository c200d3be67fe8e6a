package http

import (
	"net/http"

	"anoa.com/bragboard/internal/middleware"
	"anoa.com/bragboard/internal/modules/reaction/dto"
	reactionService "anoa.com/bragboard/internal/modules/reaction/service"
	"anoa.com/bragboard/pkg/response"
	"github.com/gin-gonic/gin"
)

type ReactionHandler struct {
	service reactionService.ReactionService
}

func NewReactionHandler(service reactionService.ReactionService) *ReactionHandler {
	return &ReactionHandler{service: service}
}

// React handles POST /posts/:id/react?type=like|clap|star.
func (h *ReactionHandler) React(c *gin.Context) {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	shoutoutID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.ReactionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.SetReaction(c.Request.Context(), actor, shoutoutID, query.Type)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *ReactionHandler) Unreact(c *gin.Context) {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	shoutoutID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.RemoveReaction(c.Request.Context(), actor, shoutoutID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *ReactionHandler) GetReactions(c *gin.Context) {
	shoutoutID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	counts, err := h.service.CountsFor(c.Request.Context(), shoutoutID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": counts})
}
