package http

import (
	"context"
	"net/http"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/internal/middleware"
	"anoa.com/bragboard/internal/modules/report/dto"
	reportService "anoa.com/bragboard/internal/modules/report/service"
	"anoa.com/bragboard/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportHandler struct {
	service reportService.ReportService
}

func NewReportHandler(service reportService.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Create(c *gin.Context) {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": res})
}

func (h *ReportHandler) ListPending(c *gin.Context) {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	reports, err := h.service.ListPending(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": reports})
}

// Dismiss handles DELETE /reports/:id. The report is kept as dismissed.
func (h *ReportHandler) Dismiss(c *gin.Context) {
	h.resolve(c, h.service.Dismiss)
}

func (h *ReportHandler) DeleteContent(c *gin.Context) {
	h.resolve(c, h.service.DeleteContent)
}

func (h *ReportHandler) resolve(c *gin.Context, action func(ctx context.Context, actor entity.Actor, id uuid.UUID) (*dto.ReportResponse, error)) {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := action(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
