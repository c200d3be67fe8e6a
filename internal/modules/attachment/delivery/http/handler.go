package http

import (
	"fmt"
	"net/http"

	"anoa.com/bragboard/internal/middleware"
	attachmentService "anoa.com/bragboard/internal/modules/attachment/service"
	"anoa.com/bragboard/pkg/apperror"
	"anoa.com/bragboard/pkg/response"
	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	service attachmentService.AttachmentService
}

func NewAttachmentHandler(service attachmentService.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, attachmentService.MaxUploadSize+1<<20)
	file, err := c.FormFile("file")
	if err != nil {
		response.ResponseError(c, fmt.Errorf("%w: file is required", apperror.ErrInvalidInput))
		return
	}

	resp, err := h.service.UploadAttachment(c.Request.Context(), actor, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}
