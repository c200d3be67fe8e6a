package http

import (
	"net/http"

	"anoa.com/bragboard/internal/middleware"
	"anoa.com/bragboard/internal/modules/admin/dto"
	adminService "anoa.com/bragboard/internal/modules/admin/service"
	"anoa.com/bragboard/pkg/response"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService adminService.AdminService
}

func NewAdminHandler(adminService adminService.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stats, err := h.adminService.Stats(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (h *AdminHandler) UpdateRole(c *gin.Context) {
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

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.adminService.UpdateRole(c.Request.Context(), actor, id, req.Role)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}
