// controller/admin_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/grantflow/model"
	"github.com/dev-mohitbeniwal/grantflow/service"
	"github.com/dev-mohitbeniwal/grantflow/util"
)

type AdminController struct {
	adminService service.IAdminService
}

func NewAdminController(adminService service.IAdminService) *AdminController {
	return &AdminController{
		adminService: adminService,
	}
}

func (ac *AdminController) RegisterRoutes(r *gin.RouterGroup) {
	admins := r.Group("/admins")
	{
		admins.GET("", ac.ListAdmins)
		admins.PUT("/:email", ac.AssignAdminRole)
		admins.DELETE("/:email", ac.RemoveAdminRole)
	}
}

func (ac *AdminController) ListAdmins(c *gin.Context) {
	if _, err := util.GetActorFromContext(c); err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	admins, err := ac.adminService.ListAdmins(c.Request.Context())
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, admins)
}

func (ac *AdminController) AssignAdminRole(c *gin.Context) {
	actor, err := util.GetActorFromContext(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}
	var in model.AssignAdminInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid admin role data", err)
		return
	}

	role, err := ac.adminService.AssignAdminRole(c.Request.Context(), actor, c.Param("email"), in)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, role)
}

func (ac *AdminController) RemoveAdminRole(c *gin.Context) {
	actor, err := util.GetActorFromContext(c)
	if err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	if err := ac.adminService.RemoveAdminRole(c.Request.Context(), actor, c.Param("email")); err != nil {
		util.RespondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Admin role removed successfully"})
}
