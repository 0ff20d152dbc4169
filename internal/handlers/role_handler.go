package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-service/internal/models"
	"crm-service/internal/services"
)

// RoleHandler handles HTTP requests for roles and the permission catalog
type RoleHandler struct {
	service *services.RoleService
}

func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// ListRoles lists the roles visible to the caller
// @Summary List roles
// @Tags Roles
// @Produce json
// @Param orgId query string false "Organization ID (platform callers only)"
// @Success 200 {array} models.Role
// @Security BearerAuth
// @Router /api/v1/roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	orgID, ok := orgIDQuery(c)
	if !ok {
		return
	}

	roles, err := h.service.ListRoles(c.Request.Context(), caller, orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

// ListPermissions returns the permission catalog
// @Summary List permissions
// @Tags Roles
// @Produce json
// @Success 200 {array} models.Permission
// @Security BearerAuth
// @Router /api/v1/roles/permissions [get]
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	perms, err := h.service.ListPermissions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}

// CreateRole creates a custom role
// @Summary Create role
// @Tags Roles
// @Accept json
// @Produce json
// @Param request body models.CreateRoleRequest true "New role"
// @Success 201 {object} models.Role
// @Security BearerAuth
// @Router /api/v1/roles [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req models.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.service.CreateRole(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

// UpdateRole replaces a role's fields and permission set
// @Summary Update role
// @Tags Roles
// @Accept json
// @Produce json
// @Param id path string true "Role ID"
// @Param request body models.UpdateRoleRequest true "Role"
// @Success 200 {object} models.Role
// @Security BearerAuth
// @Router /api/v1/roles/{id} [put]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role, err := h.service.UpdateRole(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

// DeleteRole removes an unused custom role
// @Summary Delete role
// @Tags Roles
// @Produce json
// @Param id path string true "Role ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/roles/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteRole(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role deleted"})
}

// ReassignRole moves a user onto a different role
// @Summary Reassign user role
// @Tags Roles
// @Accept json
// @Produce json
// @Param request body models.ReassignRoleRequest true "Assignment"
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /api/v1/roles/reassign [post]
func (h *RoleHandler) ReassignRole(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req models.ReassignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.ReassignUserRole(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
