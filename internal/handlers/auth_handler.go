package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-service/internal/models"
	"crm-service/internal/services"
)

// AuthHandler handles HTTP requests for authentication and org membership
type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register creates a new organization and its admin user
// @Summary Register a new organization
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration"
// @Success 201 {object} models.AuthResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login authenticates a user
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user's profile
// @Summary Current user profile
// @Tags Auth
// @Produce json
// @Success 200 {object} models.AuthResponse
// @Security BearerAuth
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	resp, err := h.service.Me(c.Request.Context(), caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListUsers lists the members of the caller's organization
// @Summary List organization users
// @Tags Users
// @Produce json
// @Param orgId query string false "Organization ID (platform callers only)"
// @Success 200 {array} models.UserSummary
// @Security BearerAuth
// @Router /api/v1/users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	orgID, ok := orgIDQuery(c)
	if !ok {
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), caller, orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser invites a user into the caller's organization
// @Summary Create organization user
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "New user"
// @Success 201 {object} models.UserSummary
// @Security BearerAuth
// @Router /api/v1/users [post]
func (h *AuthHandler) CreateUser(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
