package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm-service/internal/auth"
	"crm-service/internal/middleware"
	"crm-service/internal/repository"
	"crm-service/internal/services"
)

// respondError maps service errors onto HTTP status codes. Tenant misses
// surface as 404 like genuine misses, so callers cannot probe for
// resources in other organizations.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, services.ErrNameConflict),
		errors.Is(err, services.ErrRoleInUse),
		errors.Is(err, services.ErrStageInUse),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrNoOrganization):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal error occurred"})
	}
}

// mustCaller returns the authenticated caller or writes a 401.
func mustCaller(c *gin.Context) (*auth.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	}
	return caller, ok
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// orgIDQuery parses the optional ?orgId= query parameter, used by
// platform callers to pin an organization.
func orgIDQuery(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("orgId")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orgId"})
		return nil, false
	}
	return &id, true
}
