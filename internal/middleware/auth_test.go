package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"crm-service/internal/auth"
	"crm-service/internal/models"
)

func performGuarded(t *testing.T, caller *auth.Caller, perm string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if caller != nil {
			c.Set(CallerKey, caller)
		}
	})
	router.GET("/guarded", RequirePermission(perm), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	return w
}

func TestRequirePermission(t *testing.T) {
	orgID := uuid.New()

	holder := &auth.Caller{UserID: uuid.New(), OrganizationID: &orgID, Role: "Support", Permissions: []string{"manage:roles"}}
	assert.Equal(t, http.StatusOK, performGuarded(t, holder, "manage:roles").Code)

	lacking := &auth.Caller{UserID: uuid.New(), OrganizationID: &orgID, Role: "Support", Permissions: []string{"read:roles"}}
	assert.Equal(t, http.StatusForbidden, performGuarded(t, lacking, "manage:roles").Code)

	// Platform callers hold every permission implicitly.
	platform := &auth.Caller{UserID: uuid.New(), Role: models.RoleSuperAdmin}
	assert.Equal(t, http.StatusOK, performGuarded(t, platform, "manage:roles").Code)

	// No caller on the context at all.
	assert.Equal(t, http.StatusForbidden, performGuarded(t, nil, "manage:roles").Code)
}
