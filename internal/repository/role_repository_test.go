package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crm-service/internal/models"
)

func TestGlobalRoleCondition(t *testing.T) {
	sql, args := globalRoleCondition(true)
	assert.Equal(t, "is_global = true", sql)
	assert.Empty(t, args)

	// The SUPER_ADMIN exclusion is bound, not concatenated.
	sql, args = globalRoleCondition(false)
	assert.Equal(t, "is_global = true AND name <> ?", sql)
	assert.Equal(t, []interface{}{models.RoleSuperAdmin}, args)
}
