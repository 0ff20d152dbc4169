package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"crm-service/internal/models"
)

func TestResolveScope(t *testing.T) {
	ownOrg := uuid.New()
	otherOrg := uuid.New()

	tests := []struct {
		name     string
		caller   *Caller
		explicit *uuid.UUID
		want     Scope
	}{
		{
			name:   "platform caller without explicit org sees all tenants",
			caller: &Caller{UserID: uuid.New(), Role: models.RoleSuperAdmin},
			want:   Scope{All: true},
		},
		{
			name:     "platform caller pins an explicit org",
			caller:   &Caller{UserID: uuid.New(), Role: models.RoleSuperAdmin},
			explicit: &otherOrg,
			want:     Scope{OrgID: otherOrg},
		},
		{
			name:     "org admin is forced to own org despite explicit value",
			caller:   &Caller{UserID: uuid.New(), Role: models.RoleOrgAdmin, OrganizationID: &ownOrg},
			explicit: &otherOrg,
			want:     Scope{OrgID: ownOrg},
		},
		{
			name:   "employee resolves to own org",
			caller: &Caller{UserID: uuid.New(), Role: models.RoleEmployee, OrganizationID: &ownOrg},
			want:   Scope{OrgID: ownOrg},
		},
		{
			name:     "custom role ignores explicit org",
			caller:   &Caller{UserID: uuid.New(), Role: "Support", OrganizationID: &ownOrg},
			explicit: &otherOrg,
			want:     Scope{OrgID: ownOrg},
		},
		{
			name:   "non-platform caller without org matches nothing",
			caller: &Caller{UserID: uuid.New(), Role: models.RoleEmployee},
			want:   Scope{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveScope(tt.caller, tt.explicit))
		})
	}
}

func TestScopeContains(t *testing.T) {
	orgID := uuid.New()

	assert.True(t, Scope{All: true}.Contains(orgID))
	assert.True(t, Scope{OrgID: orgID}.Contains(orgID))
	assert.False(t, Scope{OrgID: uuid.New()}.Contains(orgID))

	// The zero scope matches nothing real: gen_random_uuid() never
	// produces the nil UUID.
	assert.False(t, Scope{}.Contains(orgID))
}
