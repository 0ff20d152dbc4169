package auth

import (
	"github.com/google/uuid"

	"crm-service/internal/models"
)

// RoleKind is the closed set of authorization categories a role can fall
// into. It is derived exactly once per request from the caller's role name
// and global flag, and every downstream decision branches on it instead of
// re-deriving booleans from the raw role name.
type RoleKind int

const (
	// KindStandard is any custom role without special treatment: full
	// visibility within its tenant, no management gates.
	KindStandard RoleKind = iota
	// KindPlatform is SUPER_ADMIN: platform-wide, may widen or redirect
	// tenant scope and manage other platform admins.
	KindPlatform
	// KindOrgAdmin administers a single organization.
	KindOrgAdmin
	// KindRestricted (EMPLOYEE, Sales Agent) sees only customers it
	// created or handles.
	KindRestricted
)

func (k RoleKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindOrgAdmin:
		return "org_admin"
	case KindRestricted:
		return "restricted"
	default:
		return "standard"
	}
}

// KindOfRole classifies a role by name. Kind follows the name alone: a
// tenant-defined role named EMPLOYEE is restricted the same way the stock
// one is.
func KindOfRole(name string) RoleKind {
	switch name {
	case models.RoleSuperAdmin:
		return KindPlatform
	case models.RoleOrgAdmin:
		return KindOrgAdmin
	case models.RoleEmployee, models.RoleSalesAgent:
		return KindRestricted
	default:
		return KindStandard
	}
}

// Caller is the already-authenticated identity every core operation
// receives. OrganizationID is nil only for platform accounts.
type Caller struct {
	UserID         uuid.UUID
	OrganizationID *uuid.UUID
	Role           string
	Permissions    []string
}

// Kind classifies the caller's role.
func (c Caller) Kind() RoleKind {
	return KindOfRole(c.Role)
}

// IsPlatform reports whether the caller is a platform admin.
func (c Caller) IsPlatform() bool {
	return c.Kind() == KindPlatform
}

// IsRestricted reports whether the caller's visibility is limited to
// records it created or handles.
func (c Caller) IsRestricted() bool {
	return c.Kind() == KindRestricted
}

// HasPermission reports whether the rendered "action:subject" string is in
// the caller's permission set. Platform admins implicitly hold everything.
func (c Caller) HasPermission(perm string) bool {
	if c.IsPlatform() {
		return true
	}
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
