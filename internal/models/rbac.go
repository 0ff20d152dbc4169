package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// PERMISSIONS
// ============================================================================

// Permission is an immutable catalog entry: a verb applied to a noun.
type Permission struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Action  string    `json:"action" gorm:"not null;uniqueIndex:idx_action_subject"`
	Subject string    `json:"subject" gorm:"not null;uniqueIndex:idx_action_subject"`
}

func (Permission) TableName() string {
	return "permissions"
}

// String renders the effective permission form, e.g. "create:customer".
func (p Permission) String() string {
	return fmt.Sprintf("%s:%s", p.Action, p.Subject)
}

// ============================================================================
// ROLES
// ============================================================================

// Structural global role names. ORG_ADMIN is granted to the first user of
// every new organization; SUPER_ADMIN is platform-wide with implicit full
// access. Custom role names must never collide with a global role's name.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleOrgAdmin   = "ORG_ADMIN"
)

// Restricted role names: visibility limited to created/handled records.
const (
	RoleEmployee   = "EMPLOYEE"
	RoleSalesAgent = "Sales Agent"
)

// Role is either global (platform-defined, OrganizationID nil) or scoped to
// one organization. Role names are unique only among global roles; two
// organizations may each define a "Manager".
type Role struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string     `json:"name" gorm:"not null;index"`
	Description    string     `json:"description"`
	IsGlobal       bool       `json:"isGlobal" gorm:"default:false;index"`
	OrganizationID *uuid.UUID `json:"organizationId,omitempty" gorm:"type:uuid;index"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// Relationships
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions"`
	UserCount   int64        `json:"userCount" gorm:"-"`
}

func (Role) TableName() string {
	return "roles"
}

// PermissionStrings renders the role's permission set as "action:subject".
func (r Role) PermissionStrings() []string {
	out := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		out = append(out, p.String())
	}
	return out
}

// CreateRoleRequest creates a non-global role. OrgID is honored only for
// platform callers; everyone else is pinned to their own organization.
type CreateRoleRequest struct {
	Name          string      `json:"name" binding:"required"`
	Description   string      `json:"description"`
	PermissionIDs []uuid.UUID `json:"permissionIds"`
	OrgID         *uuid.UUID  `json:"orgId,omitempty"`
}

// UpdateRoleRequest replaces a role's fields and its permission set
// wholesale; permissions are never merged.
type UpdateRoleRequest struct {
	Name          string      `json:"name" binding:"required"`
	Description   string      `json:"description"`
	PermissionIDs []uuid.UUID `json:"permissionIds"`
}

// ReassignRoleRequest moves a user onto a different role.
type ReassignRoleRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	RoleID uuid.UUID `json:"roleId" binding:"required"`
}
