package auth

import (
	"github.com/google/uuid"

	"crm-service/internal/models"
)

// Decision helpers for the operation gates. Every entity operation consults
// these instead of comparing role names inline; the tenant axis (Scope) and
// the ownership axis (OwnershipOf) combine as deny-unless-both-pass.

// CanDeleteCustomer gates customer deletion: admins only, ownership is
// irrelevant.
func CanDeleteCustomer(c *Caller) bool {
	k := c.Kind()
	return k == KindPlatform || k == KindOrgAdmin
}

// CanManageHandlers gates assigning/unassigning handlers. Sales Agents may
// transfer leads; EMPLOYEE may not.
func CanManageHandlers(c *Caller) bool {
	switch c.Kind() {
	case KindPlatform, KindOrgAdmin:
		return true
	case KindRestricted:
		return c.Role == models.RoleSalesAgent
	default:
		return false
	}
}

// CanListUsers gates the organization member listing. Sales Agents need
// the roster to transfer leads; EMPLOYEE does not see it.
func CanListUsers(c *Caller) bool {
	switch c.Kind() {
	case KindPlatform, KindOrgAdmin:
		return true
	case KindRestricted:
		return c.Role == models.RoleSalesAgent
	default:
		return false
	}
}

// CanManagePipeline gates create/update/delete/reorder of pipeline stages.
func CanManagePipeline(c *Caller) bool {
	k := c.Kind()
	return k == KindPlatform || k == KindOrgAdmin
}

// CanTargetOtherOrg gates operations that name an organization other than
// the caller's: cross-org role creation and platform-admin registration.
func CanTargetOtherOrg(c *Caller) bool {
	return c.IsPlatform()
}

// Ownership is the ownership axis of a customer-touching operation: when
// UserID is non-nil the query must be limited to records the user created
// or handles.
type Ownership struct {
	UserID *uuid.UUID
}

// OwnershipOf returns the ownership restriction the caller operates under.
// Unrestricted callers get a zero restriction.
func OwnershipOf(c *Caller) Ownership {
	if c.IsRestricted() {
		id := c.UserID
		return Ownership{UserID: &id}
	}
	return Ownership{}
}

// Restricted reports whether the ownership axis actually restricts.
func (o Ownership) Restricted() bool {
	return o.UserID != nil
}
