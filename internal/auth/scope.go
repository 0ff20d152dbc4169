package auth

import "github.com/google/uuid"

// Scope is the effective organization scope of a read or write. A zero
// Scope matches nothing; use ResolveScope to build one.
type Scope struct {
	// All is true only for platform callers that did not pin a tenant.
	All   bool
	OrgID uuid.UUID
}

// ResolveScope derives the queryable organization scope from the caller and
// an optional explicit org id. Platform callers may widen to all tenants or
// pin any single one; every other caller is forced to its own organization
// no matter what explicit value was supplied.
func ResolveScope(caller *Caller, explicitOrgID *uuid.UUID) Scope {
	if caller.IsPlatform() {
		if explicitOrgID != nil {
			return Scope{OrgID: *explicitOrgID}
		}
		return Scope{All: true}
	}
	if caller.OrganizationID != nil {
		return Scope{OrgID: *caller.OrganizationID}
	}
	// Non-platform caller without an organization: matches nothing.
	return Scope{}
}

// Contains reports whether an entity in orgID is inside the scope.
func (s Scope) Contains(orgID uuid.UUID) bool {
	return s.All || s.OrgID == orgID
}
