package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crm-service/internal/auth"
	"crm-service/internal/cache"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

// RoleService manages custom roles and role assignment. Global roles
// (SUPER_ADMIN, ORG_ADMIN) are seeded and immutable through this
// service; organizations only ever create and edit their own roles.
type RoleService struct {
	repo      repository.RoleRepositoryInterface
	users     repository.UserRepositoryInterface
	permCache *cache.PermissionCache
	logger    *logrus.Entry
}

func NewRoleService(
	repo repository.RoleRepositoryInterface,
	users repository.UserRepositoryInterface,
	permCache *cache.PermissionCache,
	logger *logrus.Logger,
) *RoleService {
	return &RoleService{
		repo:      repo,
		users:     users,
		permCache: permCache,
		logger:    logger.WithField("component", "role_service"),
	}
}

// ListRoles returns the roles visible to the caller: global roles plus
// the caller's organization roles. SUPER_ADMIN itself is listed only
// for platform callers.
func (s *RoleService) ListRoles(ctx context.Context, caller *auth.Caller, explicitOrgID *uuid.UUID) ([]models.Role, error) {
	scope := auth.ResolveScope(caller, explicitOrgID)
	return s.repo.ListVisible(ctx, scope, caller.IsPlatform())
}

// ListPermissions returns the full permission catalog.
func (s *RoleService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *RoleService) CreateRole(ctx context.Context, caller *auth.Caller, req *models.CreateRoleRequest) (*models.Role, error) {
	if !caller.IsPlatform() && caller.Kind() != auth.KindOrgAdmin {
		return nil, ErrForbidden
	}

	// An explicit target organization is honored only for platform
	// callers; everyone else is forced onto their own.
	var orgID *uuid.UUID
	if req.OrgID != nil && auth.CanTargetOtherOrg(caller) {
		orgID = req.OrgID
	} else {
		if caller.OrganizationID == nil {
			return nil, ErrNoOrganization
		}
		orgID = caller.OrganizationID
	}

	// Custom roles may not shadow the seeded global names.
	if existing, err := s.repo.GetGlobalByName(ctx, req.Name); err != nil && err != repository.ErrNotFound {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: %q is a reserved role name", ErrNameConflict, req.Name)
	}

	if err := s.checkPermissionIDs(ctx, req.PermissionIDs); err != nil {
		return nil, err
	}

	role := &models.Role{
		Name:           req.Name,
		Description:    req.Description,
		IsGlobal:       false,
		OrganizationID: orgID,
	}
	if err := s.repo.Create(ctx, role, req.PermissionIDs); err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"role_id":         role.ID,
		"organization_id": orgID,
		"name":            role.Name,
	}).Info("Role created")

	return role, nil
}

func (s *RoleService) UpdateRole(ctx context.Context, caller *auth.Caller, id uuid.UUID, req *models.UpdateRoleRequest) (*models.Role, error) {
	role, err := s.guardedRole(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != role.Name {
		if existing, err := s.repo.GetGlobalByName(ctx, req.Name); err != nil && err != repository.ErrNotFound {
			return nil, err
		} else if existing != nil {
			return nil, fmt.Errorf("%w: %q is a reserved role name", ErrNameConflict, req.Name)
		}
	}
	if err := s.checkPermissionIDs(ctx, req.PermissionIDs); err != nil {
		return nil, err
	}
	role.Name = req.Name
	role.Description = req.Description

	if err := s.repo.Update(ctx, role, req.PermissionIDs); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	// Users carrying this role pick up the new permission set on their
	// next request once the cached entry is gone.
	if err := s.permCache.Invalidate(ctx, role.ID); err != nil {
		s.logger.WithError(err).WithField("role_id", role.ID).Warn("Failed to invalidate permission cache")
	}

	return s.repo.GetByID(ctx, role.ID)
}

func (s *RoleService) DeleteRole(ctx context.Context, caller *auth.Caller, id uuid.UUID) error {
	role, err := s.guardedRole(ctx, caller, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count role users: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d user(s) still assigned", ErrRoleInUse, count)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.permCache.Invalidate(ctx, id); err != nil {
		s.logger.WithError(err).WithField("role_id", id).Warn("Failed to invalidate permission cache")
	}

	s.logger.WithFields(logrus.Fields{
		"role_id": id,
		"name":    role.Name,
	}).Info("Role deleted")

	return nil
}

// ReassignUserRole moves a user onto a different role. Only platform
// callers may touch SUPER_ADMIN, in either direction.
func (s *RoleService) ReassignUserRole(ctx context.Context, caller *auth.Caller, req *models.ReassignRoleRequest) (*models.User, error) {
	if !caller.IsPlatform() && caller.Kind() != auth.KindOrgAdmin {
		return nil, ErrForbidden
	}

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	// A user outside the caller's organization is reported as missing,
	// not forbidden.
	if !caller.IsPlatform() {
		if user.OrganizationID == nil || caller.OrganizationID == nil || *user.OrganizationID != *caller.OrganizationID {
			return nil, repository.ErrNotFound
		}
	}
	if user.Role != nil && user.Role.Name == models.RoleSuperAdmin && !caller.IsPlatform() {
		return nil, ErrForbidden
	}

	role, err := s.repo.GetByID(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	if role.Name == models.RoleSuperAdmin && !caller.IsPlatform() {
		return nil, ErrForbidden
	}
	// A custom role from another organization is invisible to the caller.
	if !role.IsGlobal {
		if role.OrganizationID == nil || user.OrganizationID == nil || *role.OrganizationID != *user.OrganizationID {
			return nil, repository.ErrNotFound
		}
	}

	if err := s.users.UpdateRole(ctx, req.UserID, req.RoleID); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": req.UserID,
		"role_id": req.RoleID,
		"by":      caller.UserID,
	}).Info("User role reassigned")

	return s.users.GetByID(ctx, req.UserID)
}

// checkPermissionIDs rejects permission sets naming ids outside the
// catalog. Duplicate ids are rejected the same way.
func (s *RoleService) checkPermissionIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	perms, err := s.repo.GetPermissionsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(perms) != len(ids) {
		return fmt.Errorf("%w: unknown permission id", ErrValidation)
	}
	return nil
}

// guardedRole loads a role and applies the shared mutation guards:
// global roles and roles of other organizations are off limits unless
// the caller is a platform admin.
func (s *RoleService) guardedRole(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*models.Role, error) {
	if !caller.IsPlatform() && caller.Kind() != auth.KindOrgAdmin {
		return nil, ErrForbidden
	}

	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.IsGlobal {
		return nil, fmt.Errorf("%w: global roles cannot be modified", ErrForbidden)
	}
	if !caller.IsPlatform() {
		if role.OrganizationID == nil || caller.OrganizationID == nil || *role.OrganizationID != *caller.OrganizationID {
			return nil, fmt.Errorf("%w: role belongs to another organization", ErrForbidden)
		}
	}
	return role, nil
}
