package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-service/internal/auth"
	"crm-service/internal/models"
)

// RoleRepositoryInterface abstracts role and permission persistence for the
// role store and for service tests.
type RoleRepositoryInterface interface {
	ListVisible(ctx context.Context, scope auth.Scope, includeSuperAdmin bool) ([]models.Role, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetGlobalByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role, permissionIDs []uuid.UUID) error
	Update(ctx context.Context, role *models.Role, permissionIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	GetPermissionsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Permission, error)
}

// RoleRepository handles database operations for roles and the permission
// catalog.
type RoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// ListVisible returns the global roles (SUPER_ADMIN excluded unless the
// caller is a platform admin) plus the org-scoped roles inside the scope,
// each with its permission set and assigned-user count.
func (r *RoleRepository) ListVisible(ctx context.Context, scope auth.Scope, includeSuperAdmin bool) ([]models.Role, error) {
	var roles []models.Role

	query := r.db.WithContext(ctx).Model(&models.Role{})
	globalCond, globalArgs := globalRoleCondition(includeSuperAdmin)
	if scope.All {
		query = query.Where(globalCond+" OR is_global = false", globalArgs...)
	} else {
		query = query.Where("("+globalCond+") OR organization_id = ?", append(globalArgs, scope.OrgID)...)
	}

	if err := query.
		Preload("Permissions").
		Order("created_at ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}

	// Batch load user counts to avoid one count query per role
	if len(roles) > 0 {
		roleIDs := make([]uuid.UUID, len(roles))
		for i, role := range roles {
			roleIDs[i] = role.ID
		}

		type roleCount struct {
			RoleID uuid.UUID
			Count  int64
		}
		var counts []roleCount
		if err := r.db.WithContext(ctx).Model(&models.User{}).
			Select("role_id, COUNT(*) as count").
			Where("role_id IN ?", roleIDs).
			Group("role_id").
			Scan(&counts).Error; err != nil {
			return nil, err
		}

		countMap := make(map[uuid.UUID]int64, len(counts))
		for _, c := range counts {
			countMap[c.RoleID] = c.Count
		}
		for i := range roles {
			roles[i].UserCount = countMap[roles[i].ID]
		}
	}

	return roles, nil
}

// globalRoleCondition builds the visibility clause for global roles,
// with values bound as parameters.
func globalRoleCondition(includeSuperAdmin bool) (string, []interface{}) {
	if includeSuperAdmin {
		return "is_global = true", nil
	}
	return "is_global = true AND name <> ?", []interface{}{models.RoleSuperAdmin}
}

// GetByID retrieves a role with its permission set.
func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		Where("id = ?", id).
		First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// GetGlobalByName looks up a global role by its reserved name.
func (r *RoleRepository) GetGlobalByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).
		Where("name = ? AND is_global = true", name).
		First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// Create persists a role and associates its permissions in one transaction.
func (r *RoleRepository) Create(ctx context.Context, role *models.Role, permissionIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		return r.replacePermissions(tx, role, permissionIDs)
	})
}

// Update saves the role and replaces its permission set wholesale.
func (r *RoleRepository) Update(ctx context.Context, role *models.Role, permissionIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(role).Error; err != nil {
			return err
		}
		return r.replacePermissions(tx, role, permissionIDs)
	})
}

func (r *RoleRepository) replacePermissions(tx *gorm.DB, role *models.Role, permissionIDs []uuid.UUID) error {
	var perms []models.Permission
	if len(permissionIDs) > 0 {
		if err := tx.Where("id IN ?", permissionIDs).Find(&perms).Error; err != nil {
			return err
		}
	}
	if err := tx.Model(role).Association("Permissions").Replace(perms); err != nil {
		return err
	}
	role.Permissions = perms
	return nil
}

// Delete removes a role row. The caller is responsible for the in-use and
// authorization guards.
func (r *RoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Role{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUsers returns how many users currently hold the role.
func (r *RoleRepository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

// ListPermissions returns the full catalog sorted by (subject, action).
func (r *RoleRepository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var permissions []models.Permission
	err := r.db.WithContext(ctx).
		Order("subject ASC, action ASC").
		Find(&permissions).Error
	return permissions, err
}

// GetPermissionsByIDs resolves catalog entries by id.
func (r *RoleRepository) GetPermissionsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Permission, error) {
	var permissions []models.Permission
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&permissions).Error
	return permissions, err
}
