package seeders

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crm-service/internal/models"
)

// catalog is the full permission matrix. Seeding is idempotent: rows are
// upserted on (action, subject), so redeploys never duplicate entries.
var catalog = []models.Permission{
	{Action: "create", Subject: "customers"},
	{Action: "read", Subject: "customers"},
	{Action: "update", Subject: "customers"},
	{Action: "delete", Subject: "customers"},
	{Action: "create", Subject: "interactions"},
	{Action: "read", Subject: "interactions"},
	{Action: "delete", Subject: "interactions"},
	{Action: "read", Subject: "pipeline"},
	{Action: "manage", Subject: "pipeline"},
	{Action: "read", Subject: "roles"},
	{Action: "manage", Subject: "roles"},
	{Action: "read", Subject: "users"},
	{Action: "manage", Subject: "users"},
	{Action: "read", Subject: "reports"},
}

// SeedPermissions writes the permission catalog.
func SeedPermissions(db *gorm.DB) error {
	for _, perm := range catalog {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "action"}, {Name: "subject"}},
			DoNothing: true,
		}).Create(&perm)
		if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// SeedGlobalRoles creates the two built-in roles. SUPER_ADMIN carries no
// explicit permissions because platform callers hold every permission
// implicitly; ORG_ADMIN gets the full catalog.
func SeedGlobalRoles(db *gorm.DB) error {
	superAdmin := models.Role{
		Name:        models.RoleSuperAdmin,
		Description: "Platform operator with unrestricted access",
		IsGlobal:    true,
	}
	if err := upsertGlobalRole(db, &superAdmin); err != nil {
		return err
	}

	orgAdmin := models.Role{
		Name:        models.RoleOrgAdmin,
		Description: "Organization administrator",
		IsGlobal:    true,
	}
	if err := upsertGlobalRole(db, &orgAdmin); err != nil {
		return err
	}

	var perms []models.Permission
	if err := db.Find(&perms).Error; err != nil {
		return err
	}
	return db.Model(&orgAdmin).Association("Permissions").Replace(perms)
}

func upsertGlobalRole(db *gorm.DB, role *models.Role) error {
	return db.Where("name = ? AND is_global = true", role.Name).
		FirstOrCreate(role).Error
}
