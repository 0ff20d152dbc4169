package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-service/internal/models"
)

// UserRepositoryInterface abstracts user persistence for services and tests.
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateWithOrganization(ctx context.Context, org *models.Organization, user *models.User) error
	UpdateRole(ctx context.Context, userID, roleID uuid.UUID) error
}

// UserRepository handles database operations for users and organizations.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user with its role, permissions and organization.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Role.Permissions").
		Preload("Organization").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by its unique email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Role.Permissions").
		Preload("Organization").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListByOrganization returns the members of one organization with roles.
func (r *UserRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("organization_id = ?", orgID).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// Create persists a user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateWithOrganization creates the organization and its first user as one
// atomic unit; a failure on either side leaves neither row behind.
func (r *UserRepository) CreateWithOrganization(ctx context.Context, org *models.Organization, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		user.OrganizationID = &org.ID
		return tx.Create(user).Error
	})
}

// UpdateRole moves a user onto a different role.
func (r *UserRepository) UpdateRole(ctx context.Context, userID, roleID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
