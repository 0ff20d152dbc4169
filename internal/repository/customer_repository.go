package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-service/internal/auth"
	"crm-service/internal/models"
)

// CustomerRepositoryInterface abstracts customer and interaction persistence.
type CustomerRepositoryInterface interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID, scope auth.Scope, ownership auth.Ownership) (*models.Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Customer, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	AddHandler(ctx context.Context, customerID, userID uuid.UUID) error
	RemoveHandler(ctx context.Context, customerID, userID uuid.UUID) error
	CountByStatus(ctx context.Context, scope auth.Scope, ownership auth.Ownership, status string) (int64, error)
	CountOwned(ctx context.Context, orgID, userID uuid.UUID) (int64, error)
	CreateInteraction(ctx context.Context, interaction *models.Interaction) error
	ListInteractions(ctx context.Context, customerID uuid.UUID) ([]models.Interaction, error)
	GetInteraction(ctx context.Context, id uuid.UUID, scope auth.Scope) (*models.Interaction, error)
	DeleteInteraction(ctx context.Context, id uuid.UUID) error
}

// CustomerFilter describes one customer list query. The clauses compose
// with fixed precedence: tenant scope AND status AND handler AND
// (ownership OR-clause) AND (search OR-clause). Search narrows the
// ownership restriction and can never loosen it.
type CustomerFilter struct {
	Scope     auth.Scope
	Ownership auth.Ownership
	Status    string
	HandlerID *uuid.UUID
	Search    string
}

// condition is one composed WHERE fragment with its arguments.
type condition struct {
	sql  string
	args []interface{}
}

// handledBySQL matches customers connected to the user through the
// customer_handlers join table.
const handledBySQL = "customers.id IN (SELECT customer_id FROM customer_handlers WHERE user_id = ?)"

// ownershipCondition is the restricted-role OR-clause: records the user
// created or records the user handles.
func ownershipCondition(userID uuid.UUID) condition {
	return condition{
		sql:  "(customers.created_by_id = ? OR " + handledBySQL + ")",
		args: []interface{}{userID, userID},
	}
}

// searchCondition is the free-text OR-clause over name, email and company,
// case-insensitive substring.
func searchCondition(term string) condition {
	pattern := "%" + term + "%"
	return condition{
		sql:  "(customers.name ILIKE ? OR customers.email ILIKE ? OR customers.company ILIKE ?)",
		args: []interface{}{pattern, pattern, pattern},
	}
}

// CustomerRepository handles database operations for customers, their
// interactions and the cascade targets hanging off them.
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// applyScope constrains a query to the effective organization scope.
func applyScope(query *gorm.DB, scope auth.Scope) *gorm.DB {
	if scope.All {
		return query
	}
	return query.Where("customers.organization_id = ?", scope.OrgID)
}

// applyOwnership ANDs the ownership OR-clause when restricted.
func applyOwnership(query *gorm.DB, ownership auth.Ownership) *gorm.DB {
	if !ownership.Restricted() {
		return query
	}
	c := ownershipCondition(*ownership.UserID)
	return query.Where(c.sql, c.args...)
}

// Create persists a customer and connects its creator as the first handler.
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(customer).Error; err != nil {
			return err
		}
		creator := models.User{ID: customer.CreatedByID}
		return tx.Model(customer).Association("Handlers").Append(&creator)
	})
}

// GetByID loads a customer under the tenant and ownership guards. A row
// outside either axis reads as ErrNotFound.
func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID, scope auth.Scope, ownership auth.Ownership) (*models.Customer, error) {
	var customer models.Customer
	query := applyOwnership(applyScope(r.db.WithContext(ctx), scope), ownership)
	err := query.
		Preload("CreatedBy").
		Preload("Handlers").
		Preload("Interactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("interactions.date DESC")
		}).
		Preload("Interactions.User").
		Where("customers.id = ?", id).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// List returns customers matching the composed filter, newest first.
func (r *CustomerRepository) List(ctx context.Context, filter CustomerFilter) ([]models.Customer, error) {
	var customers []models.Customer

	query := applyScope(r.db.WithContext(ctx).Model(&models.Customer{}), filter.Scope)
	if filter.Status != "" && filter.Status != "all" {
		query = query.Where("customers.status = ?", filter.Status)
	}
	if filter.HandlerID != nil {
		query = query.Where(handledBySQL, *filter.HandlerID)
	}
	query = applyOwnership(query, filter.Ownership)
	if filter.Search != "" {
		c := searchCondition(filter.Search)
		query = query.Where(c.sql, c.args...)
	}

	err := query.
		Preload("CreatedBy").
		Preload("Handlers").
		Order("customers.created_at DESC").
		Find(&customers).Error
	return customers, err
}

// Update saves a customer's mutable fields.
func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// UpdateStatus applies a status transition and returns the fresh row.
// Concurrent transitions race last-write-wins at this layer.
func (r *CustomerRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Customer, error) {
	result := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id, auth.Scope{All: true}, auth.Ownership{})
}

// DeleteCascade removes the customer and everything referencing it as one
// atomic unit: interactions, internal notes, tasks, events, files, handler
// links, then the customer row. Partial application is never observable.
func (r *CustomerRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", id).Delete(&models.Interaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&models.InternalNote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&models.Event{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&models.File{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM customer_handlers WHERE customer_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Customer{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AddHandler connects a user as a handler of the customer.
func (r *CustomerRepository) AddHandler(ctx context.Context, customerID, userID uuid.UUID) error {
	customer := models.Customer{ID: customerID}
	handler := models.User{ID: userID}
	return r.db.WithContext(ctx).Model(&customer).Association("Handlers").Append(&handler)
}

// RemoveHandler disconnects a handler from the customer.
func (r *CustomerRepository) RemoveHandler(ctx context.Context, customerID, userID uuid.UUID) error {
	customer := models.Customer{ID: customerID}
	handler := models.User{ID: userID}
	return r.db.WithContext(ctx).Model(&customer).Association("Handlers").Delete(&handler)
}

// CountByStatus counts customers in one status under scope + ownership.
func (r *CustomerRepository) CountByStatus(ctx context.Context, scope auth.Scope, ownership auth.Ownership, status string) (int64, error) {
	var count int64
	query := applyOwnership(applyScope(r.db.WithContext(ctx).Model(&models.Customer{}), scope), ownership)
	err := query.Where("customers.status = ?", status).Count(&count).Error
	return count, err
}

// CountOwned counts the customers a user created or handles inside one
// organization, regardless of role.
func (r *CustomerRepository) CountOwned(ctx context.Context, orgID, userID uuid.UUID) (int64, error) {
	var count int64
	c := ownershipCondition(userID)
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("customers.organization_id = ?", orgID).
		Where(c.sql, c.args...).
		Count(&count).Error
	return count, err
}

// CreateInteraction persists an interaction.
func (r *CustomerRepository) CreateInteraction(ctx context.Context, interaction *models.Interaction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}

// ListInteractions returns a customer's interactions, newest first.
func (r *CustomerRepository) ListInteractions(ctx context.Context, customerID uuid.UUID) ([]models.Interaction, error) {
	var interactions []models.Interaction
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("customer_id = ?", customerID).
		Order("date DESC").
		Find(&interactions).Error
	return interactions, err
}

// GetInteraction loads an interaction whose customer is inside the scope.
func (r *CustomerRepository) GetInteraction(ctx context.Context, id uuid.UUID, scope auth.Scope) (*models.Interaction, error) {
	var interaction models.Interaction
	query := r.db.WithContext(ctx).
		Joins("JOIN customers ON customers.id = interactions.customer_id").
		Where("interactions.id = ?", id)
	if !scope.All {
		query = query.Where("customers.organization_id = ?", scope.OrgID)
	}
	if err := query.First(&interaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &interaction, nil
}

// DeleteInteraction removes an interaction row.
func (r *CustomerRepository) DeleteInteraction(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Interaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
