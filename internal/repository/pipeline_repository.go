package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crm-service/internal/auth"
	"crm-service/internal/models"
)

// PipelineRepositoryInterface abstracts pipeline stage persistence.
type PipelineRepositoryInterface interface {
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.PipelineStage, error)
	GetByID(ctx context.Context, id uuid.UUID, scope auth.Scope) (*models.PipelineStage, error)
	Create(ctx context.Context, stage *models.PipelineStage) error
	Update(ctx context.Context, stage *models.PipelineStage) error
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, scope auth.Scope, orders []models.StageOrder) error
	StageNames(ctx context.Context, orgID uuid.UUID) ([]string, error)
	FirstStageName(ctx context.Context, orgID uuid.UUID) (string, error)
	CountCustomersInStage(ctx context.Context, orgID uuid.UUID, stageName string) (int64, error)
}

// PipelineRepository handles database operations for pipeline stages.
type PipelineRepository struct {
	db *gorm.DB
}

// NewPipelineRepository creates a new PipelineRepository
func NewPipelineRepository(db *gorm.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

// ListByOrg returns an organization's stages in ascending progression order.
func (r *PipelineRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.PipelineStage, error) {
	var stages []models.PipelineStage
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("sort_order ASC").
		Find(&stages).Error
	return stages, err
}

// GetByID loads a stage inside the scope; outside reads as ErrNotFound.
func (r *PipelineRepository) GetByID(ctx context.Context, id uuid.UUID, scope auth.Scope) (*models.PipelineStage, error) {
	var stage models.PipelineStage
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if !scope.All {
		query = query.Where("organization_id = ?", scope.OrgID)
	}
	if err := query.First(&stage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stage, nil
}

// Create persists a stage.
func (r *PipelineRepository) Create(ctx context.Context, stage *models.PipelineStage) error {
	return r.db.WithContext(ctx).Create(stage).Error
}

// Update saves a stage.
func (r *PipelineRepository) Update(ctx context.Context, stage *models.PipelineStage) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

// Delete removes a stage row. The in-use guard belongs to the service.
func (r *PipelineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PipelineStage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder applies the whole batch in one transaction. Any id that does not
// match a stage inside the scope aborts the batch; no order value survives
// a partial failure.
func (r *PipelineRepository) Reorder(ctx context.Context, scope auth.Scope, orders []models.StageOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			query := tx.Model(&models.PipelineStage{}).Where("id = ?", o.ID)
			if !scope.All {
				query = query.Where("organization_id = ?", scope.OrgID)
			}
			result := query.Update("sort_order", o.Order)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
}

// StageNames returns the organization's status vocabulary in progression
// order, empty when no stages are configured.
func (r *PipelineRepository) StageNames(ctx context.Context, orgID uuid.UUID) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.PipelineStage{}).
		Where("organization_id = ?", orgID).
		Order("sort_order ASC").
		Pluck("name", &names).Error
	return names, err
}

// FirstStageName returns the name of the first stage by ascending order, or
// ErrNotFound when the organization has none.
func (r *PipelineRepository) FirstStageName(ctx context.Context, orgID uuid.UUID) (string, error) {
	var stage models.PipelineStage
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("sort_order ASC").
		First(&stage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return stage.Name, nil
}

// CountCustomersInStage counts customers currently holding the stage's name
// as their status inside the stage's organization.
func (r *PipelineRepository) CountCustomersInStage(ctx context.Context, orgID uuid.UUID, stageName string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("organization_id = ? AND status = ?", orgID, stageName).
		Count(&count).Error
	return count, err
}
