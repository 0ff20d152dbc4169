package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crm-service/internal/auth"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

// PipelineService manages the per-organization pipeline stage registry.
// Stage names double as the customer status vocabulary: an organization
// with no stages falls back to the built-in default set.
type PipelineService struct {
	repo   repository.PipelineRepositoryInterface
	logger *logrus.Entry
}

func NewPipelineService(repo repository.PipelineRepositoryInterface, logger *logrus.Logger) *PipelineService {
	return &PipelineService{
		repo:   repo,
		logger: logger.WithField("component", "pipeline_service"),
	}
}

// targetOrg resolves the organization a pipeline operation applies to.
// Platform callers may pin an explicit organization; everyone else is
// forced onto their own.
func (s *PipelineService) targetOrg(caller *auth.Caller, explicitOrgID *uuid.UUID) (uuid.UUID, error) {
	if caller.IsPlatform() && explicitOrgID != nil {
		return *explicitOrgID, nil
	}
	if caller.OrganizationID == nil {
		return uuid.Nil, ErrNoOrganization
	}
	return *caller.OrganizationID, nil
}

func (s *PipelineService) ListStages(ctx context.Context, caller *auth.Caller, explicitOrgID *uuid.UUID) ([]models.PipelineStage, error) {
	orgID, err := s.targetOrg(caller, explicitOrgID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOrg(ctx, orgID)
}

func (s *PipelineService) CreateStage(ctx context.Context, caller *auth.Caller, req *models.CreateStageRequest) (*models.PipelineStage, error) {
	if !auth.CanManagePipeline(caller) {
		return nil, ErrForbidden
	}
	orgID, err := s.targetOrg(caller, req.OrgID)
	if err != nil {
		return nil, err
	}

	stage := &models.PipelineStage{
		OrganizationID: orgID,
		Name:           req.Name,
		Color:          req.Color,
		Order:          req.Order,
	}
	if err := s.repo.Create(ctx, stage); err != nil {
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"stage_id":        stage.ID,
		"organization_id": orgID,
		"name":            stage.Name,
	}).Info("Pipeline stage created")

	return stage, nil
}

func (s *PipelineService) UpdateStage(ctx context.Context, caller *auth.Caller, id uuid.UUID, req *models.UpdateStageRequest) (*models.PipelineStage, error) {
	if !auth.CanManagePipeline(caller) {
		return nil, ErrForbidden
	}

	scope := auth.ResolveScope(caller, nil)
	stage, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		stage.Name = *req.Name
	}
	if req.Color != nil {
		stage.Color = *req.Color
	}
	if req.Order != nil {
		stage.Order = *req.Order
	}

	if err := s.repo.Update(ctx, stage); err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}
	return stage, nil
}

// DeleteStage removes a stage unless customers still sit in it. The
// in-use check matches on stage name because customer status stores the
// name, not the stage ID.
func (s *PipelineService) DeleteStage(ctx context.Context, caller *auth.Caller, id uuid.UUID) error {
	if !auth.CanManagePipeline(caller) {
		return ErrForbidden
	}

	scope := auth.ResolveScope(caller, nil)
	stage, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return err
	}

	count, err := s.repo.CountCustomersInStage(ctx, stage.OrganizationID, stage.Name)
	if err != nil {
		return fmt.Errorf("failed to count customers in stage: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d customer(s) in stage %q", ErrStageInUse, count, stage.Name)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"stage_id":        id,
		"organization_id": stage.OrganizationID,
	}).Info("Pipeline stage deleted")

	return nil
}

// ReorderStages atomically rewrites sort positions for a batch of
// stages. Any ID outside the caller's scope aborts the whole batch.
func (s *PipelineService) ReorderStages(ctx context.Context, caller *auth.Caller, req *models.ReorderStagesRequest) ([]models.PipelineStage, error) {
	if !auth.CanManagePipeline(caller) {
		return nil, ErrForbidden
	}

	orgID, err := s.targetOrg(caller, req.OrgID)
	if err != nil {
		return nil, err
	}

	scope := auth.ResolveScope(caller, nil)
	if err := s.repo.Reorder(ctx, scope, req.Stages); err != nil {
		return nil, err
	}
	return s.repo.ListByOrg(ctx, orgID)
}

// Vocabulary returns the set of valid customer statuses for an
// organization: its stage names, or the default set when the
// organization has none configured.
func (s *PipelineService) Vocabulary(ctx context.Context, orgID uuid.UUID) ([]string, error) {
	names, err := s.repo.StageNames(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return models.DefaultStageNames, nil
	}
	return names, nil
}

// DefaultStatus is the status new customers receive: the first stage by
// sort order, or the built-in default when no stages exist.
func (s *PipelineService) DefaultStatus(ctx context.Context, orgID uuid.UUID) (string, error) {
	name, err := s.repo.FirstStageName(ctx, orgID)
	if err != nil {
		if err == repository.ErrNotFound {
			return models.DefaultStatus, nil
		}
		return "", err
	}
	return name, nil
}
