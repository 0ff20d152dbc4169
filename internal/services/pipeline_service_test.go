package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crm-service/internal/auth"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func orgAdminCaller(orgID uuid.UUID) *auth.Caller {
	return &auth.Caller{UserID: uuid.New(), Role: models.RoleOrgAdmin, OrganizationID: &orgID}
}

func employeeCaller(orgID uuid.UUID) *auth.Caller {
	return &auth.Caller{UserID: uuid.New(), Role: models.RoleEmployee, OrganizationID: &orgID}
}

func platformCaller() *auth.Caller {
	return &auth.Caller{UserID: uuid.New(), Role: models.RoleSuperAdmin}
}

func TestCreateStageRequiresAdmin(t *testing.T) {
	repo := new(MockPipelineRepository)
	service := NewPipelineService(repo, testLogger())
	orgID := uuid.New()

	_, err := service.CreateStage(context.Background(), employeeCaller(orgID), &models.CreateStageRequest{Name: "Demo"})
	assert.ErrorIs(t, err, ErrForbidden)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateStagePinsCallerOrg(t *testing.T) {
	repo := new(MockPipelineRepository)
	service := NewPipelineService(repo, testLogger())
	orgID := uuid.New()
	otherOrg := uuid.New()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.PipelineStage) bool {
		return s.OrganizationID == orgID
	})).Return(nil)

	// The explicit org is ignored for non-platform callers.
	stage, err := service.CreateStage(context.Background(), orgAdminCaller(orgID), &models.CreateStageRequest{
		Name:  "Demo",
		OrgID: &otherOrg,
	})
	require.NoError(t, err)
	assert.Equal(t, orgID, stage.OrganizationID)
	repo.AssertExpectations(t)
}

func TestDeleteStageInUse(t *testing.T) {
	repo := new(MockPipelineRepository)
	service := NewPipelineService(repo, testLogger())
	orgID := uuid.New()
	stageID := uuid.New()

	repo.On("GetByID", mock.Anything, stageID, mock.Anything).
		Return(&models.PipelineStage{ID: stageID, OrganizationID: orgID, Name: "QUALIFIED"}, nil)
	repo.On("CountCustomersInStage", mock.Anything, orgID, "QUALIFIED").Return(int64(3), nil)

	err := service.DeleteStage(context.Background(), orgAdminCaller(orgID), stageID)
	assert.ErrorIs(t, err, ErrStageInUse)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteStageEmpty(t *testing.T) {
	repo := new(MockPipelineRepository)
	service := NewPipelineService(repo, testLogger())
	orgID := uuid.New()
	stageID := uuid.New()

	repo.On("GetByID", mock.Anything, stageID, mock.Anything).
		Return(&models.PipelineStage{ID: stageID, OrganizationID: orgID, Name: "LOST"}, nil)
	repo.On("CountCustomersInStage", mock.Anything, orgID, "LOST").Return(int64(0), nil)
	repo.On("Delete", mock.Anything, stageID).Return(nil)

	err := service.DeleteStage(context.Background(), orgAdminCaller(orgID), stageID)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestReorderStagesAbortsOnForeignStage(t *testing.T) {
	repo := new(MockPipelineRepository)
	service := NewPipelineService(repo, testLogger())
	orgID := uuid.New()

	orders := []models.StageOrder{{ID: uuid.New(), Order: 0}, {ID: uuid.New(), Order: 1}}
	// A stage outside the caller's scope fails the whole batch.
	repo.On("Reorder", mock.Anything, auth.Scope{OrgID: orgID}, orders).Return(repository.ErrNotFound)

	_, err := service.ReorderStages(context.Background(), orgAdminCaller(orgID), &models.ReorderStagesRequest{Stages: orders})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	repo.AssertNotCalled(t, "ListByOrg", mock.Anything, mock.Anything)
}

func TestReorderStagesRequiresAdmin(t *testing.T) {
	repo := new(MockPipelineRepository)
	service := NewPipelineService(repo, testLogger())
	orgID := uuid.New()

	_, err := service.ReorderStages(context.Background(), employeeCaller(orgID), &models.ReorderStagesRequest{
		Stages: []models.StageOrder{{ID: uuid.New(), Order: 0}},
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestVocabularyFallsBackToDefaults(t *testing.T) {
	repo := new(MockPipelineRepository)
	service := NewPipelineService(repo, testLogger())
	orgID := uuid.New()

	repo.On("StageNames", mock.Anything, orgID).Return([]string{}, nil)

	vocab, err := service.Vocabulary(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStageNames, vocab)
}

func TestVocabularyUsesConfiguredStages(t *testing.T) {
	repo := new(MockPipelineRepository)
	service := NewPipelineService(repo, testLogger())
	orgID := uuid.New()

	repo.On("StageNames", mock.Anything, orgID).Return([]string{"Incoming", "Negotiation", "Closed"}, nil)

	vocab, err := service.Vocabulary(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Incoming", "Negotiation", "Closed"}, vocab)
}

func TestDefaultStatus(t *testing.T) {
	repo := new(MockPipelineRepository)
	service := NewPipelineService(repo, testLogger())
	orgID := uuid.New()

	repo.On("FirstStageName", mock.Anything, orgID).Return("Incoming", nil)
	status, err := service.DefaultStatus(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, "Incoming", status)

	empty := new(MockPipelineRepository)
	emptyService := NewPipelineService(empty, testLogger())
	empty.On("FirstStageName", mock.Anything, orgID).Return("", repository.ErrNotFound)
	status, err = emptyService.DefaultStatus(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStatus, status)
}
