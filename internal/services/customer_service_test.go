package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crm-service/internal/auth"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

func newCustomerService(repo *MockCustomerRepository, users *MockUserRepository, stages *MockPipelineRepository) *CustomerService {
	pipeline := NewPipelineService(stages, testLogger())
	return NewCustomerService(repo, users, pipeline, nil, testLogger())
}

func TestCreateCustomerDefaultsStatusFromPipeline(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()
	caller := orgAdminCaller(orgID)

	stages.On("FirstStageName", mock.Anything, orgID).Return("Incoming", nil)
	users.On("GetByID", mock.Anything, caller.UserID).Return(&models.User{ID: caller.UserID, Name: "Jane Doe"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *models.Customer) bool {
		return c.Status == "Incoming" && c.OrganizationID == orgID && c.CreatedByID == caller.UserID
	})).Return(nil)

	customer, err := service.Create(context.Background(), caller, &models.CreateCustomerRequest{
		Name:  "Acme",
		Email: "contact@acme.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "Incoming", customer.Status)
	assert.Equal(t, "User: Jane Doe", customer.Source)
	repo.AssertExpectations(t)
}

func TestCreateCustomerFallsBackToDefaultStatus(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()
	caller := orgAdminCaller(orgID)

	stages.On("FirstStageName", mock.Anything, orgID).Return("", repository.ErrNotFound)
	users.On("GetByID", mock.Anything, caller.UserID).Return(&models.User{ID: caller.UserID, Name: "Jane"}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	customer, err := service.Create(context.Background(), caller, &models.CreateCustomerRequest{
		Name:  "Acme",
		Email: "contact@acme.test",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStatus, customer.Status)
}

func TestCreateCustomerRejectsUnknownStatus(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()

	stages.On("StageNames", mock.Anything, orgID).Return([]string{}, nil)

	_, err := service.Create(context.Background(), orgAdminCaller(orgID), &models.CreateCustomerRequest{
		Name:   "Acme",
		Email:  "contact@acme.test",
		Status: "BOGUS",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestListRestrictedCallerForcesOwnership(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()
	caller := employeeCaller(orgID)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.CustomerFilter) bool {
		return f.Scope.OrgID == orgID &&
			f.Ownership.Restricted() &&
			*f.Ownership.UserID == caller.UserID &&
			f.HandlerID == nil
	})).Return([]models.Customer{}, nil)

	// The handler filter is ignored for restricted callers.
	_, err := service.List(context.Background(), caller, ListParams{HandlerID: uuid.New().String()})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListHandlerMe(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()
	caller := orgAdminCaller(orgID)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.CustomerFilter) bool {
		return f.HandlerID != nil && *f.HandlerID == caller.UserID && !f.Ownership.Restricted()
	})).Return([]models.Customer{}, nil)

	_, err := service.List(context.Background(), caller, ListParams{HandlerID: "me"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSetStatusValidTransition(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()
	customerID := uuid.New()

	repo.On("GetByID", mock.Anything, customerID, mock.Anything, mock.Anything).
		Return(&models.Customer{ID: customerID, OrganizationID: orgID, Status: "NEW"}, nil)
	stages.On("StageNames", mock.Anything, orgID).Return([]string{}, nil)
	repo.On("UpdateStatus", mock.Anything, customerID, "WON").
		Return(&models.Customer{ID: customerID, OrganizationID: orgID, Status: "WON"}, nil)

	customer, err := service.SetStatus(context.Background(), orgAdminCaller(orgID), customerID, "WON")
	require.NoError(t, err)
	assert.Equal(t, "WON", customer.Status)
}

func TestSetStatusOutsideVocabulary(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()
	customerID := uuid.New()

	repo.On("GetByID", mock.Anything, customerID, mock.Anything, mock.Anything).
		Return(&models.Customer{ID: customerID, OrganizationID: orgID, Status: "Incoming"}, nil)
	stages.On("StageNames", mock.Anything, orgID).Return([]string{"Incoming", "Closed"}, nil)

	_, err := service.SetStatus(context.Background(), orgAdminCaller(orgID), customerID, "WON")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetStatusIdempotent(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()
	customerID := uuid.New()

	repo.On("GetByID", mock.Anything, customerID, mock.Anything, mock.Anything).
		Return(&models.Customer{ID: customerID, OrganizationID: orgID, Status: "QUALIFIED"}, nil)
	stages.On("StageNames", mock.Anything, orgID).Return([]string{}, nil)
	repo.On("UpdateStatus", mock.Anything, customerID, "QUALIFIED").
		Return(&models.Customer{ID: customerID, OrganizationID: orgID, Status: "QUALIFIED"}, nil)

	// Re-setting the current status succeeds.
	customer, err := service.SetStatus(context.Background(), orgAdminCaller(orgID), customerID, "QUALIFIED")
	require.NoError(t, err)
	assert.Equal(t, "QUALIFIED", customer.Status)
}

func TestDeleteCustomerRequiresAdmin(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()

	err := service.Delete(context.Background(), employeeCaller(orgID), uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	salesAgent := &auth.Caller{UserID: uuid.New(), Role: models.RoleSalesAgent, OrganizationID: &orgID}
	err = service.Delete(context.Background(), salesAgent, uuid.New())
	assert.ErrorIs(t, err, ErrForbidden)

	repo.AssertNotCalled(t, "DeleteCascade", mock.Anything, mock.Anything)
}

func TestDeleteCustomerCascades(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()
	customerID := uuid.New()

	repo.On("GetByID", mock.Anything, customerID, auth.Scope{OrgID: orgID}, auth.Ownership{}).
		Return(&models.Customer{ID: customerID, OrganizationID: orgID}, nil)
	repo.On("DeleteCascade", mock.Anything, customerID).Return(nil)

	err := service.Delete(context.Background(), orgAdminCaller(orgID), customerID)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteCustomerOtherTenantLooksMissing(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()
	customerID := uuid.New()

	repo.On("GetByID", mock.Anything, customerID, mock.Anything, mock.Anything).
		Return(nil, repository.ErrNotFound)

	err := service.Delete(context.Background(), orgAdminCaller(orgID), customerID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	repo.AssertNotCalled(t, "DeleteCascade", mock.Anything, mock.Anything)
}

func TestAssignHandlerGate(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()
	customerID := uuid.New()
	handlerID := uuid.New()

	_, err := service.AssignHandler(context.Background(), employeeCaller(orgID), customerID, handlerID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Sales agents may take over any lead in their organization.
	agent := &auth.Caller{UserID: uuid.New(), Role: models.RoleSalesAgent, OrganizationID: &orgID}
	repo.On("GetByID", mock.Anything, customerID, auth.Scope{OrgID: orgID}, auth.Ownership{}).
		Return(&models.Customer{ID: customerID, OrganizationID: orgID}, nil)
	repo.On("AddHandler", mock.Anything, customerID, handlerID).Return(nil)

	_, err = service.AssignHandler(context.Background(), agent, customerID, handlerID)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestStatsAggregatesVocabulary(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	orgID := uuid.New()
	caller := employeeCaller(orgID)

	stages.On("StageNames", mock.Anything, orgID).Return([]string{"Incoming", "Closed"}, nil)
	repo.On("CountByStatus", mock.Anything, mock.Anything, mock.Anything, "Incoming").Return(int64(4), nil)
	repo.On("CountByStatus", mock.Anything, mock.Anything, mock.Anything, "Closed").Return(int64(1), nil)
	repo.On("CountOwned", mock.Anything, orgID, caller.UserID).Return(int64(5), nil)

	stats, err := service.Stats(context.Background(), caller, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(5), stats.MyLeads)
	assert.Equal(t, int64(4), stats.Stages["Incoming"])
	assert.Equal(t, int64(1), stats.Stages["Closed"])
}

func TestStatsPlatformPinnedOrg(t *testing.T) {
	repo := new(MockCustomerRepository)
	users := new(MockUserRepository)
	stages := new(MockPipelineRepository)
	service := newCustomerService(repo, users, stages)
	targetOrg := uuid.New()
	caller := platformCaller()

	// Everything, including the my-leads count, follows the pinned org.
	stages.On("StageNames", mock.Anything, targetOrg).Return([]string{"Incoming"}, nil)
	repo.On("CountByStatus", mock.Anything, auth.Scope{OrgID: targetOrg}, auth.Ownership{}, "Incoming").Return(int64(7), nil)
	repo.On("CountOwned", mock.Anything, targetOrg, caller.UserID).Return(int64(0), nil)

	stats, err := service.Stats(context.Background(), caller, &targetOrg)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.Total)
	assert.Equal(t, int64(0), stats.MyLeads)
	repo.AssertExpectations(t)
	stages.AssertExpectations(t)
}
