package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"crm-service/internal/auth"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID, scope auth.Scope, ownership auth.Ownership) (*models.Customer, error) {
	args := m.Called(ctx, id, scope, ownership)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, filter repository.CustomerFilter) ([]models.Customer, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Customer, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) AddHandler(ctx context.Context, customerID, userID uuid.UUID) error {
	args := m.Called(ctx, customerID, userID)
	return args.Error(0)
}

func (m *MockCustomerRepository) RemoveHandler(ctx context.Context, customerID, userID uuid.UUID) error {
	args := m.Called(ctx, customerID, userID)
	return args.Error(0)
}

func (m *MockCustomerRepository) CountByStatus(ctx context.Context, scope auth.Scope, ownership auth.Ownership, status string) (int64, error) {
	args := m.Called(ctx, scope, ownership, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) CountOwned(ctx context.Context, orgID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orgID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) CreateInteraction(ctx context.Context, interaction *models.Interaction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func (m *MockCustomerRepository) ListInteractions(ctx context.Context, customerID uuid.UUID) ([]models.Interaction, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Interaction), args.Error(1)
}

func (m *MockCustomerRepository) GetInteraction(ctx context.Context, id uuid.UUID, scope auth.Scope) (*models.Interaction, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interaction), args.Error(1)
}

func (m *MockCustomerRepository) DeleteInteraction(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.User, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) CreateWithOrganization(ctx context.Context, org *models.Organization, user *models.User) error {
	args := m.Called(ctx, org, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) ListVisible(ctx context.Context, scope auth.Scope, includeSuperAdmin bool) ([]models.Role, error) {
	args := m.Called(ctx, scope, includeSuperAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Role), args.Error(1)
}

func (m *MockRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) GetGlobalByName(ctx context.Context, name string) (*models.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) Create(ctx context.Context, role *models.Role, permissionIDs []uuid.UUID) error {
	args := m.Called(ctx, role, permissionIDs)
	return args.Error(0)
}

func (m *MockRoleRepository) Update(ctx context.Context, role *models.Role, permissionIDs []uuid.UUID) error {
	args := m.Called(ctx, role, permissionIDs)
	return args.Error(0)
}

func (m *MockRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRoleRepository) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleRepository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Permission), args.Error(1)
}

func (m *MockRoleRepository) GetPermissionsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Permission, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Permission), args.Error(1)
}

type MockPipelineRepository struct {
	mock.Mock
}

func (m *MockPipelineRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.PipelineStage, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PipelineStage), args.Error(1)
}

func (m *MockPipelineRepository) GetByID(ctx context.Context, id uuid.UUID, scope auth.Scope) (*models.PipelineStage, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PipelineStage), args.Error(1)
}

func (m *MockPipelineRepository) Create(ctx context.Context, stage *models.PipelineStage) error {
	args := m.Called(ctx, stage)
	return args.Error(0)
}

func (m *MockPipelineRepository) Update(ctx context.Context, stage *models.PipelineStage) error {
	args := m.Called(ctx, stage)
	return args.Error(0)
}

func (m *MockPipelineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPipelineRepository) Reorder(ctx context.Context, scope auth.Scope, orders []models.StageOrder) error {
	args := m.Called(ctx, scope, orders)
	return args.Error(0)
}

func (m *MockPipelineRepository) StageNames(ctx context.Context, orgID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPipelineRepository) FirstStageName(ctx context.Context, orgID uuid.UUID) (string, error) {
	args := m.Called(ctx, orgID)
	return args.String(0), args.Error(1)
}

func (m *MockPipelineRepository) CountCustomersInStage(ctx context.Context, orgID uuid.UUID, stageName string) (int64, error) {
	args := m.Called(ctx, orgID, stageName)
	return args.Get(0).(int64), args.Error(1)
}
