package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"crm-service/internal/auth"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

// AuthService handles registration, login and organization membership.
type AuthService struct {
	users  repository.UserRepositoryInterface
	roles  repository.RoleRepositoryInterface
	issuer *auth.TokenIssuer
	logger *logrus.Entry
}

func NewAuthService(
	users repository.UserRepositoryInterface,
	roles repository.RoleRepositoryInterface,
	issuer *auth.TokenIssuer,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		roles:  roles,
		issuer: issuer,
		logger: logger.WithField("component", "auth_service"),
	}
}

// Register creates a new organization together with its first user, who
// receives the global ORG_ADMIN role. Both rows are written in one
// transaction.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if existing, err := s.users.GetByEmail(ctx, req.Email); err != nil && err != repository.ErrNotFound {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	adminRole, err := s.roles.GetGlobalByName(ctx, models.RoleOrgAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s role: %w", models.RoleOrgAdmin, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	org := &models.Organization{Name: req.CompanyName}
	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		RoleID:   adminRole.ID,
	}
	if err := s.users.CreateWithOrganization(ctx, org, user); err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":         user.ID,
		"organization_id": org.ID,
	}).Info("Organization registered")

	user.Role = adminRole
	user.Organization = org
	return s.buildAuthResponse(user, true)
}

// Login verifies credentials and issues a token. Unknown emails and bad
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return s.buildAuthResponse(user, true)
}

// Me returns the authenticated user's profile without a fresh token.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.AuthResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildAuthResponse(user, false)
}

// ListUsers returns the members of the caller's organization.
func (s *AuthService) ListUsers(ctx context.Context, caller *auth.Caller, explicitOrgID *uuid.UUID) ([]models.UserSummary, error) {
	if !auth.CanListUsers(caller) {
		return nil, ErrForbidden
	}

	scope := auth.ResolveScope(caller, explicitOrgID)
	if scope.All {
		// Platform callers must pin an organization to list members.
		if caller.OrganizationID == nil {
			return nil, ErrNoOrganization
		}
		scope.OrgID = *caller.OrganizationID
	}

	users, err := s.users.ListByOrganization(ctx, scope.OrgID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		summary := models.UserSummary{
			ID:     u.ID,
			Name:   u.Name,
			Email:  u.Email,
			RoleID: u.RoleID,
		}
		if u.Role != nil {
			summary.Role = u.Role.Name
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// CreateUser invites a user into the caller's organization with the
// given role. Granting SUPER_ADMIN is reserved for platform callers.
func (s *AuthService) CreateUser(ctx context.Context, caller *auth.Caller, req *models.CreateUserRequest) (*models.UserSummary, error) {
	if !caller.IsPlatform() && caller.Kind() != auth.KindOrgAdmin {
		return nil, ErrForbidden
	}
	if caller.OrganizationID == nil {
		return nil, ErrNoOrganization
	}

	if existing, err := s.users.GetByEmail(ctx, req.Email); err != nil && err != repository.ErrNotFound {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	role, err := s.roles.GetByID(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	if role.Name == models.RoleSuperAdmin && !caller.IsPlatform() {
		return nil, ErrForbidden
	}
	if !role.IsGlobal {
		if role.OrganizationID == nil || *role.OrganizationID != *caller.OrganizationID {
			return nil, repository.ErrNotFound
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:           req.Name,
		Email:          req.Email,
		Password:       string(hash),
		OrganizationID: caller.OrganizationID,
		RoleID:         role.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":         user.ID,
		"organization_id": caller.OrganizationID,
		"role":            role.Name,
	}).Info("User created")

	return &models.UserSummary{
		ID:     user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   role.Name,
		RoleID: role.ID,
	}, nil
}

func (s *AuthService) buildAuthResponse(user *models.User, withToken bool) (*models.AuthResponse, error) {
	var roleName string
	var permissions []string
	if user.Role != nil {
		roleName = user.Role.Name
		permissions = user.Role.PermissionStrings()
	}

	resp := &models.AuthResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           roleName,
		RoleID:         user.RoleID,
		Permissions:    permissions,
		OrganizationID: user.OrganizationID,
	}
	if user.Organization != nil {
		resp.OrganizationName = user.Organization.Name
	}

	if withToken {
		token, err := s.issuer.Issue(user.ID, user.OrganizationID, user.RoleID, roleName)
		if err != nil {
			return nil, err
		}
		resp.Token = token
	}
	return resp, nil
}
