package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"crm-service/internal/auth"
	"crm-service/internal/events"
	"crm-service/internal/models"
	"crm-service/internal/repository"
)

// CustomerService implements customer CRUD, handler assignment, status
// transitions and stats. Every read and write goes through the caller's
// resolved tenant scope; restricted callers additionally see only
// customers they created or handle.
type CustomerService struct {
	repo      repository.CustomerRepositoryInterface
	users     repository.UserRepositoryInterface
	pipeline  *PipelineService
	publisher *events.Publisher
	logger    *logrus.Entry
}

func NewCustomerService(
	repo repository.CustomerRepositoryInterface,
	users repository.UserRepositoryInterface,
	pipeline *PipelineService,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *CustomerService {
	return &CustomerService{
		repo:      repo,
		users:     users,
		pipeline:  pipeline,
		publisher: publisher,
		logger:    logger.WithField("component", "customer_service"),
	}
}

// ListParams carries the optional customer list filters. HandlerID may
// be a user UUID or the literal "me".
type ListParams struct {
	Status    string
	HandlerID string
	Search    string
	OrgID     *uuid.UUID
}

func (s *CustomerService) Create(ctx context.Context, caller *auth.Caller, req *models.CreateCustomerRequest) (*models.Customer, error) {
	if caller.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	orgID := *caller.OrganizationID

	status := req.Status
	if status == "" {
		var err error
		status, err = s.pipeline.DefaultStatus(ctx, orgID)
		if err != nil {
			return nil, err
		}
	} else if err := s.checkStatus(ctx, orgID, status); err != nil {
		return nil, err
	}

	source := "User"
	if creator, err := s.users.GetByID(ctx, caller.UserID); err == nil {
		source = "User: " + creator.Name
	}

	customer := &models.Customer{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Company:        req.Company,
		Status:         status,
		Source:         source,
		OrganizationID: orgID,
		CreatedByID:    caller.UserID,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id":     customer.ID,
		"organization_id": orgID,
		"created_by":      caller.UserID,
	}).Info("Customer created")

	s.publishAsync(customer, events.CustomerCreated)
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*models.Customer, error) {
	return s.repo.GetByID(ctx, id, auth.ResolveScope(caller, nil), auth.OwnershipOf(caller))
}

func (s *CustomerService) List(ctx context.Context, caller *auth.Caller, params ListParams) ([]models.Customer, error) {
	filter := repository.CustomerFilter{
		Scope:     auth.ResolveScope(caller, params.OrgID),
		Ownership: auth.OwnershipOf(caller),
		Status:    params.Status,
		Search:    params.Search,
	}

	// The handler filter is a convenience for unrestricted callers;
	// restricted callers are already pinned to their own customers.
	if params.HandlerID != "" && !caller.IsRestricted() {
		handlerID := caller.UserID
		if params.HandlerID != "me" {
			parsed, err := uuid.Parse(params.HandlerID)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid handler id", ErrValidation)
			}
			handlerID = parsed
		}
		filter.HandlerID = &handlerID
	}

	return s.repo.List(ctx, filter)
}

func (s *CustomerService) Update(ctx context.Context, caller *auth.Caller, id uuid.UUID, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id, auth.ResolveScope(caller, nil), auth.OwnershipOf(caller))
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Company != nil {
		customer.Company = *req.Company
	}
	if req.Status != nil && *req.Status != customer.Status {
		if err := s.checkStatus(ctx, customer.OrganizationID, *req.Status); err != nil {
			return nil, err
		}
		customer.Status = *req.Status
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	s.publishAsync(customer, events.CustomerUpdated)
	return customer, nil
}

// Delete removes a customer and all of its dependent records in one
// transaction. Only admin-tier callers may delete.
func (s *CustomerService) Delete(ctx context.Context, caller *auth.Caller, id uuid.UUID) error {
	if !auth.CanDeleteCustomer(caller) {
		return ErrForbidden
	}

	customer, err := s.repo.GetByID(ctx, id, auth.ResolveScope(caller, nil), auth.Ownership{})
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id":     id,
		"organization_id": customer.OrganizationID,
		"deleted_by":      caller.UserID,
	}).Info("Customer deleted")

	s.publishAsync(customer, events.CustomerDeleted)
	return nil
}

// SetStatus moves a customer to any status in its organization's
// vocabulary. Transitions are unordered; setting the current status
// again is a no-op that still succeeds.
func (s *CustomerService) SetStatus(ctx context.Context, caller *auth.Caller, id uuid.UUID, status string) (*models.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id, auth.ResolveScope(caller, nil), auth.OwnershipOf(caller))
	if err != nil {
		return nil, err
	}

	if err := s.checkStatus(ctx, customer.OrganizationID, status); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id": id,
		"from":        customer.Status,
		"to":          status,
	}).Info("Customer status changed")

	s.publishAsync(updated, events.CustomerStatusChanged)
	return updated, nil
}

// AssignHandler connects a user to a customer. Admin-tier callers and
// sales agents may manage handlers; agents use this to take over leads
// outside their own book.
func (s *CustomerService) AssignHandler(ctx context.Context, caller *auth.Caller, customerID, userID uuid.UUID) (*models.Customer, error) {
	if !auth.CanManageHandlers(caller) {
		return nil, ErrForbidden
	}

	scope := auth.ResolveScope(caller, nil)
	if _, err := s.repo.GetByID(ctx, customerID, scope, auth.Ownership{}); err != nil {
		return nil, err
	}

	if err := s.repo.AddHandler(ctx, customerID, userID); err != nil {
		return nil, fmt.Errorf("failed to assign handler: %w", err)
	}
	return s.repo.GetByID(ctx, customerID, scope, auth.Ownership{})
}

func (s *CustomerService) UnassignHandler(ctx context.Context, caller *auth.Caller, customerID, userID uuid.UUID) (*models.Customer, error) {
	if !auth.CanManageHandlers(caller) {
		return nil, ErrForbidden
	}

	scope := auth.ResolveScope(caller, nil)
	if _, err := s.repo.GetByID(ctx, customerID, scope, auth.Ownership{}); err != nil {
		return nil, err
	}

	if err := s.repo.RemoveHandler(ctx, customerID, userID); err != nil {
		return nil, fmt.Errorf("failed to unassign handler: %w", err)
	}
	return s.repo.GetByID(ctx, customerID, scope, auth.Ownership{})
}

// Stats summarizes the caller's visible pipeline: a per-stage count over
// the organization's status vocabulary, the visible total, and the
// caller's own lead count.
func (s *CustomerService) Stats(ctx context.Context, caller *auth.Caller, explicitOrgID *uuid.UUID) (*models.CustomerStats, error) {
	scope := auth.ResolveScope(caller, explicitOrgID)
	ownership := auth.OwnershipOf(caller)

	// The vocabulary and the my-leads count follow the resolved
	// organization: the pinned one when the scope is pinned, the
	// caller's own otherwise.
	statsOrg := scope.OrgID
	haveOrg := !scope.All
	if scope.All && caller.OrganizationID != nil {
		statsOrg = *caller.OrganizationID
		haveOrg = true
	}
	vocab, err := s.pipeline.Vocabulary(ctx, statsOrg)
	if err != nil {
		return nil, err
	}

	stats := &models.CustomerStats{Stages: make(map[string]int64, len(vocab))}
	for _, status := range vocab {
		count, err := s.repo.CountByStatus(ctx, scope, ownership, status)
		if err != nil {
			return nil, err
		}
		stats.Stages[status] = count
		stats.Total += count
	}

	if haveOrg {
		myLeads, err := s.repo.CountOwned(ctx, statsOrg, caller.UserID)
		if err != nil {
			return nil, err
		}
		stats.MyLeads = myLeads
	}

	return stats, nil
}

func (s *CustomerService) CreateInteraction(ctx context.Context, caller *auth.Caller, req *models.CreateInteractionRequest) (*models.Interaction, error) {
	// Visibility of the customer is the only gate for logging touchpoints.
	if _, err := s.repo.GetByID(ctx, req.CustomerID, auth.ResolveScope(caller, nil), auth.OwnershipOf(caller)); err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	interaction := &models.Interaction{
		CustomerID: req.CustomerID,
		UserID:     caller.UserID,
		Type:       req.Type,
		Details:    req.Details,
		Date:       date,
	}
	if err := s.repo.CreateInteraction(ctx, interaction); err != nil {
		return nil, fmt.Errorf("failed to create interaction: %w", err)
	}
	return interaction, nil
}

func (s *CustomerService) ListInteractions(ctx context.Context, caller *auth.Caller, customerID uuid.UUID) ([]models.Interaction, error) {
	if _, err := s.repo.GetByID(ctx, customerID, auth.ResolveScope(caller, nil), auth.OwnershipOf(caller)); err != nil {
		return nil, err
	}
	return s.repo.ListInteractions(ctx, customerID)
}

func (s *CustomerService) DeleteInteraction(ctx context.Context, caller *auth.Caller, id uuid.UUID) error {
	if _, err := s.repo.GetInteraction(ctx, id, auth.ResolveScope(caller, nil)); err != nil {
		return err
	}
	return s.repo.DeleteInteraction(ctx, id)
}

// checkStatus validates a status against the organization's vocabulary.
func (s *CustomerService) checkStatus(ctx context.Context, orgID uuid.UUID, status string) error {
	vocab, err := s.pipeline.Vocabulary(ctx, orgID)
	if err != nil {
		return err
	}
	for _, name := range vocab {
		if name == status {
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not one of [%s]", ErrInvalidStatus, status, strings.Join(vocab, ", "))
}

// publishAsync fires an event off the request path. Publishing failures
// are logged inside the publisher and never affect the API response.
func (s *CustomerService) publishAsync(customer *models.Customer, eventType string) {
	if s.publisher == nil {
		return
	}
	c := *customer
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var err error
		switch eventType {
		case events.CustomerCreated:
			err = s.publisher.PublishCustomerCreated(ctx, &c)
		case events.CustomerUpdated:
			err = s.publisher.PublishCustomerUpdated(ctx, &c)
		case events.CustomerDeleted:
			err = s.publisher.PublishCustomerDeleted(ctx, &c)
		case events.CustomerStatusChanged:
			err = s.publisher.PublishCustomerStatusChanged(ctx, &c)
		}
		if err != nil {
			s.logger.WithError(err).WithField("customer_id", c.ID).Warn("Event publish failed")
		}
	}()
}
