package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-service/internal/models"
	"crm-service/internal/services"
)

// CustomerHandler handles HTTP requests for customers
type CustomerHandler struct {
	service *services.CustomerService
}

func NewCustomerHandler(service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// CreateCustomer creates a customer in the caller's organization
// @Summary Create customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body models.CreateCustomerRequest true "New customer"
// @Success 201 {object} models.Customer
// @Security BearerAuth
// @Router /api/v1/customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.service.Create(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// ListCustomers lists customers visible to the caller
// @Summary List customers
// @Tags Customers
// @Produce json
// @Param status query string false "Filter by status"
// @Param handlerId query string false "Filter by handler ('me' or user ID)"
// @Param search query string false "Search name, email and company"
// @Param orgId query string false "Organization ID (platform callers only)"
// @Success 200 {array} models.Customer
// @Security BearerAuth
// @Router /api/v1/customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	orgID, ok := orgIDQuery(c)
	if !ok {
		return
	}

	customers, err := h.service.List(c.Request.Context(), caller, services.ListParams{
		Status:    c.Query("status"),
		HandlerID: c.Query("handlerId"),
		Search:    c.Query("search"),
		OrgID:     orgID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// GetCustomer fetches one customer
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} models.Customer
// @Security BearerAuth
// @Router /api/v1/customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	customer, err := h.service.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer updates a customer's contact fields
// @Summary Update customer
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body models.UpdateCustomerRequest true "Fields to update"
// @Success 200 {object} models.Customer
// @Security BearerAuth
// @Router /api/v1/customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.service.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateStatus moves a customer to another pipeline stage
// @Summary Update customer status
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body models.UpdateStatusRequest true "Target status"
// @Success 200 {object} models.Customer
// @Security BearerAuth
// @Router /api/v1/customers/{id}/status [patch]
func (h *CustomerHandler) UpdateStatus(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.service.SetStatus(c.Request.Context(), caller, id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer with all dependent records
// @Summary Delete customer
// @Tags Customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
}

// AssignHandler connects a user to a customer
// @Summary Assign handler
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body models.HandlerRequest true "Handler"
// @Success 200 {object} models.Customer
// @Security BearerAuth
// @Router /api/v1/customers/{id}/handlers [post]
func (h *CustomerHandler) AssignHandler(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.HandlerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.service.AssignHandler(c.Request.Context(), caller, id, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UnassignHandler disconnects a user from a customer
// @Summary Unassign handler
// @Tags Customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body models.HandlerRequest true "Handler"
// @Success 200 {object} models.Customer
// @Security BearerAuth
// @Router /api/v1/customers/{id}/handlers [delete]
func (h *CustomerHandler) UnassignHandler(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.HandlerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.service.UnassignHandler(c.Request.Context(), caller, id, req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Stats summarizes the caller's visible pipeline
// @Summary Customer stats
// @Tags Customers
// @Produce json
// @Param orgId query string false "Organization ID (platform callers only)"
// @Success 200 {object} models.CustomerStats
// @Security BearerAuth
// @Router /api/v1/customers/stats [get]
func (h *CustomerHandler) Stats(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	orgID, ok := orgIDQuery(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), caller, orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
