package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm-service/internal/models"
	"crm-service/internal/services"
)

// InteractionHandler handles HTTP requests for customer interactions
type InteractionHandler struct {
	service *services.CustomerService
}

func NewInteractionHandler(service *services.CustomerService) *InteractionHandler {
	return &InteractionHandler{service: service}
}

// CreateInteraction logs a touchpoint on a customer
// @Summary Create interaction
// @Tags Interactions
// @Accept json
// @Produce json
// @Param request body models.CreateInteractionRequest true "Interaction"
// @Success 201 {object} models.Interaction
// @Security BearerAuth
// @Router /api/v1/interactions [post]
func (h *InteractionHandler) CreateInteraction(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req models.CreateInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interaction, err := h.service.CreateInteraction(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interaction)
}

// ListInteractions lists a customer's interactions, newest first
// @Summary List interactions
// @Tags Interactions
// @Produce json
// @Param customerId query string true "Customer ID"
// @Success 200 {array} models.Interaction
// @Security BearerAuth
// @Router /api/v1/interactions [get]
func (h *InteractionHandler) ListInteractions(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	customerID, err := uuid.Parse(c.Query("customerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customerId"})
		return
	}

	interactions, err := h.service.ListInteractions(c.Request.Context(), caller, customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interactions)
}

// DeleteInteraction removes an interaction
// @Summary Delete interaction
// @Tags Interactions
// @Produce json
// @Param id path string true "Interaction ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/interactions/{id} [delete]
func (h *InteractionHandler) DeleteInteraction(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteInteraction(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Interaction deleted"})
}
