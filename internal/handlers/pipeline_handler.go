package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crm-service/internal/models"
	"crm-service/internal/services"
)

// PipelineHandler handles HTTP requests for pipeline stages
type PipelineHandler struct {
	service *services.PipelineService
}

func NewPipelineHandler(service *services.PipelineService) *PipelineHandler {
	return &PipelineHandler{service: service}
}

// ListStages lists an organization's pipeline stages in order
// @Summary List pipeline stages
// @Tags Pipeline
// @Produce json
// @Param orgId query string false "Organization ID (platform callers only)"
// @Success 200 {array} models.PipelineStage
// @Security BearerAuth
// @Router /api/v1/pipeline/stages [get]
func (h *PipelineHandler) ListStages(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	orgID, ok := orgIDQuery(c)
	if !ok {
		return
	}

	stages, err := h.service.ListStages(c.Request.Context(), caller, orgID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stages)
}

// CreateStage adds a pipeline stage
// @Summary Create pipeline stage
// @Tags Pipeline
// @Accept json
// @Produce json
// @Param request body models.CreateStageRequest true "New stage"
// @Success 201 {object} models.PipelineStage
// @Security BearerAuth
// @Router /api/v1/pipeline/stages [post]
func (h *PipelineHandler) CreateStage(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req models.CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stage, err := h.service.CreateStage(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stage)
}

// UpdateStage updates a stage's display fields
// @Summary Update pipeline stage
// @Tags Pipeline
// @Accept json
// @Produce json
// @Param id path string true "Stage ID"
// @Param request body models.UpdateStageRequest true "Fields to update"
// @Success 200 {object} models.PipelineStage
// @Security BearerAuth
// @Router /api/v1/pipeline/stages/{id} [put]
func (h *PipelineHandler) UpdateStage(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stage, err := h.service.UpdateStage(c.Request.Context(), caller, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stage)
}

// DeleteStage removes a stage with no customers in it
// @Summary Delete pipeline stage
// @Tags Pipeline
// @Produce json
// @Param id path string true "Stage ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /api/v1/pipeline/stages/{id} [delete]
func (h *PipelineHandler) DeleteStage(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteStage(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stage deleted"})
}

// ReorderStages rewrites stage positions as one atomic batch
// @Summary Reorder pipeline stages
// @Tags Pipeline
// @Accept json
// @Produce json
// @Param request body models.ReorderStagesRequest true "New order"
// @Success 200 {array} models.PipelineStage
// @Security BearerAuth
// @Router /api/v1/pipeline/stages/reorder [put]
func (h *PipelineHandler) ReorderStages(c *gin.Context) {
	caller, ok := mustCaller(c)
	if !ok {
		return
	}

	var req models.ReorderStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stages, err := h.service.ReorderStages(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stages)
}
