package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultStatus is the customer status used when an organization has no
// pipeline stages configured.
const DefaultStatus = "NEW"

// DefaultStageNames is the fallback status vocabulary for organizations
// without configured stages. It is the single source for every default and
// fallback decision over customer statuses.
var DefaultStageNames = []string{"NEW", "CONTACTED", "QUALIFIED", "PROPOSAL", "WON", "LOST"}

// PipelineStage is a named, ordered step in an organization's sales process.
// Stage names double as the status vocabulary for that organization's
// customers; Order values define progression order and need not be
// contiguous.
type PipelineStage struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `json:"organizationId" gorm:"type:uuid;not null;index"`
	Name           string    `json:"name" gorm:"not null"`
	Color          string    `json:"color" gorm:"default:'#6B7280'"`
	Order          int       `json:"order" gorm:"column:sort_order;default:0"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (PipelineStage) TableName() string {
	return "pipeline_stages"
}

// CreateStageRequest creates a pipeline stage. OrgID is honored only for
// platform callers.
type CreateStageRequest struct {
	Name  string     `json:"name" binding:"required"`
	Color string     `json:"color"`
	Order int        `json:"order"`
	OrgID *uuid.UUID `json:"orgId,omitempty"`
}

// UpdateStageRequest updates a stage's display fields.
type UpdateStageRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Order *int    `json:"order,omitempty"`
}

// StageOrder is one entry of a bulk reorder batch.
type StageOrder struct {
	ID    uuid.UUID `json:"id" binding:"required"`
	Order int       `json:"order"`
}

// ReorderStagesRequest applies all entries as a single atomic batch.
// OrgID is honored only for platform callers.
type ReorderStagesRequest struct {
	Stages []StageOrder `json:"stages" binding:"required,min=1"`
	OrgID  *uuid.UUID   `json:"orgId,omitempty"`
}
