package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant: the unit of data isolation. Every user,
// customer, org-scoped role and pipeline stage belongs to exactly one.
type Organization struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relationships
	Users     []User          `json:"users,omitempty" gorm:"foreignKey:OrganizationID"`
	Customers []Customer      `json:"customers,omitempty" gorm:"foreignKey:OrganizationID"`
	Stages    []PipelineStage `json:"stages,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (Organization) TableName() string {
	return "organizations"
}
