package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Customer is a sales lead. Status must match a stage name in the owning
// organization's pipeline (or the fallback vocabulary when none exist).
// CreatedBy and Handlers jointly define ownership for restricted roles.
type Customer struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string    `json:"name" gorm:"not null"`
	Email          string    `json:"email" gorm:"not null"`
	Phone          string    `json:"phone,omitempty"`
	Company        string    `json:"company,omitempty"`
	Status         string    `json:"status" gorm:"not null;index"`
	OrganizationID uuid.UUID `json:"organizationId" gorm:"type:uuid;not null;index"`
	CreatedByID    uuid.UUID `json:"createdById" gorm:"type:uuid;not null;index"`
	Source         string    `json:"source"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Relationships
	CreatedBy    *User         `json:"createdBy,omitempty" gorm:"foreignKey:CreatedByID"`
	Handlers     []User        `json:"handlers,omitempty" gorm:"many2many:customer_handlers"`
	Interactions []Interaction `json:"interactions,omitempty" gorm:"foreignKey:CustomerID"`
}

func (Customer) TableName() string {
	return "customers"
}

// Interaction is a logged touchpoint with a customer. Immutable once
// created except deletion.
type Interaction struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerID uuid.UUID `json:"customerId" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Type       string    `json:"type" gorm:"not null"`
	Details    string    `json:"details"`
	Date       time.Time `json:"date" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Interaction) TableName() string {
	return "interactions"
}

// InternalNote is a private annotation on a customer; it exists here as a
// cascade target of customer deletion.
type InternalNote struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerID uuid.UUID `json:"customerId" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	Content    string    `json:"content" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (InternalNote) TableName() string {
	return "internal_notes"
}

// Task is a follow-up item attached to a customer.
type Task struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerID uuid.UUID  `json:"customerId" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID  `json:"userId" gorm:"type:uuid;not null"`
	Title      string     `json:"title" gorm:"not null"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	Done       bool       `json:"done" gorm:"default:false"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (Task) TableName() string {
	return "tasks"
}

// Event is a calendar entry attached to a customer.
type Event struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerID uuid.UUID      `json:"customerId" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID      `json:"userId" gorm:"type:uuid;not null"`
	Title      string         `json:"title" gorm:"not null"`
	StartsAt   time.Time      `json:"startsAt"`
	Details    datatypes.JSON `json:"details,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (Event) TableName() string {
	return "events"
}

// File is an uploaded attachment reference; uploads themselves are handled
// outside this service.
type File struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerID uuid.UUID `json:"customerId" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	FileName   string    `json:"fileName" gorm:"not null"`
	Path       string    `json:"path" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (File) TableName() string {
	return "files"
}

// CreateCustomerRequest creates a lead in the caller's organization. When
// Status is empty the organization's first pipeline stage is used.
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Status  string `json:"status"`
}

// UpdateCustomerRequest updates contact fields; nil fields are left alone.
type UpdateCustomerRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
	Status  *string `json:"status,omitempty"`
}

// UpdateStatusRequest is the kanban-style quick status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// HandlerRequest assigns or removes a handler on a customer.
type HandlerRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

// CreateInteractionRequest logs a touchpoint. Date defaults to now.
type CreateInteractionRequest struct {
	CustomerID uuid.UUID  `json:"customerId" binding:"required"`
	Type       string     `json:"type" binding:"required"`
	Details    string     `json:"details"`
	Date       *time.Time `json:"date,omitempty"`
}

// CustomerStats summarizes the pipeline for dashboards.
type CustomerStats struct {
	Total   int64            `json:"total"`
	MyLeads int64            `json:"myLeads"`
	Stages  map[string]int64 `json:"stages"`
}
