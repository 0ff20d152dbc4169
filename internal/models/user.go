package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a CRM account holder. OrganizationID is nil only for platform
// accounts (SUPER_ADMIN), which are not owned by any single tenant.
type User struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name           string     `json:"name" gorm:"not null"`
	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	Password       string     `json:"-" gorm:"not null"`
	OrganizationID *uuid.UUID `json:"organizationId,omitempty" gorm:"type:uuid;index"`
	RoleID         uuid.UUID  `json:"roleId" gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// Relationships
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Role         *Role         `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}

func (User) TableName() string {
	return "users"
}

// RegisterRequest creates a brand-new organization plus its first user.
type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	CompanyName string `json:"companyName" binding:"required"`
}

// LoginRequest authenticates an existing user.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is an org-admin invite into the caller's organization.
type CreateUserRequest struct {
	Name     string    `json:"name" binding:"required"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required,min=8"`
	RoleID   uuid.UUID `json:"roleId" binding:"required"`
}

// AuthResponse is returned by register/login/me. Permissions are rendered
// as "action:subject" strings from the user's role.
type AuthResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	RoleID           uuid.UUID  `json:"roleId"`
	Permissions      []string   `json:"permissions,omitempty"`
	OrganizationID   *uuid.UUID `json:"organizationId,omitempty"`
	OrganizationName string     `json:"organizationName,omitempty"`
	Token            string     `json:"token,omitempty"`
}

// UserSummary is the listing shape for org members.
type UserSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	RoleID uuid.UUID `json:"roleId"`
}
