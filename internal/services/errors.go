package services

import "errors"

// Service-level errors. Handlers map these onto HTTP status codes;
// repository.ErrNotFound passes through untouched so tenant misses and
// genuine misses stay indistinguishable to callers.
var (
	ErrForbidden          = errors.New("forbidden")
	ErrNameConflict       = errors.New("name already in use")
	ErrRoleInUse          = errors.New("role has assigned users")
	ErrStageInUse         = errors.New("stage has customers assigned")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoOrganization     = errors.New("caller has no organization")
)
