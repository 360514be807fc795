package domain

import "errors"

// Application validation errors
var (
	ErrInvalidStatus          = errors.New("invalid application status")
	ErrInvalidApplicationType = errors.New("invalid application type")
	ErrDecisionRequired       = errors.New("decided applications require a valid decision type")
	ErrDecisionNotAllowed     = errors.New("decision fields are only allowed when status is decided")
)

// Requirement validation errors
var (
	ErrInvalidRequirement       = errors.New("requirement type is required")
	ErrInvalidRequirementStatus = errors.New("invalid requirement status")
)

// User validation errors
var (
	ErrInvalidUserRole = errors.New("invalid user role")
)
