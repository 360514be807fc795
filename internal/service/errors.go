package service

import "errors"

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
)

// Entity errors
var (
	ErrStudentNotFound     = errors.New("student not found")
	ErrUniversityNotFound  = errors.New("university not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrRequirementNotFound = errors.New("requirement not found")
	ErrInvalidInput        = errors.New("invalid input")
)

// ErrInternal marks persistence or other unexpected failures.
var ErrInternal = errors.New("internal error")
