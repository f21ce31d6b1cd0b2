// Package services provides application-level services that orchestrate
// business logic and coordinate between repositories and domain entities.
package services

import "errors"

// Sentinel errors the handlers translate to HTTP status codes.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("operation not permitted")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInactiveUser       = errors.New("inactive user")
)
