package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches a request or lookup.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidIdentifier is returned when a slug or domain fails validation.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrNoTenantInContext is returned when a required tenant is missing from context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrInactiveTenant is returned when the resolved tenant is not active.
	ErrInactiveTenant = errors.New("tenant is inactive")

	// ErrDatabaseRegistration is returned when the tenant database could not
	// be registered before the tenant became visible in the request context.
	ErrDatabaseRegistration = errors.New("tenant database registration failed")
)
