package domain

import "fmt"

// PermissionError reports a role that lacks the capability for an operation.
// The operation is aborted with no state change.
type PermissionError struct {
	Role      Role
	Operation string
}

func (e PermissionError) Error() string {
	return fmt.Sprintf("permission denied: role %s cannot %s", e.Role, e.Operation)
}

// NotFoundError reports a lookup of an id that is absent from the store.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// DuplicateError reports an attempt to create an entity under an existing id.
type DuplicateError struct {
	Entity EntityType
	ID     string
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Entity, e.ID)
}

// ValidationError reports input rejected before any state change.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}
