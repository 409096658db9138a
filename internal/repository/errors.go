// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as services
// and handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
// Handlers translate this into an HTTP 404 response, except for
// conversation lookups where an empty history is not an error.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as marking another user's message as
// read or selecting a family they are not a member of. Handlers
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert loses a uniqueness race, e.g.
// two callers creating the same family concurrently. The family service
// resolves it internally by adopting the winner's row; it is never
// surfaced to API clients.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists and ErrEmailExists are returned on signup when the
// respective unique constraint is violated.
var (
	ErrUsernameExists = errors.New("username already registered")
	ErrEmailExists    = errors.New("email already registered")
)
