package types

import "errors"

// Sentinel errors shared across repositories, services and handlers.
// Handlers map these onto HTTP status codes.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("invalid request")
	ErrUnavailable     = errors.New("feature not available")
)
