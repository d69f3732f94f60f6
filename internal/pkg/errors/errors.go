package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPermissionDenied means the actor lacks the role required for the operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidTransition means the requested workflow move is not legal
	// from the item's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
)
