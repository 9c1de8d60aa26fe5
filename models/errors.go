package models

import "errors"

var (
	// ErrNotFound is returned when a referenced post, group, user or comment does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated is returned when an operation needs a signed-in viewer.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the viewer may not perform the operation.
	ErrForbidden = errors.New("forbidden")
)

