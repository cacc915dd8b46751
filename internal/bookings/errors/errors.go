package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrDuplicate maps the storage-layer unique (email, start_time,
	// end_time) constraint violation.
	ErrDuplicate = errors.New("duplicate booking for this email and time range")
)
