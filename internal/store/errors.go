package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorage is returned when the backing storage cannot be read or written.
	ErrStorage = errors.New("storage failure")

	// ErrCorruptDocument is returned when a stored document cannot be parsed.
	ErrCorruptDocument = errors.New("corrupt document")
)
