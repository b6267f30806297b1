package store

import "errors"

var (
	// ErrNotFound is returned by Load when nothing has been saved yet.
	ErrNotFound = errors.New("no saved record")

	// ErrInvalidRecord is returned when stored data is not a valid record.
	ErrInvalidRecord = errors.New("invalid record")
)
