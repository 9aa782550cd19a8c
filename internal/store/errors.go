package store

import "errors"

var (
	// ErrNotFound is returned when an item does not exist in the collection
	ErrNotFound = errors.New("item not found")

	// ErrAlreadyExists is returned when creating an item whose id is taken
	ErrAlreadyExists = errors.New("item already exists")

	// ErrConflict is returned when a write lost against a concurrent write
	ErrConflict = errors.New("write conflict")
)
