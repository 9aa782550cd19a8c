package status

import "errors"

// Board and status errors
var (
	// Validation errors
	ErrInvalidTitle = errors.New("title must contain at least one letter or digit")

	// Business logic errors
	ErrBoardNotFound  = errors.New("board not found")
	ErrStatusNotFound = errors.New("status not found")
	ErrStatusExists   = errors.New("a status with this title already exists")
)
