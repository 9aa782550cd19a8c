package lead

import "errors"

// Lead errors
var (
	// Business logic errors
	ErrLeadNotFound   = errors.New("lead not found")
	ErrLeadExists     = errors.New("lead already exists")
	ErrStatusNotFound = errors.New("status not found")
	ErrBoardNotFound  = errors.New("board not found")

	// Validation errors
	ErrEmptyInteraction = errors.New("interaction notes cannot be empty")
)
