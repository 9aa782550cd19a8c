package cli

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/leadboard/internal/ordering"
	leadservice "github.com/thenoetrevino/leadboard/internal/services/lead"
	statusservice "github.com/thenoetrevino/leadboard/internal/services/status"
	"github.com/thenoetrevino/leadboard/internal/services/validate"
)

// CommandError carries the process exit code a failed command should end with.
type CommandError struct {
	Code    int
	ErrCode string
	Err     error
}

func (e *CommandError) Error() string { return e.Err.Error() }

func (e *CommandError) Unwrap() error { return e.Err }

// UsageError reports a missing or malformed flag.
func UsageError(format string, args ...any) error {
	return &CommandError{Code: ExitUsage, ErrCode: "USAGE_ERROR", Err: fmt.Errorf(format, args...)}
}

// Classify returns the error code shown to the user and the exit code for err.
func Classify(err error) (string, int) {
	var exitErr *CommandError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.ErrCode, exitErr.Code
	case errors.Is(err, statusservice.ErrBoardNotFound), errors.Is(err, leadservice.ErrBoardNotFound):
		return "BOARD_NOT_FOUND", ExitNotFound
	case errors.Is(err, statusservice.ErrStatusNotFound), errors.Is(err, leadservice.ErrStatusNotFound),
		errors.Is(err, ordering.ErrCollectionNotFound):
		return "STATUS_NOT_FOUND", ExitNotFound
	case errors.Is(err, leadservice.ErrLeadNotFound), errors.Is(err, ordering.ErrItemNotFound):
		return "LEAD_NOT_FOUND", ExitNotFound
	case errors.Is(err, statusservice.ErrStatusExists), errors.Is(err, leadservice.ErrLeadExists),
		errors.Is(err, ordering.ErrAlreadyExists):
		return "ALREADY_EXISTS", ExitValidation
	case errors.Is(err, ordering.ErrInvalidPosition):
		return "INVALID_POSITION", ExitValidation
	case errors.Is(err, validate.ErrInvalid), errors.Is(err, statusservice.ErrInvalidTitle),
		errors.Is(err, leadservice.ErrEmptyInteraction):
		return "VALIDATION_ERROR", ExitValidation
	case errors.Is(err, ordering.ErrTransactionAborted):
		return "CONCURRENT_UPDATE", ExitError
	default:
		return "ERROR", ExitError
	}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	_, code := Classify(err)
	return code
}
