package cli

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: store errors, network errors, a move that lost a concurrent
	// write after every retry, or anything else unexpected.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: missing required flags, invalid flag combinations,
	// or when the user needs to provide different arguments.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: board, status or lead not found.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed stored data.
	// Use for: a stored payload that no longer decodes.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: invalid email, duplicate status title, index outside the
	// collection, or any input that fails validation rules.
	ExitValidation = 5
)
