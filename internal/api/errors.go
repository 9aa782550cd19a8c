package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thenoetrevino/leadboard/internal/ordering"
	leadservice "github.com/thenoetrevino/leadboard/internal/services/lead"
	statusservice "github.com/thenoetrevino/leadboard/internal/services/status"
	"github.com/thenoetrevino/leadboard/internal/services/validate"
)

// Error codes returned in the "code" field of error bodies
const (
	CodeInvalidInput    = "invalid_input"
	CodeInvalidPosition = "invalid_position"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeAborted         = "aborted"
	CodeInternal        = "internal"
)

// DomainError is an error with the HTTP status and code it is reported with.
type DomainError struct {
	Status  int
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// toDomainError classifies a service error.
func toDomainError(err error) *DomainError {
	var de *DomainError
	switch {
	case errors.As(err, &de):
		return de
	case errors.Is(err, validate.ErrInvalid),
		errors.Is(err, statusservice.ErrInvalidTitle),
		errors.Is(err, leadservice.ErrEmptyInteraction):
		return &DomainError{http.StatusBadRequest, CodeInvalidInput, err.Error()}
	case errors.Is(err, ordering.ErrInvalidPosition):
		return &DomainError{http.StatusBadRequest, CodeInvalidPosition, err.Error()}
	case errors.Is(err, statusservice.ErrBoardNotFound),
		errors.Is(err, statusservice.ErrStatusNotFound),
		errors.Is(err, leadservice.ErrBoardNotFound),
		errors.Is(err, leadservice.ErrStatusNotFound),
		errors.Is(err, leadservice.ErrLeadNotFound),
		errors.Is(err, ordering.ErrItemNotFound),
		errors.Is(err, ordering.ErrCollectionNotFound):
		return &DomainError{http.StatusNotFound, CodeNotFound, err.Error()}
	case errors.Is(err, statusservice.ErrStatusExists),
		errors.Is(err, leadservice.ErrLeadExists),
		errors.Is(err, ordering.ErrAlreadyExists):
		return &DomainError{http.StatusConflict, CodeConflict, err.Error()}
	case errors.Is(err, ordering.ErrTransactionAborted):
		return &DomainError{http.StatusConflict, CodeAborted, "the collection changed concurrently, try again"}
	case errors.Is(err, context.DeadlineExceeded):
		return &DomainError{http.StatusGatewayTimeout, CodeInternal, "request timed out"}
	default:
		return &DomainError{http.StatusInternalServerError, CodeInternal, "internal error"}
	}
}

// abortWithError writes err as a {code, error} body and stops the handler chain.
func abortWithError(c *gin.Context, err error) {
	de := toDomainError(err)
	if de.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)
	}
	c.AbortWithStatusJSON(de.Status, gin.H{"code": de.Code, "error": de.Message})
}

func badRequest(message string) *DomainError {
	return &DomainError{http.StatusBadRequest, CodeInvalidInput, message}
}
