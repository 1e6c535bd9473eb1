package service

import (
	"errors"
	"fmt"
)

// Common service errors. The API layer maps these to HTTP status codes.
var (
	// ErrInvalidInput indicates a request failed validation.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrChallengeNotFound indicates the challenge is not part of the user's
	// current daily set.
	// API layer should map this to HTTP 404 Not Found.
	ErrChallengeNotFound = errors.New("challenge not in current daily set")

	// ErrGradingUnavailable indicates the grading oracle failed; no
	// segmentation was performed.
	// API layer should map this to HTTP 502 Bad Gateway.
	ErrGradingUnavailable = errors.New("grading service unavailable")
)

// ServiceError is a custom error type for service failures.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
