package grading

import (
	"context"
	"errors"
)

// Common errors returned by graders
var (
	// ErrGradingFailed is returned when grading fails for any general reason
	ErrGradingFailed = errors.New("failed to grade answer")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during grading")

	// ErrInvalidConfig is returned when the grader configuration is invalid
	ErrInvalidConfig = errors.New("invalid grader configuration")

	// ErrEmptyAnswer is returned when the request has no user answer to grade
	ErrEmptyAnswer = errors.New("answer cannot be empty")
)

// IsRetryable reports whether err is worth another attempt. Only transient
// failures are; cancellation never is.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, ErrTransientFailure)
}
