package controller

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError is raised before any cluster call when a job definition
// renders an unusable spec.
type ValidationError struct {
	// JobName is the derived name of the offending job.
	JobName string

	// Reason describes what is wrong with the rendered spec.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid job %s: %s", e.JobName, e.Reason)
}

// IsValidation checks if an error is a ValidationError using error unwrapping.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// TimeoutError is raised by a single-job wait when no terminal status is
// reached within the configured window.
type TimeoutError struct {
	// JobName is the job that was being waited for.
	JobName string

	// Timeout is the window that elapsed, measured from the start of the
	// wait call.
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for job %s", e.Timeout, e.JobName)
}

// IsTimeout checks if an error is a TimeoutError using error unwrapping.
func IsTimeout(err error) bool {
	var timeoutErr *TimeoutError
	return errors.As(err, &timeoutErr)
}
