package postlib

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound = errors.New("item you are trying to access is not found")
	ErrItemExists   = errors.New("item with this id already exists")

	ErrNoAvailableSlot = errors.New("no available slot within the scheduling horizon")
	ErrNoSchedule      = errors.New("no schedule configured for this platform and clip type")
	ErrNoAccount       = errors.New("no account configured for this platform")
)

// ValidationError reports a malformed schedule configuration. It is fatal at
// load time; the daemon refuses to start until the config file is fixed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid schedule config: " + e.Message
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// RateLimitError signals that a platform has exhausted its posting quota.
// The approval batch stops calling out for that platform until the next batch.
type RateLimitError struct {
	Platform string
	Message  string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limited on " + e.Platform
	}
	return e.Message
}
