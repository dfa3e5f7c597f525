package conversation

import (
	"context"
	"errors"
	"fmt"
)

// ErrDelegationFailed marks a failed or timed-out language-model call.
var ErrDelegationFailed = errors.New("conversation: assistant delegation failed")

var errEmptyCompletion = errors.New("conversation: completion returned no text")

// DelegationError carries the provider failure behind ErrDelegationFailed.
// No reply is produced when Process returns one.
type DelegationError struct {
	Cause error
}

func (e *DelegationError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDelegationFailed.Error(), e.Cause)
}

func (e *DelegationError) Unwrap() []error {
	return []error{ErrDelegationFailed, e.Cause}
}

// Timeout reports whether the provider call ran out of time.
func (e *DelegationError) Timeout() bool {
	return errors.Is(e.Cause, context.DeadlineExceeded)
}

// Reason is a short label suitable for metrics.
func (e *DelegationError) Reason() string {
	switch {
	case e.Timeout():
		return "timeout"
	case errors.Is(e.Cause, context.Canceled):
		return "canceled"
	case errors.Is(e.Cause, errEmptyCompletion):
		return "empty"
	default:
		return "error"
	}
}
