package coding

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound is returned when a job id resolves to nothing.
	ErrJobNotFound = errors.New("coding job not found")

	// ErrJobTerminal is returned for actions on a rejected job.
	ErrJobTerminal = errors.New("coding job is in a terminal state")

	// ErrNotAwaitingReview is returned when accept is applied to a job
	// outside NEEDS_REVIEW.
	ErrNotAwaitingReview = errors.New("coding job is not awaiting review")

	// ErrAlreadySubmitted guards against double claim drops: once a job is
	// sent to the clearinghouse it may not be resubmitted.
	ErrAlreadySubmitted = errors.New("coding job already sent to clearinghouse")

	// ErrNoSubmitter is returned when autonomous submission is requested
	// but no clearinghouse is configured.
	ErrNoSubmitter = errors.New("clearinghouse submission is not configured")
)

// ValidationError rejects an ingestion request before any grouping runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
