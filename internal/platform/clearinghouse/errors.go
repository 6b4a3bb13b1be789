package clearinghouse

import (
	"errors"
	"fmt"
)

// ErrAuth marks a token fetch or refresh failure. Submission is aborted
// with no state change.
var ErrAuth = errors.New("clearinghouse authentication failed")

// TransientError marks a timeout, network failure, or 5xx response after
// the retry budget is exhausted. The caller's job/claim state must be left
// unchanged so the operation can be retried.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("clearinghouse %s failed after retries: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// RejectionError marks a 4xx business rejection. Not retried.
type RejectionError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("clearinghouse rejected request (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

// ValidationErrors reports payload problems found before any wire call.
type ValidationErrors struct {
	Problems []string
}

func (e *ValidationErrors) Error() string {
	return fmt.Sprintf("claim payload invalid: %d problem(s), first: %s", len(e.Problems), e.Problems[0])
}
