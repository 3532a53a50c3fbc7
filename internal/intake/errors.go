package intake

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthenticated is returned when a submission carries no user identity.
var ErrUnauthenticated = errors.New("intake: no authenticated user")

// ErrSubmissionFailed matches every downstream store failure. Callers that only
// need the user-facing outcome should test for it with errors.Is.
var ErrSubmissionFailed = errors.New("intake: submission failed")

// ValidationError lists the required form fields that were empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "intake: missing required fields: " + strings.Join(e.Missing, ", ")
}

// Stage names the store call a submission failed in.
type Stage string

// Possible values for Stage
const (
	StageUpload Stage = "upload"
	StageRecord Stage = "record"
)

// StageError is a store failure tagged with the stage it happened in.
// It matches ErrSubmissionFailed and unwraps to the store's own error.
type StageError struct {
	Stage Stage
	Err   error
	Stack []byte // set when the failure was a recovered panic
}

func (e *StageError) Error() string {
	return fmt.Sprintf("intake: %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{ErrSubmissionFailed, e.Err}
}
