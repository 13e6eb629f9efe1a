package batch

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBatch       = errors.New("no employee or expense entry has a nonzero total")
	ErrNoBankConfigured = errors.New("no bank configured for company")
)

// PartialWriteError reports a commit that failed after some checks were
// already persisted. The counter is left untouched so the unissued numbers
// are not lost; the operator reconciles before retrying.
type PartialWriteError struct {
	Written int
	Err     error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("batch partially written: %d checks persisted before failure: %v", e.Written, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
