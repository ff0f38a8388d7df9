package usecase

import (
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the identifier has no registered repository.
	ErrNotFound = fmt.Errorf("repository not found")
	// ErrNotAccessible indicates the storage location cannot be reached or
	// is not a directory.
	ErrNotAccessible = fmt.Errorf("repository not accessible")
	// ErrInvalidConfiguration indicates an operation attempted from a state
	// that forbids it, or a duplicate registration.
	ErrInvalidConfiguration = fmt.Errorf("invalid configuration")
	// ErrValidationFailed indicates structural validation failed during
	// registration.
	ErrValidationFailed = fmt.Errorf("validation failed")
	// ErrLocked indicates lock acquisition was contended.
	ErrLocked = fmt.Errorf("repository locked")
	// ErrOperationFailed indicates an I/O or unexpected failure during
	// check/repair/prune/rebuild.
	ErrOperationFailed = fmt.Errorf("operation failed")
	// ErrHealthCheckFailed wraps an underlying failure surfaced by a health
	// check.
	ErrHealthCheckFailed = fmt.Errorf("health check failed")
	// ErrMaintenanceFailed wraps an underlying failure surfaced by a
	// maintenance operation.
	ErrMaintenanceFailed = fmt.Errorf("maintenance failed")
	// ErrInterrupted indicates a canceled or interrupted operation.
	ErrInterrupted = fmt.Errorf("interrupted")
	// ErrUsage indicates user input/usage errors.
	ErrUsage = fmt.Errorf("usage error")
)

// BulkFailure records one failed repository inside a bulk operation.
type BulkFailure struct {
	ID  string
	Err error
}

// BulkError aggregates per-repository failures from a bulk operation run in
// force mode. Successes are not listed; they are reported through the log.
type BulkError struct {
	Op       string
	Failures []BulkFailure
}

// Error summarizes every failure keyed by repository identifier.
func (e *BulkError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed for %d repositories:", e.Op, len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, " %s: %v;", f.ID, f.Err)
	}
	return strings.TrimSuffix(b.String(), ";")
}

// Unwrap exposes the underlying errors so errors.Is can match sentinels
// through the aggregate.
func (e *BulkError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
