package errs

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the service layer. Callers branch on these
// with errors.Is; everything else is an infrastructure failure.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrInvalidOperation    = errors.New("invalid operation")
)

// InvalidArgument reports a malformed or semantically invalid input.
func InvalidArgument(param string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, param)
}

// InvalidArgumentf reports a malformed input with a formatted detail.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound reports a missing entity.
func NotFound(entity string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, entity, id)
}

// ConcurrencyConflict reports a version token mismatch on write.
func ConcurrencyConflict(entity string, id any) error {
	return fmt.Errorf("%w: %s %v", ErrConcurrencyConflict, entity, id)
}

// InvalidOperation reports a business rule violation.
func InvalidOperation(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, detail)
}
