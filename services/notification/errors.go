package notification

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced notification does not exist.
	ErrNotFound = errors.New("notification not found")
	// ErrForbidden means the notification exists but belongs to another user.
	ErrForbidden = errors.New("notification belongs to another user")
)

// ValidationError reports malformed input: a missing field, an out-of-range
// length or an unrecognised enum value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
