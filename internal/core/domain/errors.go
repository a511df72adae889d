package domain

import (
	"errors"
	"fmt"
)

var (
	// Validation-class failures. Reported per item or per batch, never retried.
	ErrBatchTooLarge     = errors.New("batch too large")
	ErrInvalidExtension  = errors.New("invalid file extension")
	ErrSizeExceeded      = errors.New("file size exceeded")
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrTransient marks network/model failures and empty model responses.
	// The vision client retries these up to its configured budget.
	ErrTransient = errors.New("transient extraction failure")

	ErrInvalidInput = errors.New("invalid input")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
