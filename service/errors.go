package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthRequired is returned when a guest attempts an account write
	ErrAuthRequired = errors.New("authentication required")
	// ErrProductNotFound is returned for unknown product ids
	ErrProductNotFound = errors.New("product not found")
	// ErrEmptyCart is returned when checking out without items
	ErrEmptyCart = errors.New("cart is empty")
	// ErrStoreClosed is returned by stores that were torn down
	ErrStoreClosed = errors.New("store closed")
	// ErrStorageUnavailable is returned when no database is configured
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports input that can never succeed as sent
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
