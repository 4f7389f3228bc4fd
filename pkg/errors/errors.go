package errors

import (
	"errors"
	"fmt"
)

// Domain errors - Sentinel errors for use with errors.Is()
var (
	ErrNotFound         = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthenticated  = errors.New("not logged in")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrStorage          = errors.New("storage failure")
)

// AppError carries a stable code and a human-readable message around
// one of the sentinel errors above.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructors
func NotFound(msg string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: msg, Err: ErrNotFound}
}

func PermissionDenied(msg string) *AppError {
	return &AppError{Code: "PERMISSION_DENIED", Message: msg, Err: ErrPermissionDenied}
}

func Unauthenticated(msg string) *AppError {
	return &AppError{Code: "UNAUTHENTICATED", Message: msg, Err: ErrUnauthenticated}
}

func InvalidArgument(msg string) *AppError {
	return &AppError{Code: "INVALID_ARGUMENT", Message: msg, Err: ErrInvalidArgument}
}

// Storage wraps a store-level failure. The cause is kept for logs but the
// sentinel is what handlers match on.
func Storage(msg string, err error) *AppError {
	if err == nil {
		err = ErrStorage
	} else if !errors.Is(err, ErrStorage) {
		err = fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &AppError{Code: "STORAGE_ERROR", Message: msg, Err: err}
}
