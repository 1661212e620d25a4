package booking

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the booking services.
var (
	ErrDuplicateLoginName      = errors.New("login name already taken")
	ErrDuplicateEmail          = errors.New("email already registered")
	ErrBadCredentials          = errors.New("bad credentials")
	ErrProfileMissing          = errors.New("authenticated subject has no local profile")
	ErrProfileNotFound         = errors.New("profile not found")
	ErrBillingNotLinked        = errors.New("profile has no billing customer")
	ErrLodgingNotFound         = errors.New("lodging not found")
	ErrAlreadyReserved         = errors.New("lodging already reserved")
	ErrDuplicateLodging        = errors.New("lodging already exists")
	ErrDuplicateFavorite       = errors.New("favorite already exists")
	ErrFavoriteNotFound        = errors.New("favorite not found")
	ErrAuthProvider            = errors.New("external authenticator failed")
	ErrBillingProvider         = errors.New("external billing provider failed")
	ErrInvalidProfileID        = errors.New("invalid profile id")
	ErrInvalidLoginName        = errors.New("invalid login name")
	ErrInvalidEmail            = errors.New("invalid email address")
	ErrInvalidPassword         = errors.New("invalid password")
	ErrInvalidDisplayName      = errors.New("invalid display name")
	ErrInvalidAuthSubject      = errors.New("invalid auth subject")
	ErrInvalidCustomerID       = errors.New("invalid billing customer id")
	ErrInvalidLodgingID        = errors.New("invalid lodging id")
	ErrInvalidReservationState = errors.New("invalid reservation state")
	ErrInvalidServiceConfig    = errors.New("invalid service config")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
