package common

import "errors"

// Error classes. Every error returned by the protocol components belongs to
// exactly one of them, so callers may dispatch on the class with errors.Is
// while still matching the particular error value.
var (
	// ErrValidation is the class of errors caused by malformed input.
	ErrValidation = errors.New("validation error")
	// ErrAuthorization is the class of errors caused by a caller lacking
	// the capability required by the operation.
	ErrAuthorization = errors.New("authorization error")
	// ErrState is the class of errors caused by an operation that is not
	// allowed in the current state of the component.
	ErrState = errors.New("state error")
	// ErrConfiguration is the class of errors caused by a missing or
	// contradicting component setup.
	ErrConfiguration = errors.New("configuration error")
)

// Error is a classified protocol error.
type Error struct {
	class error
	msg   string
}

// Error implements error interface.
func (e *Error) Error() string {
	return e.msg
}

// Is reports whether target is the class of e.
func (e *Error) Is(target error) bool {
	return target == e.class
}

// Class returns one of ErrValidation, ErrAuthorization, ErrState or
// ErrConfiguration.
func (e *Error) Class() error {
	return e.class
}

// NewValidationError returns new error of ErrValidation class.
func NewValidationError(msg string) *Error {
	return &Error{class: ErrValidation, msg: msg}
}

// NewAuthorizationError returns new error of ErrAuthorization class.
func NewAuthorizationError(msg string) *Error {
	return &Error{class: ErrAuthorization, msg: msg}
}

// NewStateError returns new error of ErrState class.
func NewStateError(msg string) *Error {
	return &Error{class: ErrState, msg: msg}
}

// NewConfigurationError returns new error of ErrConfiguration class.
func NewConfigurationError(msg string) *Error {
	return &Error{class: ErrConfiguration, msg: msg}
}

// ClassOf returns class of the classified error wrapped into err or nil
// if err is not a protocol error.
func ClassOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.class
	}
	return nil
}
