package objrepo

import "fmt"

// ErrorCode enumerates the repository's error taxonomy.
type ErrorCode int

const (
	// Unknown represents an unspecified error condition.
	Unknown ErrorCode = iota
	// NotFound is raised by get/delete for a missing item when errorIfMissing is true.
	NotFound
	// AlreadyExists is raised by put when errorIfExists is true and the key exists.
	AlreadyExists
	// UnknownClass is raised when the store returns a class name not in the registry.
	UnknownClass
	// InitInsideTransaction is raised when initialize() is attempted from within a transaction.
	InitInsideTransaction
	// CannotDowngrade is raised when the persisted repository record version exceeds VERSION.
	CannotDowngrade
	// StoreError wraps anything the backing ObjectStore raises that isn't one of the above.
	StoreError
	// UserError wraps an error returned by a caller-supplied forEachItems handler.
	// Panics are not recovered, and Transaction returns its fn's error unwrapped.
	UserError
)

func (c ErrorCode) String() string {
	switch c {
	case NotFound:
		return "NotFound"
	case AlreadyExists:
		return "AlreadyExists"
	case UnknownClass:
		return "UnknownClass"
	case InitInsideTransaction:
		return "InitInsideTransaction"
	case CannotDowngrade:
		return "CannotDowngrade"
	case StoreError:
		return "StoreError"
	case UserError:
		return "UserError"
	default:
		return "Unknown"
	}
}

// Error is the repository's error type, carrying a code, the wrapped cause and
// optional user data (e.g. the offending key or class name).
type Error struct {
	Code     ErrorCode
	Err      error
	UserData any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.UserData != nil {
		return fmt.Errorf("%s: %w (%v)", e.Code, e.Err, e.UserData).Error()
	}
	return fmt.Errorf("%s: %w", e.Code, e.Err).Error()
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds an *Error for the given code, cause and optional user data.
func newError(code ErrorCode, err error, userData ...any) *Error {
	var ud any
	if len(userData) > 0 {
		ud = userData[0]
	}
	return &Error{Code: code, Err: err, UserData: ud}
}

// IsNotFound reports whether err (or any error it wraps) is a NotFound repository error.
func IsNotFound(err error) bool {
	return hasCode(err, NotFound)
}

// IsAlreadyExists reports whether err (or any error it wraps) is an AlreadyExists repository error.
func IsAlreadyExists(err error) bool {
	return hasCode(err, AlreadyExists)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	for err != nil {
		if asErr, ok := err.(*Error); ok {
			e = asErr
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Code == code
}
