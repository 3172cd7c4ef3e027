// internal/engine/errs/errs.go
// Typed error kinds for the tournament engine core. A flat list of
// sentinel errors.New values would need a growing switch statement to map
// each one to a status code by hand; the core needs a family of "equal
// scores without forfeit", "member not in tournament", etc. to all map to
// the same ValidationError status, so each kind gets its own wrapper type
// instead.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an engine error for status-code mapping and logging.
type Kind string

const (
	Validation   Kind = "VALIDATION"
	NotFound     Kind = "NOT_FOUND"
	State        Kind = "STATE"
	Authorization Kind = "AUTHORIZATION"
	Integrity    Kind = "INTEGRITY"
	Dependency   Kind = "DEPENDENCY"
)

// Error is the engine's typed error envelope.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func new_(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation-kind constructors.
func NewValidation(format string, args ...interface{}) *Error { return new_(Validation, format, args...) }
func NewNotFound(format string, args ...interface{}) *Error   { return new_(NotFound, format, args...) }
func NewState(format string, args ...interface{}) *Error      { return new_(State, format, args...) }
func NewAuthorization(format string, args ...interface{}) *Error {
	return new_(Authorization, format, args...)
}
func NewIntegrity(format string, args ...interface{}) *Error { return new_(Integrity, format, args...) }
func NewDependency(format string, args ...interface{}) *Error {
	return new_(Dependency, format, args...)
}

// Wrap attaches a Kind to an underlying infrastructure error (e.g. a DB
// failure surfaced as a Dependency error).
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, defaulting to Dependency for anything
// the engine didn't itself classify.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Dependency
}

// HTTPStatus maps a Kind to its HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Validation:
		return http.StatusBadRequest
	case Authorization:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case State, Integrity:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
