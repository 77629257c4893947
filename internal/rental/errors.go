package rental

import (
	"errors"
	"fmt"
)

// Kind classifies a rental error for callers that map it to a response.
type Kind string

// Error kinds.
const (
	KindInvalidInput    Kind = "invalid_input"
	KindNotFound        Kind = "not_found"
	KindValidationError Kind = "validation_error"
	KindStoreFailure    Kind = "store_failure"
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrInvalidInput    = &Error{Kind: KindInvalidInput}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrValidationError = &Error{Kind: KindValidationError}
	ErrStoreFailure    = &Error{Kind: KindStoreFailure}
)

// Error is returned by every Service operation.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func invalidInput(msg string) error {
	return &Error{Kind: KindInvalidInput, Msg: msg}
}

func notFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func validationError(field, msg string) error {
	return &Error{Kind: KindValidationError, Field: field, Msg: msg}
}

func missingField(field string) error {
	return validationError(field, "Missing required field: "+field)
}

func storeFailure(op string, err error) error {
	return &Error{Kind: KindStoreFailure, Msg: op, Err: err}
}

// KindOf returns the kind of err, or KindStoreFailure for errors that did
// not originate here.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreFailure
}
