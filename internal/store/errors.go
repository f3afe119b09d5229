package store

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes store failures.
type ErrorKind string

const (
	// KindEnvironment indicates the database file could not be opened.
	KindEnvironment ErrorKind = "ENVIRONMENT"

	// KindSchema indicates a table could not be created, probed or altered.
	KindSchema ErrorKind = "SCHEMA"

	// KindQuery indicates a read or write statement failed.
	KindQuery ErrorKind = "QUERY"

	// KindData indicates invalid input or a malformed stored payload.
	KindData ErrorKind = "DATA"
)

// Error is returned by every exported Store method.
type Error struct {
	// Kind identifies the failure category.
	Kind ErrorKind

	// Op is a short description of the failed step, e.g. "upsert draft".
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a store *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Kind == kind
	}
	return false
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
