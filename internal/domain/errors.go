package domain

import (
	"errors"
	"fmt"
)

// Kind tags a request-local failure; each maps to one HTTP status.
type Kind string

const (
	KindNotFound     Kind = "NotFound"
	KindForbidden    Kind = "Forbidden"
	KindValidation   Kind = "ValidationError"
	KindUnauthorized Kind = "Unauthorized"
)

type Error struct {
	Kind    Kind
	Message string
	// Roles is set on Forbidden errors raised by a role check.
	Roles []Role
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports an ownership mismatch.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

// RoleRequired reports a caller whose role is outside required.
func RoleRequired(required ...Role) *Error {
	return &Error{
		Kind:    KindForbidden,
		Message: fmt.Sprintf("%v role required", required),
		Roles:   required,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
