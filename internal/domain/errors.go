package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a service-level failure so the transport layer can map it
// to a status code without inspecting message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindDuplicate
	KindValidation
	KindAuthentication
	KindAuthorization
)

// Error is the error type raised by the service layer. It carries a plain
// message suitable for the response body.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports an absent resource.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Duplicate reports a uniqueness violation.
func Duplicate(message string) *Error {
	return &Error{Kind: KindDuplicate, Message: message}
}

// Validation reports malformed input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Authentication reports bad credentials.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Authorization reports insufficient privilege or ownership.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// ErrKind returns the Kind of err, or KindUnknown if err is not a domain Error.
func ErrKind(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool      { return ErrKind(err) == KindNotFound }
func IsDuplicate(err error) bool     { return ErrKind(err) == KindDuplicate }
func IsValidation(err error) bool    { return ErrKind(err) == KindValidation }
func IsAuthorization(err error) bool { return ErrKind(err) == KindAuthorization }
