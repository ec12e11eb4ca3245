package services

import "errors"

// Error kinds. Controllers map them onto HTTP statuses.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrInvalid       = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotConfigured = errors.New("not configured")
)

// Error is a domain failure with a client-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error      { return &Error{Kind: ErrNotFound, Message: msg} }
func conflict(msg string) error      { return &Error{Kind: ErrConflict, Message: msg} }
func invalid(msg string) error       { return &Error{Kind: ErrInvalid, Message: msg} }
func unauthorized(msg string) error  { return &Error{Kind: ErrUnauthorized, Message: msg} }
func notConfigured(msg string) error { return &Error{Kind: ErrNotConfigured, Message: msg} }
