// Package dErrors provides coded domain errors. Services return these so the
// transport layer can translate them into HTTP responses without inspecting
// error strings.
package dErrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of domain failure.
type Code string

const (
	CodeInvalidInput      Code = "invalid_input"
	CodeInvalidIdentifier Code = "invalid_identifier"
	CodeNotFound          Code = "not_found"
	CodeConflict          Code = "conflict"
	CodeUpstream          Code = "upstream_error"
	CodeInternal          Code = "internal_error"
)

// DomainError carries a machine-readable code alongside a human message.
type DomainError struct {
	Code    Code
	Message string
	wrapped error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.wrapped
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Wrap creates a domain error that preserves the underlying cause for
// errors.Is / errors.As chains.
func Wrap(code Code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, wrapped: err}
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for readability at call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// ToHTTPStatus maps a domain error code to an HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeInvalidIdentifier:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
