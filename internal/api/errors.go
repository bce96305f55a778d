package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	// KindNetwork is a transport failure: no HTTP response was received.
	KindNetwork ErrorKind = "network"
	// KindAuth is a 401: missing, invalid or expired token.
	KindAuth ErrorKind = "auth"
	// KindValidation is a 400: the backend rejected the request shape.
	KindValidation ErrorKind = "validation"
	// KindNotFound is a 404: unknown trip, invite code or transaction.
	KindNotFound ErrorKind = "not_found"
	// KindConflict is a 409: duplicate email/phone on signup.
	KindConflict ErrorKind = "conflict"
	// KindServer is any 5xx.
	KindServer ErrorKind = "server"
	// KindEmptyResponse is a 2xx whose body was unexpectedly empty.
	KindEmptyResponse ErrorKind = "empty_response"
	// KindUnknown covers every other failure.
	KindUnknown ErrorKind = "unknown"
)

// APIError is the typed outcome of every failed Repository call. Calls never
// fail with anything else across the package boundary.
type APIError struct {
	Kind       ErrorKind
	HTTPStatus int // 0 when no response was received
	Message    string
	Err        error // wrapped transport or decode error, if any
}

func (e *APIError) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("api: %s (status %d): %s", e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Classify maps an HTTP status and backend message onto the error taxonomy.
func Classify(status int, message string) *APIError {
	kind := KindUnknown
	switch {
	case status == http.StatusUnauthorized:
		kind = KindAuth
	case status == http.StatusBadRequest:
		kind = KindValidation
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusConflict:
		kind = KindConflict
	case status >= 500:
		kind = KindServer
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{Kind: kind, HTTPStatus: status, Message: message}
}

// Is reports whether err is an *APIError of the given kind.
func Is(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func IsAuth(err error) bool       { return Is(err, KindAuth) }
func IsValidation(err error) bool { return Is(err, KindValidation) }
func IsNotFound(err error) bool   { return Is(err, KindNotFound) }
func IsConflict(err error) bool   { return Is(err, KindConflict) }
func IsNetwork(err error) bool    { return Is(err, KindNetwork) }
