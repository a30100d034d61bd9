// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package geolocation

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed position request.
type ErrorKind int

const (
	// PositionUnavailable the position could not be determined.
	PositionUnavailable ErrorKind = iota
	// PermissionDenied the user or the backing service refused access.
	PermissionDenied
	// Timeout the request did not finish in time.
	Timeout
	// Unsupported the provider cannot work in this environment.
	Unsupported
)

func (k ErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission_denied"
	case Timeout:
		return "timeout"
	case Unsupported:
		return "unsupported"
	default:
		return "position_unavailable"
	}
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrPositionUnavailable = &Error{Kind: PositionUnavailable, Message: "position unavailable"}
	ErrPermissionDenied    = &Error{Kind: PermissionDenied, Message: "permission denied"}
	ErrTimeout             = &Error{Kind: Timeout, Message: "timeout"}
	ErrUnsupported         = &Error{Kind: Unsupported, Message: "unsupported"}
)

// Error is a typed position failure.
type Error struct {
	Kind    ErrorKind
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

// Is matches on Kind so callers can compare against the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Kind, true
	}

	return 0, false
}

// classifyHTTPStatus maps a geocoding HTTP status to an error kind.
func classifyHTTPStatus(statusCode int) *Error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{
			Kind:    PermissionDenied,
			Message: fmt.Sprintf("access denied by geocoding service (status %d)", statusCode),
		}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &Error{
			Kind:    Timeout,
			Message: fmt.Sprintf("geocoding service timed out (status %d)", statusCode),
		}
	default:
		return &Error{
			Kind:    PositionUnavailable,
			Message: fmt.Sprintf("geocoding service returned status %d", statusCode),
		}
	}
}
