// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"errors"
	"fmt"

	"github.com/medlocator/medlocator/geolocation"
)

// Kind classifies a lookup failure.
type Kind int

const (
	// InvalidLocation the query position is not a finite, in-range coordinate.
	InvalidLocation Kind = iota + 1
	// UpstreamUnavailable the Overpass request failed or returned non-2xx.
	UpstreamUnavailable
	// MalformedResponse the Overpass body lacks the elements array.
	MalformedResponse
)

func (k Kind) String() string {
	switch k {
	case InvalidLocation:
		return "invalid_location"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case MalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrInvalidLocation     = &Error{Kind: InvalidLocation, Message: "invalid location"}
	ErrUpstreamUnavailable = &Error{Kind: UpstreamUnavailable, Message: "upstream unavailable"}
	ErrMalformedResponse   = &Error{Kind: MalformedResponse, Message: "malformed upstream response"}
)

// Error is a typed lookup failure.
type Error struct {
	Kind Kind
	// StatusCode is the upstream HTTP status, 0 when no response was received.
	StatusCode int
	Message    string
	Err        error
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

// Is matches on Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var lErr *Error
	if errors.As(err, &lErr) {
		return lErr.Kind, true
	}

	return 0, false
}

// UserMessage turns err into a plain-language message for end users. The
// message depends only on the error's kind, never on its text.
func UserMessage(err error, locale Locale) string {
	if err == nil {
		return ""
	}

	p := locale.printer()

	if kind, ok := geolocation.KindOf(err); ok {
		switch kind {
		case geolocation.PermissionDenied:
			return p.Sprintf(msgPermissionDenied)
		case geolocation.Timeout:
			return p.Sprintf(msgLocationTimeout)
		case geolocation.Unsupported:
			return p.Sprintf(msgLocationUnsupported)
		default:
			return p.Sprintf(msgPositionUnavailable)
		}
	}

	if kind, ok := KindOf(err); ok {
		switch kind {
		case InvalidLocation:
			return p.Sprintf(msgInvalidLocation)
		case UpstreamUnavailable:
			return p.Sprintf(msgUpstreamUnavailable)
		case MalformedResponse:
			return p.Sprintf(msgMalformedResponse)
		}
	}

	return p.Sprintf(msgGenericFailure)
}
