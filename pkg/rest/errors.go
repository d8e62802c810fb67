// Copyright (c) 2026 ArenaLink Inc. All Rights Reserved.
// This is licensed software from ArenaLink Inc, for limitations
// and restrictions contact your company contract manager.

package rest

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure.
type Kind int

const (
	// KindTransport covers network-level failures.
	KindTransport Kind = iota
	// KindAuth covers missing/invalid credentials and failed refreshes.
	KindAuth
	// KindTimeout covers requests that exceeded their budget.
	KindTimeout
	// KindValidation covers 4xx rejections other than authentication.
	KindValidation
	// KindServer covers 5xx responses.
	KindServer
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindTimeout:
		return "timeout"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by the request engine after any
// applicable refresh-and-retry has been exhausted.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 when the request never completed
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("rest: %s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("rest: %s error: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a rest.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == kind
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool { return IsKind(err, KindAuth) }

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool { return IsKind(err, KindTimeout) }
