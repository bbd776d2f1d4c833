// Copyright (c) 2023-2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cerr contains the core errors. Each error wraps an actual
// error value and tags it with a Kind and the HTTP status code which
// should be reported to the web clients. Use cases return these errors
// and the adapters (e.g., the serdser package) translate them.
package cerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a core error.
type Kind int

// Known error kinds. KindUnknown is used for errors which are not
// wrapped by this package at all.
const (
	KindUnknown Kind = iota
	KindBadRequest
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindExhausted
	KindInvalidState
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	KindBadRequest:     "bad-request",
	KindAuthentication: "authentication",
	KindAuthorization:  "authorization",
	KindNotFound:       "not-found",
	KindConflict:       "conflict",
	KindExhausted:      "exhausted",
	KindInvalidState:   "invalid-state",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is a classified core error.
type Error struct {
	Kind           Kind
	Err            error
	HTTPStatusCode int
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.HTTPStatusCode, e.Err.Error())
}

func BadRequest(err error) *Error {
	return &Error{
		Kind: KindBadRequest, Err: err,
		HTTPStatusCode: http.StatusBadRequest,
	}
}

func Authentication(err error) *Error {
	return &Error{
		Kind: KindAuthentication, Err: err,
		HTTPStatusCode: http.StatusUnauthorized,
	}
}

// Authorization reports a caller whose role is not permitted, or whose
// identity could not be resolved at all.
func Authorization(err error) *Error {
	return &Error{
		Kind: KindAuthorization, Err: err,
		HTTPStatusCode: http.StatusForbidden,
	}
}

func NotFound(err error) *Error {
	return &Error{
		Kind: KindNotFound, Err: err,
		HTTPStatusCode: http.StatusNotFound,
	}
}

func Conflict(err error) *Error {
	return &Error{
		Kind: KindConflict, Err: err,
		HTTPStatusCode: http.StatusConflict,
	}
}

// Exhausted reports a business-rule rejection due to a depleted
// resource, e.g., checking out a book with no available copy.
// The same request may succeed later.
func Exhausted(err error) *Error {
	return &Error{
		Kind: KindExhausted, Err: err,
		HTTPStatusCode: http.StatusConflict,
	}
}

// InvalidState reports an operation which is not permitted in the
// current state of its target, e.g., returning a returned loan.
func InvalidState(err error) *Error {
	return &Error{
		Kind: KindInvalidState, Err: err,
		HTTPStatusCode: http.StatusConflict,
	}
}

// KindOf returns the Kind of the outermost *Error in the err chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is classified as k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
