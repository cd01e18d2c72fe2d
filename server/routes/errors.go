// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"fmt"
	"net/http"
)

// StatusError is returned by a handler to fail with a specific HTTP status.
//
// middleware.CatchError writes it as a JSON error body with Code as the status.
type StatusError struct {
	Code int
	Err  error
}

// NewStatusError creates a StatusError. err may be nil.
func NewStatusError(code int, err error) *StatusError {
	return &StatusError{Code: code, Err: err}
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
	}

	return fmt.Sprintf("%d %s: %v", e.Code, http.StatusText(e.Code), e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// Message is the text shown to the client.
func (e *StatusError) Message() string {
	if e.Err == nil {
		return http.StatusText(e.Code)
	}

	return e.Err.Error()
}
