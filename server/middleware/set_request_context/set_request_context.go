// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package set_request_context installs the request_context for each admin
// API request. It must run before any middleware that reads it.
package set_request_context

import (
	"net/http"

	"github.com/Dhousefe/aCisDsec/server/request_context"
)

// WithRequestContext is a middleware.Middleware.
func WithRequestContext(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := request_context.WithRequestContext(r.Context(), r)

	next.ServeHTTP(w, r.WithContext(ctx))
}
