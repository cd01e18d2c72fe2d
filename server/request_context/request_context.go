// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package request_context holds the per-request state shared by the admin API
middleware and handlers.

It is a package of its own so that both middleware and routes can import it.
*/
package request_context

import (
	"context"
	"net/http"

	"github.com/Dhousefe/aCisDsec/core/idgen"
	"github.com/Dhousefe/aCisDsec/i18n"
)

// RequestContext is attached to every request by the set_request_context
// middleware. Handlers and middleware fill it in as the request progresses.
type RequestContext struct {
	// RequestID is echoed in error bodies and logs.
	RequestID string

	// RequestError is the error returned by the handler, set by middleware.CatchError.
	RequestError error

	// StatusCode is the status sent to the client.
	StatusCode int

	// Actor is the actor the request operates on, if the route names one.
	Actor *int
}

type key struct{}

// WithRequestContext returns a copy of ctx carrying a fresh RequestContext
// and the language negotiated from r, which user-facing errors are written in.
func WithRequestContext(ctx context.Context, r *http.Request) context.Context {
	rc := &RequestContext{
		RequestID:  idgen.Make(),
		StatusCode: http.StatusOK,
	}

	return context.WithValue(i18n.WithRequest(ctx, r), key{}, rc)
}

// FromContext returns the RequestContext in ctx. Outside the middleware
// chain it returns a new, empty one, so callers may always write to it.
func FromContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(key{}).(*RequestContext); ok {
		return rc
	}

	return &RequestContext{}
}

// FromRequest is FromContext(r.Context()).
func FromRequest(r *http.Request) *RequestContext {
	return FromContext(r.Context())
}
