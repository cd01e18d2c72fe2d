// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package router assembles the admin API: its routes on an http.ServeMux and
// the middleware chain around them.
package router

import (
	"net/http"
	"slices"
	"sync"

	"github.com/Dhousefe/aCisDsec/server/middleware"
)

// Router is an http.ServeMux with a middleware chain in front of it.
//
// Middleware must be installed with Use before the first request is served.
type Router struct {
	mux         *http.ServeMux
	middlewares []middleware.Middleware
	patterns    []string

	once    sync.Once
	handler http.Handler
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{mux: http.NewServeMux()}
}

// Use appends m to the chain. The first middleware added runs outermost.
func (router *Router) Use(m middleware.Middleware) {
	router.middlewares = append(router.middlewares, m)
}

// HandleFunc registers a plain handler for pattern.
func (router *Router) HandleFunc(pattern string, h http.HandlerFunc) {
	router.patterns = append(router.patterns, pattern)
	router.mux.HandleFunc(pattern, h)
}

// Fallible registers a handler whose errors are written by [middleware.CatchError].
func (router *Router) Fallible(pattern string, h middleware.FallibleHandler) {
	router.HandleFunc(pattern, middleware.CatchError(h))
}

// Patterns returns the registered patterns in registration order.
func (router *Router) Patterns() []string {
	return slices.Clone(router.patterns)
}

// ServeHTTP runs the middleware chain, then the matching route.
func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.once.Do(func() {
		var h http.Handler = router.mux

		for _, m := range slices.Backward(router.middlewares) {
			h = middleware.Wrap(m, h)
		}

		router.handler = h
	})

	router.handler.ServeHTTP(w, r)
}
