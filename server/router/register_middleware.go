// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"github.com/Dhousefe/aCisDsec/config"
	"github.com/Dhousefe/aCisDsec/server/middleware"
	"github.com/Dhousefe/aCisDsec/server/middleware/set_request_context"
)

// RegisterMiddleware installs the middleware chain.
func (router *Router) RegisterMiddleware() {
	// the first middleware is the most outer / first executed one
	router.Use(middleware.WithServerTiming)
	router.Use(middleware.NormalizeURL)
	router.Use(set_request_context.WithRequestContext) // needed for everything else
	router.Use(middleware.SetResponseHeaders)
	router.Use(middleware.RequireToken(config.Global.Basic.AdminToken))
}
