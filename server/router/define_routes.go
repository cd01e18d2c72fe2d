// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"net/http/pprof"
	"runtime/trace"
	"time"

	"github.com/Dhousefe/aCisDsec/config"
	"github.com/Dhousefe/aCisDsec/server/middleware/limiter"
	"github.com/Dhousefe/aCisDsec/server/routes"
)

// DefineRoutes sets up every admin API route on the router.
//
// It does not register middleware; see RegisterMiddleware.
func (router *Router) DefineRoutes(admin *routes.Admin) {
	reloads := limiter.New(config.Global.Admin.ReloadsPerMinute, config.Global.Admin.ReloadBurst)

	router.Fallible("GET /healthz", admin.Healthz)
	router.Fallible("GET /stats", admin.Stats)

	router.Fallible("POST /cache/clear", admin.ClearCache)
	router.Fallible("POST /dictionaries/reload", reloads.Throttle(admin.ReloadDictionaries))

	router.Fallible("POST /resolve", admin.Resolve)

	router.Fallible("GET /actors/{id}", admin.ActorState)
	router.Fallible("POST /actors/{id}/commands", admin.RunCommand)

	if config.Global.Development.InDevelopment {
		registerDebugRoutes(router)
	}
}

var flightRecorder = trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: time.Minute})

func registerDebugRoutes(router *Router) {
	if !flightRecorder.Enabled() {
		if err := flightRecorder.Start(); err != nil {
			panic(err)
		}
	}

	router.HandleFunc("GET /debug/pprof/", pprof.Index)
	router.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	router.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	router.HandleFunc("GET /debug/flight", func(w http.ResponseWriter, r *http.Request) {
		_, _ = flightRecorder.WriteTo(w)
	})
}
