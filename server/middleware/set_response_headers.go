// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"strings"

	"github.com/Dhousefe/aCisDsec/config"
)

var (
	// baseHeaders defines the default headers to be set in responses.
	//
	// L2i18n-Version and L2i18n-Revision are added dynamically in SetResponseHeaders.
	baseHeaders = http.Header{
		"Referrer-Policy":        {"no-referrer"},
		"X-Frame-Options":        {"DENY"},
		"X-Content-Type-Options": {"nosniff"},
		"Cache-Control":          {"no-store"},
	}

	// The admin API serves JSON only.
	baseCSP = []string{
		"default-src 'none'",
		"frame-ancestors 'none'",
		"form-action 'none'",
	}
)

// SetResponseHeaders adds default headers to HTTP responses.
func SetResponseHeaders(w http.ResponseWriter, r *http.Request, next http.Handler) {
	headers := w.Header()

	maps.Insert(headers, maps.All(baseHeaders))

	headers.Set("L2i18n-Version", config.BuildVersion)
	headers.Set("L2i18n-Revision", config.Global.Build.Revision())
	headers.Set("Content-Security-Policy", strings.Join(baseCSP, "; ")+";")

	next.ServeHTTP(w, r)
}
