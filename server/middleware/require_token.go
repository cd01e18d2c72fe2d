// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Dhousefe/aCisDsec/server/request_context"
)

// RequireToken returns a middleware that rejects state-changing requests
// without "Authorization: Bearer <token>". Safe methods pass through.
// An empty token disables the check.
func RequireToken(token string) Middleware {
	return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		if token == "" || isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)

			return
		}

		given, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			ctx := request_context.FromRequest(r)

			log.Warn().
				Str("sys", "http").
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("request_id", ctx.RequestID).
				Msg("Rejected admin request without a valid token")

			ctx.StatusCode = http.StatusUnauthorized
			w.Header().Set("WWW-Authenticate", `Bearer realm="l2i18n"`)
			writeError(w, ctx, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))

			return
		}

		next.ServeHTTP(w, r)
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
