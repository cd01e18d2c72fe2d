// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		method           string
		requestURL       string
		expectedStatus   int
		expectedLocation string
	}{
		{
			name:           "Root path should not redirect",
			method:         http.MethodGet,
			requestURL:     "/",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Path without trailing slash should not redirect",
			method:         http.MethodGet,
			requestURL:     "/stats",
			expectedStatus: http.StatusOK,
		},
		{
			name:             "Path with trailing slash should redirect",
			method:           http.MethodGet,
			requestURL:       "/stats/",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/stats",
		},
		{
			name:             "Several trailing slashes collapse",
			method:           http.MethodPost,
			requestURL:       "/cache/clear//",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/cache/clear",
		},
		{
			name:             "Query parameters are preserved",
			method:           http.MethodGet,
			requestURL:       "/stats/?lang=es",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/stats?lang=es",
		},
		{
			name:           "Profiler index keeps its slash",
			method:         http.MethodGet,
			requestURL:     "/debug/pprof/",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			rr := httptest.NewRecorder()
			Wrap(NormalizeURL, next).ServeHTTP(rr, httptest.NewRequest(tt.method, tt.requestURL, nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedLocation, rr.Header().Get("Location"))
		})
	}
}
