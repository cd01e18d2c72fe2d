// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package set_request_context

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhousefe/aCisDsec/server/middleware"
	"github.com/Dhousefe/aCisDsec/server/request_context"
)

func TestWithRequestContext_AttachesContext(t *testing.T) {
	t.Parallel()

	var got request_context.RequestContext

	handler := middleware.Wrap(WithRequestContext, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = *request_context.FromRequest(r)

		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, http.StatusOK, got.StatusCode)
	assert.NoError(t, got.RequestError)
}

func TestWithRequestContext_GeneratesUniqueRequestIDs(t *testing.T) {
	t.Parallel()

	var requestIDs []string

	handler := middleware.Wrap(WithRequestContext, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestIDs = append(requestIDs, request_context.FromRequest(r).RequestID)
	}))

	for range 3 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stats", nil))
	}

	require.Len(t, requestIDs, 3)

	seen := make(map[string]bool)
	for _, id := range requestIDs {
		assert.False(t, seen[id], "duplicate request ID %s", id)

		seen[id] = true
	}
}

func TestWithRequestContext_PreservesRequestData(t *testing.T) {
	t.Parallel()

	var method, path string

	handler := middleware.Wrap(WithRequestContext, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/cache/clear", nil))

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/cache/clear", path)
}

func TestFromContextWithoutMiddleware(t *testing.T) {
	t.Parallel()

	ctx := request_context.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, ctx)
	assert.Empty(t, ctx.RequestID)
}
