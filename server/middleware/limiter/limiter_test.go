// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhousefe/aCisDsec/server/routes"
)

// setTime pins timeNow for the duration of the test. Tests using it must not
// run in parallel.
func setTime(t *testing.T, now *time.Time) {
	t.Helper()

	timeNow = func() time.Time { return *now }

	t.Cleanup(func() { timeNow = time.Now })
}

func TestAllow(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	setTime(t, &now)

	l := New(6, 1)

	ok, _ := l.Allow()
	assert.True(t, ok)

	ok, delay := l.Allow()
	assert.False(t, ok)
	assert.Equal(t, 10*time.Second, delay)

	// A rejected call does not consume the next token.
	now = now.Add(10 * time.Second)

	ok, _ = l.Allow()
	assert.True(t, ok)
}

func TestAllowBurst(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	setTime(t, &now)

	l := New(60, 3)

	for range 3 {
		ok, _ := l.Allow()
		require.True(t, ok)
	}

	ok, delay := l.Allow()
	assert.False(t, ok)
	assert.Equal(t, time.Second, delay)
}

func TestUnlimited(t *testing.T) {
	t.Parallel()

	l := New(0, 0)

	for range 100 {
		ok, _ := l.Allow()
		require.True(t, ok)
	}
}

func TestThrottle(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	setTime(t, &now)

	calls := 0
	handler := New(2, 1).Throttle(func(w http.ResponseWriter, _ *http.Request) error {
		calls++

		w.WriteHeader(http.StatusNoContent)

		return nil
	})

	rr := httptest.NewRecorder()
	require.NoError(t, handler(rr, httptest.NewRequest(http.MethodPost, "/dictionaries/reload", nil)))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	err := handler(rr, httptest.NewRequest(http.MethodPost, "/dictionaries/reload", nil))

	var statusErr *routes.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	assert.Equal(t, "30", rr.Header().Get("Retry-After"))
	assert.Equal(t, 1, calls)
}
