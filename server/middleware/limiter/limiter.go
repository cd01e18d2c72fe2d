// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Dhousefe/aCisDsec/server/routes"
)

// timeNow is a wrapper for time.Now, which allows us to mock it in tests.
var timeNow = time.Now

// FallibleHandler is the handler shape wrapped by middleware.CatchError.
type FallibleHandler = func(w http.ResponseWriter, r *http.Request) error

// Limiter is safe for concurrent use.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter allowing perMinute operations per minute with the
// given burst. A non-positive perMinute disables the limit.
func New(perMinute, burst int) *Limiter {
	if perMinute <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}

	burst = max(burst, 1)

	return &Limiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)}
}

// Allow reports whether an operation may run now. When it may not, it also
// returns how long the caller should wait.
func (l *Limiter) Allow() (bool, time.Duration) {
	now := timeNow()

	reservation := l.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute
	}

	delay := reservation.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}

	// Not taking the token: the caller is rejected.
	reservation.CancelAt(now)

	return false, delay
}

// Throttle wraps handler so that calls over the limit fail with a 429.
func (l *Limiter) Throttle(handler FallibleHandler) FallibleHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		ok, delay := l.Allow()
		if !ok {
			retryAfter := int(math.Ceil(delay.Seconds()))

			log.Warn().
				Str("sys", "limiter").
				Str("url", r.URL.Path).
				Int("retry_after", retryAfter).
				Msg("Request throttled")

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			return routes.NewStatusError(http.StatusTooManyRequests, nil)
		}

		return handler(w, r)
	}
}
