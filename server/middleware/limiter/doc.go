// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package limiter throttles expensive admin API operations.

A Limiter is a token bucket shared by every caller of the handlers it wraps.
Requests over the limit get a 429 with a Retry-After header.
*/
package limiter
