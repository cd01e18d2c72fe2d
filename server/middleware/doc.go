// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware holds the admin API middleware chain.

Routes are defined in router.DefineRoutes; every fallible handler is wrapped
in CatchError, which turns returned errors into JSON error bodies.
*/
package middleware
