// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build test

package i18n

import "sync"

// ResetForTests unloads every catalogue and forgets cached templates and
// reported missing keys, as if Setup had never run.
//
// Only built with -tags test. Call it before starting goroutines that
// translate.
func ResetForTests() {
	active.Store(nil)
	templates.reset()

	reported = sync.Map{}
}
