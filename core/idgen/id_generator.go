// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package idgen makes short IDs that tie admin API responses to log lines.
package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"time"
)

const entropyBytes = 3

// Make makes a short ID from the wall clock and 3 random bytes.
func Make() string {
	return MakeAt(time.Now(), rand.Reader)
}

// MakeAt makes an ID for t, reading entropy from src. IDs made in the same
// second sort together. A short read leaves the missing bytes as 'a'.
func MakeAt(t time.Time, src io.Reader) string {
	entropy := [entropyBytes]byte{'a', 'a', 'a'}

	_, _ = io.ReadFull(src, entropy[:])

	return t.Format("150405") + base64.RawURLEncoding.EncodeToString(entropy[:])
}
