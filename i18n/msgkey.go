// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import "context"

// MsgKey is a msgid: the original English text of a message, such as
// MsgKey("Html was too long."). Parameters typed MsgKey are also how
// cmd/i18n_extract finds msgids passed through helper functions.
type MsgKey string

// Tr is [Tr] for this msgid. A nil ctx uses the base locale.
func (s MsgKey) Tr(ctx context.Context) string {
	return Tr(ctx, string(s))
}

// For is [TrFor] for this msgid.
func (s MsgKey) For(locale string) string {
	return TrFor(locale, string(s))
}
