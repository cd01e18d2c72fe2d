// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build test

package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// Not parallel: it unloads the catalogues the other tests use.
func TestResetForTests(t *testing.T) {
	ctx := WithTag(context.Background(), language.BrazilianPortuguese)

	ResetForTests()

	assert.Equal(t, "Html was too long.", Tr(ctx, "Html was too long."))
	assert.Panics(t, func() { Languages() })

	require.NoError(t, Setup())
	assert.Equal(t, "Html muito longo.", Tr(ctx, "Html was too long."))
}
