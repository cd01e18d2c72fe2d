// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package session

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dhousefe/aCisDsec/core/dictionary"
)

type countingClearer struct {
	calls atomic.Int64
}

func (c *countingClearer) ClearCache() int {
	c.calls.Add(1)

	return 0
}

func newManager(t *testing.T, locales ...string) (*Manager, *countingClearer, *dictionary.Registry) {
	t.Helper()

	dicts := dictionary.NewRegistry(t.TempDir(), "")

	for _, locale := range locales {
		path := dicts.PathFor(locale)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("hello=Hello\n"), 0o644))
	}

	clearer := &countingClearer{}

	return NewManager(dicts, clearer, State{Locale: "pt_BR", Enabled: true}), clearer, dicts
}

func TestParseLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lang, country string
		want          string
		wantErr       bool
	}{
		{lang: "pt", country: "BR", want: "pt_BR"},
		{lang: "pt", want: "pt_BR"},
		{lang: "en", want: "en_US"},
		{lang: "zh", want: "zh_TW"},
		{lang: "EN", country: "gb", want: "en_GB"},
		{lang: " es ", country: " MX ", want: "es_MX"},
		{lang: "", wantErr: true},
		{lang: "xx", wantErr: true},
		{lang: "nl", wantErr: true},
		{lang: "portuguese", wantErr: true},
		{lang: "pt", country: "B1", wantErr: true},
		// A region that is not a country.
		{lang: "en", country: "419", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"_"+tt.country, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLocale(tt.lang, tt.country)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedLocale)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetDefaults(t *testing.T) {
	t.Parallel()

	m, _, _ := newManager(t)

	assert.Equal(t, State{Locale: "pt_BR", Enabled: true}, m.Get(42))
	assert.Equal(t, m.Defaults(), m.Get(42))
	assert.Equal(t, 0, m.Len())
}

func TestSetLocale(t *testing.T) {
	t.Parallel()

	m, clearer, dicts := newManager(t, "en_US")

	locale, err := m.SetLocale(1, "en", "")
	require.NoError(t, err)

	assert.Equal(t, "en_US", locale)
	assert.Equal(t, State{Locale: "en_US", Enabled: true}, m.Get(1))
	assert.Equal(t, int64(1), clearer.calls.Load())
	assert.Equal(t, []string{"en_US"}, dicts.Locales())

	// Other actors are unaffected.
	assert.Equal(t, "pt_BR", m.Get(2).Locale)
}

func TestSetLocaleMissingDictionary(t *testing.T) {
	t.Parallel()

	m, clearer, _ := newManager(t, "en_US")

	_, err := m.SetLocale(1, "en", "US")
	require.NoError(t, err)

	_, err = m.SetLocale(1, "de", "")
	require.ErrorIs(t, err, dictionary.ErrDictionaryNotFound)
	assert.NotErrorIs(t, err, ErrUnsupportedLocale)

	assert.Equal(t, "en_US", m.Get(1).Locale)
	assert.Equal(t, int64(1), clearer.calls.Load())
}

func TestSetLocaleUnsupported(t *testing.T) {
	t.Parallel()

	m, clearer, _ := newManager(t)

	_, err := m.SetLocale(1, "tlh", "")
	require.ErrorIs(t, err, ErrUnsupportedLocale)

	assert.Equal(t, "pt_BR", m.Get(1).Locale)
	assert.Zero(t, clearer.calls.Load())
}

func TestSetTranslation(t *testing.T) {
	t.Parallel()

	m, clearer, _ := newManager(t)

	m.SetTranslation(7, false)
	assert.Equal(t, State{Locale: "pt_BR", Enabled: false}, m.Get(7))

	m.SetTranslation(7, true)
	assert.True(t, m.Get(7).Enabled)
	assert.Equal(t, int64(2), clearer.calls.Load())

	m.Forget(7)
	assert.Equal(t, 0, m.Len())
}
