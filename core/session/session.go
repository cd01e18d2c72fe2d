// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package session tracks the translation settings of each actor: the locale its
windows are rendered in and whether translation is enabled at all.

Changing either setting drops the whole resolution cache. A locale switch
first loads the new dictionary and only then clears the cache, so a
resolution that runs after the switch never sees stale output.
*/
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/Dhousefe/aCisDsec/core/dictionary"
)

// ErrUnsupportedLocale is returned for a language or country that cannot be used.
var ErrUnsupportedLocale = errors.New("unsupported language or country")

// DefaultCountries maps every supported language to the country used when
// none is given.
var DefaultCountries = map[string]string{
	"pt": "BR",
	"en": "US",
	"de": "DE",
	"fr": "FR",
	"it": "IT",
	"es": "ES",
	"ja": "JP",
	"ko": "KR",
	"ru": "RU",
	"pl": "PL",
	"zh": "TW",
}

// ParseLocale builds a "language_COUNTRY" locale name from user input.
// An empty country selects the language's default country.
func ParseLocale(lang, country string) (string, error) {
	lang = strings.TrimSpace(lang)
	country = strings.TrimSpace(country)

	if lang == "" {
		return "", fmt.Errorf("%w: empty language", ErrUnsupportedLocale)
	}

	base, err := language.ParseBase(lang)
	if err != nil {
		return "", fmt.Errorf("%w: language %q", ErrUnsupportedLocale, lang)
	}

	def, ok := DefaultCountries[base.String()]
	if !ok {
		return "", fmt.Errorf("%w: language %q", ErrUnsupportedLocale, lang)
	}

	if country == "" {
		country = def
	}

	region, err := language.ParseRegion(country)
	if err != nil || !region.IsCountry() {
		return "", fmt.Errorf("%w: country %q", ErrUnsupportedLocale, country)
	}

	return base.String() + "_" + region.String(), nil
}

// CacheClearer drops every cached resolution. [pipeline.Pipeline] implements it.
type CacheClearer interface {
	ClearCache() int
}

// State is the translation setting of one actor.
type State struct {
	Locale  string `json:"locale"`
	Enabled bool   `json:"enabled"`
}

// Manager is safe for concurrent use.
type Manager struct {
	dicts    *dictionary.Registry
	cache    CacheClearer
	defaults State
	logger   zerolog.Logger

	mu     sync.RWMutex
	actors map[int]State
}

// NewManager creates a Manager. Actors that were never configured get defaults.
func NewManager(dicts *dictionary.Registry, cache CacheClearer, defaults State) *Manager {
	return &Manager{
		dicts:    dicts,
		cache:    cache,
		defaults: defaults,
		logger:   log.With().Str("sys", "session").Logger(),
		actors:   map[int]State{},
	}
}

// Get returns the state of actorID.
func (m *Manager) Get(actorID int) State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.actors[actorID]; ok {
		return s
	}

	return m.defaults
}

// Defaults returns the state of actors that were never configured.
func (m *Manager) Defaults() State {
	return m.defaults
}

// SetLocale switches actorID to the locale named by lang and country and
// returns the locale name.
//
// It fails with [ErrUnsupportedLocale] for bad input and with
// [dictionary.ErrDictionaryNotFound] when the locale has no dictionary file.
// On failure the previous locale stays active.
func (m *Manager) SetLocale(actorID int, lang, country string) (string, error) {
	locale, err := ParseLocale(lang, country)
	if err != nil {
		return "", err
	}

	if _, err := m.dicts.Activate(locale); err != nil {
		return "", fmt.Errorf("failed to activate %s: %w", locale, err)
	}

	m.update(actorID, func(s *State) { s.Locale = locale })

	cleared := m.cache.ClearCache()

	m.logger.Info().
		Int("actor", actorID).
		Str("locale", locale).
		Int("cleared", cleared).
		Msg("Locale changed")

	return locale, nil
}

// SetTranslation turns translation on or off for actorID.
func (m *Manager) SetTranslation(actorID int, enabled bool) {
	m.update(actorID, func(s *State) { s.Enabled = enabled })

	cleared := m.cache.ClearCache()

	m.logger.Info().
		Int("actor", actorID).
		Bool("enabled", enabled).
		Int("cleared", cleared).
		Msg("Translation toggled")
}

// Forget drops the state of actorID, for example when it logs out.
func (m *Manager) Forget(actorID int) {
	m.mu.Lock()
	delete(m.actors, actorID)
	m.mu.Unlock()
}

// Len returns the number of actors with a non-default state.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.actors)
}

func (m *Manager) update(actorID int, fn func(*State)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.actors[actorID]
	if !ok {
		s = m.defaults
	}

	fn(&s)
	m.actors[actorID] = s
}
