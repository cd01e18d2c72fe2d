// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package dictionary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrDictionaryNotFound is returned by [Registry.Activate] when the locale has no dictionary file.
	ErrDictionaryNotFound = errors.New("dictionary file not found")
	// ErrInvalidLocale is returned for locale names that cannot be a file name part.
	ErrInvalidLocale = errors.New("invalid locale name")
)

// DefaultPattern is the file name pattern for dictionaries; %s is replaced by the locale.
const DefaultPattern = "messages_%s.properties"

// Registry owns the loaded dictionary of every locale in use.
// It is safe for concurrent use.
type Registry struct {
	dir     string
	pattern string

	mu     sync.RWMutex
	stores map[string]*Store
}

// NewRegistry creates a Registry reading files named pattern inside dir.
// An empty pattern selects [DefaultPattern].
func NewRegistry(dir, pattern string) *Registry {
	if pattern == "" {
		pattern = DefaultPattern
	}

	return &Registry{
		dir:     dir,
		pattern: pattern,
		stores:  map[string]*Store{},
	}
}

// PathFor returns the dictionary file path for locale.
func (r *Registry) PathFor(locale string) string {
	return filepath.Join(r.dir, strings.ReplaceAll(r.pattern, "%s", locale))
}

// validLocale reports whether locale keeps PathFor inside the registry directory.
func validLocale(locale string) bool {
	return locale != "" && !strings.ContainsAny(locale, `/\`) && filepath.IsLocal(locale)
}

// Store returns the dictionary for locale, loading it on first use.
//
// A locale without a file yields an empty store whose appends create the file.
// An invalid locale name gets an empty store that is neither registered nor
// backed by a file.
func (r *Registry) Store(locale string) *Store {
	if !validLocale(locale) {
		return detached(locale)
	}

	r.mu.RLock()
	s, ok := r.stores[locale]
	r.mu.RUnlock()

	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[locale]; ok {
		return s
	}

	s = Open(locale, r.PathFor(locale))
	r.stores[locale] = s

	return s
}

// Activate loads locale's dictionary from disk, reloading the store already
// in use if there is one so that holders of it see the new entries.
//
// It fails with [ErrDictionaryNotFound] if the file does not exist, in which
// case the registry is left unchanged.
func (r *Registry) Activate(locale string) (*Store, error) {
	if !validLocale(locale) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocale, locale)
	}

	path := r.PathFor(locale)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDictionaryNotFound, path)
		}

		return nil, fmt.Errorf("failed to stat dictionary %s: %w", path, err)
	}

	r.mu.Lock()
	s, ok := r.stores[locale]
	if !ok {
		s = Open(locale, path)
		r.stores[locale] = s
	}
	r.mu.Unlock()

	if ok {
		s.Reload()
	}

	return s, nil
}

// ReloadAll re-reads every loaded dictionary from disk.
func (r *Registry) ReloadAll() {
	r.mu.RLock()
	stores := make([]*Store, 0, len(r.stores))

	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.mu.RUnlock()

	for _, s := range stores {
		s.Reload()
	}
}

// Locales returns the sorted list of loaded locales.
func (r *Registry) Locales() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.stores))
	for l := range r.stores {
		out = append(out, l)
	}

	sort.Strings(out)

	return out
}
