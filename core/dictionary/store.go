// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package dictionary holds per-locale key→text dictionaries backed by flat
Java-properties files.

Each file holds one "key=value" pair per line. Blank lines and lines starting
with '#' are ignored when loading; '#' lines are written only as provenance
annotations when new keys are appended. The pipeline only ever appends: a key
that is present in the file is never rewritten.
*/
package dictionary

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/magiconair/properties"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Unresolved returns the marker shown for a key that has no translation.
func Unresolved(key string) string {
	return "!" + key + "!"
}

// Store is the in-memory dictionary of one locale together with its backing file.
// It is safe for concurrent use.
type Store struct {
	locale string
	path   string
	logger zerolog.Logger

	mu      sync.RWMutex
	entries map[string]string

	// fileMu serializes appends so that two callers discovering the same key
	// cannot both write it.
	fileMu sync.Mutex
}

// Open creates a Store for locale backed by path and loads it.
//
// Read failures are logged and leave the store empty; they are not returned.
func Open(locale, path string) *Store {
	s := &Store{
		locale:  locale,
		path:    path,
		logger:  log.With().Str("sys", "dictionary").Str("locale", locale).Logger(),
		entries: map[string]string{},
	}

	s.Reload()

	return s
}

// detached returns an empty store with no backing file. Appends to it are
// dropped.
func detached(locale string) *Store {
	return &Store{
		locale:  locale,
		logger:  log.With().Str("sys", "dictionary").Str("locale", locale).Logger(),
		entries: map[string]string{},
	}
}

// Locale returns the locale this store serves.
func (s *Store) Locale() string { return s.locale }

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Reload replaces the in-memory entries with the current file contents.
func (s *Store) Reload() {
	entries, err := readEntries(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug().Str("path", s.path).Msg("Dictionary file does not exist yet")
		} else {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Failed to read dictionary, continuing with no entries")
		}

		entries = map[string]string{}
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	s.logger.Info().Str("path", s.path).Int("count", len(entries)).Msg("Loaded dictionary")
}

// Get returns the text mapped to key and whether it was present.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[strings.ToLower(key)]

	return v, ok
}

// Contains reports whether key has an entry.
func (s *Store) Contains(key string) bool {
	_, ok := s.Get(key)

	return ok
}

// Lookup returns the text for key, or [Unresolved] of key when the key is
// absent or mapped to an empty value.
func (s *Store) Lookup(key string) string {
	if v, ok := s.Get(key); ok && v != "" {
		return v
	}

	return Unresolved(key)
}

// Len returns the number of loaded entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Snapshot returns a copy of the loaded entries.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.entries)
}

// Untranslated returns, sorted, the keys whose value is empty.
func (s *Store) Untranslated() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string

	for k, v := range s.entries {
		if v == "" {
			out = append(out, k)
		}
	}

	sort.Strings(out)

	return out
}

// PersistNew appends to the backing file every key of fragments that the file
// does not hold yet. Keys already in the file are skipped even if their stored
// value differs from the supplied text.
//
// It reports whether the file was modified, or whether any supplied key is
// already in the file with an empty value or a value equal to its source text,
// meaning it still needs a human translation.
//
// I/O failures are logged and skip the write. The in-memory entries are not
// changed; they pick up new keys on the next [Store.Reload].
func (s *Store) PersistNew(fragments map[string]string, provenance string) bool {
	if len(fragments) == 0 {
		return false
	}

	if s.path == "" {
		return true
	}

	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	existing, err := readEntries(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Failed to read dictionary, skipping append")

		return true
	}

	pending := false
	newKeys := make([]string, 0, len(fragments))

	for key, text := range fragments {
		if key == "" {
			continue
		}

		if stored, ok := existing[key]; ok {
			if stored == "" || stored == text {
				pending = true
			}

			continue
		}

		newKeys = append(newKeys, key)
	}

	if len(newKeys) == 0 {
		return pending
	}

	sort.Strings(newKeys)

	var buf bytes.Buffer

	if provenance != "" {
		buf.WriteString("# Extracted from: ")
		buf.WriteString(provenance)
		buf.WriteByte('\n')
	}

	for _, key := range newKeys {
		buf.WriteString(key)
		buf.WriteByte('=')
		buf.WriteString(escapeValue(fragments[key]))
		buf.WriteByte('\n')
	}

	if err := s.appendRecord(buf.Bytes()); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Failed to append to dictionary")

		return true
	}

	s.logger.Info().
		Str("path", s.path).
		Str("source", provenance).
		Strs("keys", newKeys).
		Msg("Appended untranslated fragments")

	return true
}

// appendRecord writes record to the end of the backing file in a single write,
// starting a new line first if the file does not end with one.
func (s *Store) appendRecord(record []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), dirPermissions); err != nil {
		return fmt.Errorf("failed to create dictionary directory: %w", err)
	}

	if needsLeadingNewline(s.path) {
		record = append([]byte{'\n'}, record...)
	}

	// #nosec G304 -- path comes from configuration
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to open dictionary: %w", err)
	}

	if _, err := f.Write(record); err != nil {
		_ = f.Close()

		return fmt.Errorf("failed to write dictionary: %w", err)
	}

	return f.Close()
}

func needsLeadingNewline(path string) bool {
	// #nosec G304 -- path comes from configuration
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return false
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false
	}

	return last[0] != '\n'
}

// readEntries parses path into a lowercase-keyed map.
func readEntries(path string) (map[string]string, error) {
	// #nosec G304 -- path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}

	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	raw := p.Map()
	entries := make(map[string]string, len(raw))

	for k, v := range raw {
		entries[strings.ToLower(k)] = v
	}

	return entries, nil
}

var valueEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

// escapeValue makes text survive a properties round trip.
func escapeValue(text string) string {
	return valueEscaper.Replace(text)
}
