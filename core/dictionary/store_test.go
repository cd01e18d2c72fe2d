// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package dictionary

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestStoreLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "messages_pt_BR.properties")
	writeFile(t, path, "# comment\n\nhello=Olá\nTitle=Título\nempty=\n")

	s := Open("pt_BR", path)

	assert.Equal(t, 3, s.Len())

	v, ok := s.Get("hello")
	assert.True(t, ok)
	assert.Equal(t, "Olá", v)

	// Keys are case-normalized on load.
	assert.True(t, s.Contains("title"))
	assert.True(t, s.Contains("TITLE"))

	assert.Equal(t, "!missing!", s.Lookup("missing"))
	assert.Equal(t, "!empty!", s.Lookup("empty"))
	assert.Equal(t, []string{"empty"}, s.Untranslated())

	snap := s.Snapshot()
	assert.Equal(t, map[string]string{"hello": "Olá", "title": "Título", "empty": ""}, snap)

	// The snapshot is a copy.
	snap["hello"] = "changed"
	assert.Equal(t, "Olá", s.Lookup("hello"))
}

func TestStoreLoadMissingFile(t *testing.T) {
	t.Parallel()

	s := Open("en_US", filepath.Join(t.TempDir(), "nope.properties"))

	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("hello"))
}

func TestPersistNewAppendsOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dict", "messages_en_US.properties")
	s := Open("en_US", path)

	modified := s.PersistNew(map[string]string{"hello": "Hello"}, "data/html/hello.htm")
	assert.True(t, modified)

	content := readFile(t, path)
	assert.Equal(t, "# Extracted from: data/html/hello.htm\nhello=Hello\n", content)

	// Same fragment again: already present with its source text, so it still
	// needs translation, but nothing is written.
	assert.True(t, s.PersistNew(map[string]string{"hello": "Hello"}, "data/html/hello.htm"))
	assert.Equal(t, content, readFile(t, path))
	assert.Equal(t, 1, strings.Count(readFile(t, path), "hello="))
}

func TestPersistNewSkipsExistingKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "messages_pt_BR.properties")
	writeFile(t, path, "hello=Olá")

	s := Open("pt_BR", path)

	// The file wins for existing keys even though the supplied text differs.
	assert.False(t, s.PersistNew(map[string]string{"hello": "Hello"}, ""))
	assert.Equal(t, "hello=Olá", readFile(t, path))

	assert.True(t, s.PersistNew(map[string]string{"hello": "Hello", "bye": "Bye"}, ""))
	assert.Equal(t, "hello=Olá\nbye=Bye\n", readFile(t, path))

	// Appends do not touch memory until reload.
	assert.False(t, s.Contains("bye"))
	s.Reload()
	assert.True(t, s.Contains("bye"))
}

func TestPersistNewEmptyValueStillPending(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "messages_pt_BR.properties")
	writeFile(t, path, "hello=\n")

	s := Open("pt_BR", path)

	assert.True(t, s.PersistNew(map[string]string{"hello": "Hello"}, ""))
	assert.Equal(t, "hello=\n", readFile(t, path))
	assert.False(t, s.PersistNew(nil, ""))
}

func TestPersistNewEscapesValues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "messages_en_US.properties")
	s := Open("en_US", path)

	s.PersistNew(map[string]string{"path": `C:\l2\data`}, "")
	s.Reload()

	v, ok := s.Get("path")
	assert.True(t, ok)
	assert.Equal(t, `C:\l2\data`, v)
}

func TestPersistNewConcurrent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "messages_en_US.properties")
	s := Open("en_US", path)

	var wg sync.WaitGroup

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			s.PersistNew(map[string]string{"race": "Race", "other": "Other"}, "")
		}()
	}

	wg.Wait()

	content := readFile(t, path)
	assert.Equal(t, 1, strings.Count(content, "race="))
	assert.Equal(t, 1, strings.Count(content, "other="))
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reg := NewRegistry(dir, "")

	assert.Equal(t, filepath.Join(dir, "messages_pt_BR.properties"), reg.PathFor("pt_BR"))

	_, err := reg.Activate("pt_BR")
	assert.True(t, errors.Is(err, ErrDictionaryNotFound))
	assert.Empty(t, reg.Locales())

	writeFile(t, reg.PathFor("pt_BR"), "hello=Olá\n")

	s, err := reg.Activate("pt_BR")
	require.NoError(t, err)
	assert.Same(t, s, reg.Store("pt_BR"))
	assert.Equal(t, []string{"pt_BR"}, reg.Locales())

	writeFile(t, reg.PathFor("pt_BR"), "hello=Oi\n")
	reg.ReloadAll()

	v, _ := reg.Store("pt_BR").Get("hello")
	assert.Equal(t, "Oi", v)

	// Lazy load of a locale without a file yields an empty store.
	assert.Equal(t, 0, reg.Store("en_US").Len())
}

func TestRegistryActivateReusesStore(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(t.TempDir(), "")
	writeFile(t, reg.PathFor("es_ES"), "hello=Hola\n")

	held := reg.Store("es_ES")

	writeFile(t, reg.PathFor("es_ES"), "hello=Buenas\n")

	s, err := reg.Activate("es_ES")
	require.NoError(t, err)
	assert.Same(t, held, s)

	v, _ := held.Get("hello")
	assert.Equal(t, "Buenas", v)
}

func TestRegistryRejectsPathLikeLocales(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reg := NewRegistry(filepath.Join(dir, "i18n"), "")
	writeFile(t, filepath.Join(dir, "secret.properties"), "key=secret\n")

	for _, locale := range []string{"", "..", "../secret", "pt/BR", `pt\BR`} {
		_, err := reg.Activate(locale)
		require.ErrorIs(t, err, ErrInvalidLocale, locale)

		s := reg.Store(locale)
		assert.Zero(t, s.Len(), locale)
		assert.True(t, s.PersistNew(map[string]string{"hello": "Hello"}, ""), locale)
	}

	assert.Empty(t, reg.Locales())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
