// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package rescache

import (
	"strconv"
	"strings"
	"sync"
	"testing"
)

// TestNew checks cache creation with and without compression.
func TestNew(t *testing.T) {
	t.Parallel()

	for _, compress := range []bool{false, true} {
		t.Run("compress="+strconv.FormatBool(compress), func(t *testing.T) {
			t.Parallel()

			cache, err := New(compress)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if cache.Len() != 0 {
				t.Errorf("expected cache length to be 0, got %d", cache.Len())
			}
		})
	}
}

// TestPutAndGet verifies round trips of both compressible and tiny templates.
func TestPutAndGet(t *testing.T) {
	t.Parallel()

	for _, compress := range []bool{false, true} {
		t.Run("compress="+strconv.FormatBool(compress), func(t *testing.T) {
			t.Parallel()

			cache, err := New(compress)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			entries := map[string]Entry{
				"large": {Template: strings.Repeat("<a action=\"bypass -h npc_%objectId%_Chat\">%talk%</a><br>", 200)},
				"small": {Template: "<br>", Pending: true},
				"empty": {},
			}

			for fp, e := range entries {
				cache.Put(fp, e)
			}

			for fp, want := range entries {
				got, ok := cache.Get(fp)
				if !ok {
					t.Fatalf("expected %q to be present", fp)
				}

				if got != want {
					t.Errorf("entry %q: expected %+v, got %+v", fp, want, got)
				}
			}

			if _, ok := cache.Get("absent"); ok {
				t.Error("expected absent fingerprint to miss")
			}

			stats := cache.Stats()
			if stats.Entries != 3 || stats.Hits != 3 || stats.Misses != 1 {
				t.Errorf("unexpected stats: %+v", stats)
			}
		})
	}
}

// TestCompressionStoresLess checks that repetitive templates are held compressed.
func TestCompressionStoresLess(t *testing.T) {
	t.Parallel()

	cache, err := New(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	template := strings.Repeat("Welcome to the village of Gludin. ", 100)
	cache.Put("fp", Entry{Template: template})

	s := cache.items["fp"]
	if !s.compressed || len(s.data) >= len(template) {
		t.Errorf("expected compressed storage smaller than %d bytes, got %d (compressed=%v)",
			len(template), len(s.data), s.compressed)
	}
}

// TestPutReplaces verifies that a second Put overwrites the first.
func TestPutReplaces(t *testing.T) {
	t.Parallel()

	cache, _ := New(false)

	cache.Put("fp", Entry{Template: "old", Pending: true})
	cache.Put("fp", Entry{Template: "new"})

	got, _ := cache.Get("fp")
	if got.Template != "new" || got.Pending {
		t.Errorf("expected replaced entry, got %+v", got)
	}

	if cache.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", cache.Len())
	}
}

// TestClearAll verifies that all entries are dropped at once.
func TestClearAll(t *testing.T) {
	t.Parallel()

	cache, _ := New(true)

	for i := range 10 {
		cache.Put(strconv.Itoa(i), Entry{Template: "x"})
	}

	if n := cache.ClearAll(); n != 10 {
		t.Errorf("expected 10 cleared entries, got %d", n)
	}

	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got %d", cache.Len())
	}

	if _, ok := cache.Get("1"); ok {
		t.Error("expected cleared entry to miss")
	}
}

// TestPutAtDropsEntriesBuiltBeforeClear covers a build racing a clear.
func TestPutAtDropsEntriesBuiltBeforeClear(t *testing.T) {
	t.Parallel()

	cache, _ := New(false)

	gen := cache.Generation()
	if !cache.PutAt(gen, "fresh", Entry{Template: "x"}) {
		t.Fatal("expected put at the current generation to be stored")
	}

	stale := cache.Generation()
	cache.ClearAll()

	if cache.Generation() == stale {
		t.Fatal("expected ClearAll to advance the generation")
	}

	if cache.PutAt(stale, "old", Entry{Template: "stale"}) {
		t.Error("expected put from before the clear to be dropped")
	}

	if _, ok := cache.Get("old"); ok {
		t.Error("expected stale entry to be absent")
	}

	if !cache.PutAt(cache.Generation(), "old", Entry{Template: "new"}) {
		t.Error("expected put after the clear to be stored")
	}
}

// TestFingerprint checks that every component changes the fingerprint.
func TestFingerprint(t *testing.T) {
	t.Parallel()

	base := Fingerprint("npc", "<html>Hello</html>", 1, "pt_BR")

	if base != Fingerprint("npc", "<html>Hello</html>", 1, "pt_BR") {
		t.Error("expected fingerprint to be deterministic")
	}

	variants := []string{
		Fingerprint("tutorial", "<html>Hello</html>", 1, "pt_BR"),
		Fingerprint("npc", "<html>Hello!</html>", 1, "pt_BR"),
		Fingerprint("npc", "<html>Hello</html>", 2, "pt_BR"),
		Fingerprint("npc", "<html>Hello</html>", 1, "en_US"),
		// Moving text across a boundary must not collide.
		Fingerprint("npc<html>", "Hello</html>", 1, "pt_BR"),
	}

	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collides with base fingerprint", i)
		}
	}
}

// TestConcurrentAccess runs Put, Get and ClearAll from many goroutines.
func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache, _ := New(true)

	var wg sync.WaitGroup

	for g := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range 100 {
				fp := strconv.Itoa(g*1000 + i)
				cache.Put(fp, Entry{Template: strings.Repeat("data ", i)})
				cache.Get(fp)

				if i%25 == 0 {
					cache.ClearAll()
				}
			}
		}()
	}

	wg.Wait()
}
