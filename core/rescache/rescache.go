// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package rescache memoizes processed dialog templates.

Entries are keyed by a fingerprint of the profile, the raw markup, the entity
and the locale. There is no capacity and no per-entry eviction: the whole
cache is dropped with [Cache.ClearAll] whenever something that feeds the
templates changes. Builds that started before a clear must not repopulate the
cache; they store through [Cache.PutAt] with the [Cache.Generation] they
observed and are dropped once it is stale. When created with compression enabled, templates are stored
zstd-compressed if that makes them smaller and are transparently decompressed
by [Cache.Get].
*/
package rescache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
)

// Entry is a cached template.
type Entry struct {
	// Template is the markup after extraction and presentation, before
	// placeholder substitution.
	Template string
	// Pending reports whether the template had fragments that still needed a
	// translation when it was built.
	Pending bool
}

// stored is an Entry as held in memory.
type stored struct {
	data       []byte
	compressed bool
	pending    bool
}

// Cache is safe for concurrent use. Instances must be constructed with [New].
type Cache struct {
	lock  sync.RWMutex
	items map[string]stored
	// gen counts ClearAll calls. Guarded by lock.
	gen uint64

	compressEnabled bool
	zstdEnc         *zstd.Encoder
	zstdDec         *zstd.Decoder

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// New creates an empty cache.
func New(compress bool) (*Cache, error) {
	c := &Cache{
		items:           make(map[string]stored),
		compressEnabled: compress,
	}

	if compress {
		// A nil writer/reader lets us use EncodeAll/DecodeAll without streams.
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}

		c.zstdEnc = enc
		c.zstdDec = dec
	}

	return c, nil
}

// Fingerprint identifies one rendering of raw for an entity in a locale
// under a profile.
func Fingerprint(profile, raw string, entityID int, locale string) string {
	h := sha256.New()

	for _, part := range []string{profile, raw, strconv.Itoa(entityID), locale} {
		// Length prefixes keep part boundaries unambiguous.
		h.Write([]byte(strconv.Itoa(len(part))))
		h.Write([]byte{':'})
		h.Write([]byte(part))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Put stores e under fingerprint, replacing any previous entry.
func (c *Cache) Put(fingerprint string, e Entry) {
	// Compress before taking the lock; EncodeAll is safe for concurrent use.
	s := c.prepare(e)

	c.lock.Lock()
	c.items[fingerprint] = s
	c.lock.Unlock()
}

// Generation returns the current clear generation.
func (c *Cache) Generation() uint64 {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.gen
}

// PutAt stores e under fingerprint if no ClearAll happened since gen was
// read from [Cache.Generation]. It reports whether e was stored.
func (c *Cache) PutAt(gen uint64, fingerprint string, e Entry) bool {
	s := c.prepare(e)

	c.lock.Lock()
	defer c.lock.Unlock()

	if gen != c.gen {
		return false
	}

	c.items[fingerprint] = s

	return true
}

// Get returns the entry stored under fingerprint.
//
// The second result reports whether it was found. An entry that fails to
// decompress is reported as missing.
func (c *Cache) Get(fingerprint string) (Entry, bool) {
	c.lock.RLock()
	s, ok := c.items[fingerprint]
	c.lock.RUnlock()

	if !ok {
		c.misses.Add(1)

		return Entry{}, false
	}

	e, ok := c.decode(s)
	if !ok {
		c.misses.Add(1)

		return Entry{}, false
	}

	c.hits.Add(1)

	return e, true
}

// ClearAll drops every entry and returns how many there were.
func (c *Cache) ClearAll() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	n := len(c.items)
	c.items = make(map[string]stored)
	c.gen++

	return n
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return len(c.items)
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// prepare compresses the template when enabled and when that saves space.
func (c *Cache) prepare(e Entry) stored {
	raw := []byte(e.Template)

	if c.compressEnabled && len(raw) > 0 {
		if comp := c.zstdEnc.EncodeAll(raw, nil); len(comp) < len(raw) {
			return stored{data: comp, compressed: true, pending: e.Pending}
		}
	}

	return stored{data: raw, pending: e.Pending}
}

func (c *Cache) decode(s stored) (Entry, bool) {
	if !s.compressed {
		return Entry{Template: string(s.data), Pending: s.pending}, true
	}

	if c.zstdDec == nil {
		return Entry{}, false
	}

	decoded, err := c.zstdDec.DecodeAll(s.data, nil)
	if err != nil {
		return Entry{}, false
	}

	return Entry{Template: string(decoded), Pending: s.pending}, true
}
