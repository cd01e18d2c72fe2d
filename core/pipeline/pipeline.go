// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package pipeline turns dialog markup into localized client markup.

A resolution runs the stages in a fixed order: the markup is normalized,
translatable text is rewritten into %key% placeholders, fragments that have no
translation yet are appended to the locale's dictionary, links become sized
buttons and the content is placed into the profile skeleton. That template is
cached per (profile, markup, entity, locale). Every call, cached or not, then
substitutes placeholders from the dictionary and applies the final layout pass.

When a template needed no further translation, the resolved markup is also
written next to its source file with the locale as a suffix, so that later
requests for the same file can serve it directly.

[Pipeline.Resolve] never fails. Problems are logged and degrade to fixed
messages or to unprocessed markup.
*/
package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	fileatomic "github.com/natefinch/atomic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Dhousefe/aCisDsec/core/dictionary"
	"github.com/Dhousefe/aCisDsec/core/extract"
	"github.com/Dhousefe/aCisDsec/core/markup"
	"github.com/Dhousefe/aCisDsec/core/present"
	"github.com/Dhousefe/aCisDsec/core/rescache"
	"github.com/Dhousefe/aCisDsec/core/resolve"
	"github.com/Dhousefe/aCisDsec/i18n"
)

// DefaultMaxLength is the largest markup, in characters, that is processed.
const DefaultMaxLength = 8192

// Fixed messages shown instead of a window that cannot be produced.
const (
	MsgTooLong i18n.MsgKey = "Html was too long."
	MsgMissing i18n.MsgKey = "My HTML is missing."
)

const dirPermissions = 0o755

var errNoDictionaries = errors.New("pipeline: no dictionary registry")

// Options configure a Pipeline.
type Options struct {
	Dictionaries *dictionary.Registry
	// Cache is created uncompressed when nil.
	Cache *rescache.Cache
	// Rules carries the button tiers and the ignore list.
	Rules Rules
	// MaxLength defaults to DefaultMaxLength.
	MaxLength int
	// Root is prepended to relative resource paths when reading and
	// materializing files. When set, paths that leave it are treated as
	// missing. Provenance comments keep the path as given.
	Root string
	// DisableMaterialize turns off writing resolved files next to their source.
	DisableMaterialize bool
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	dicts       *dictionary.Registry
	cache       *rescache.Cache
	rules       Rules
	maxLen      int
	root        string
	materialize bool
	logger      zerolog.Logger

	counters counters
}

type counters struct {
	resolved     atomic.Int64
	bypassed     atomic.Int64
	rejected     atomic.Int64
	built        atomic.Int64
	persisted    atomic.Int64
	materialized atomic.Int64
}

// Stats is a snapshot of pipeline counters.
type Stats struct {
	Resolved     int64          `json:"resolved"`
	Bypassed     int64          `json:"bypassed"`
	Rejected     int64          `json:"rejected"`
	Built        int64          `json:"built"`
	Persisted    int64          `json:"persisted"`
	Materialized int64          `json:"materialized"`
	Cache        rescache.Stats `json:"cache"`
}

// New creates a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Dictionaries == nil {
		return nil, errNoDictionaries
	}

	cache := opts.Cache
	if cache == nil {
		var err error

		cache, err = rescache.New(false)
		if err != nil {
			return nil, err
		}
	}

	maxLen := opts.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	rules := opts.Rules
	if len(rules.Tiers) == 0 {
		rules.Tiers = present.DefaultTiers
	}

	root := opts.Root
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("pipeline: resolving root %s: %w", root, err)
		}

		root = abs
	}

	return &Pipeline{
		dicts:       opts.Dictionaries,
		cache:       cache,
		rules:       rules,
		maxLen:      maxLen,
		root:        root,
		materialize: !opts.DisableMaterialize,
		logger:      log.With().Str("sys", "pipeline").Logger(),
	}, nil
}

// Cache returns the resolution cache.
func (p *Pipeline) Cache() *rescache.Cache { return p.cache }

// Dictionaries returns the dictionary registry.
func (p *Pipeline) Dictionaries() *dictionary.Registry { return p.dicts }

// Stats returns the current counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Resolved:     p.counters.resolved.Load(),
		Bypassed:     p.counters.bypassed.Load(),
		Rejected:     p.counters.rejected.Load(),
		Built:        p.counters.built.Load(),
		Persisted:    p.counters.persisted.Load(),
		Materialized: p.counters.materialized.Load(),
		Cache:        p.cache.Stats(),
	}
}

// Resolve localizes raw as an NPC dialog. See [Pipeline.ResolveAs].
func (p *Pipeline) Resolve(raw string, entityID int, locale string, enabled bool, sourcePath string) string {
	return p.ResolveAs(NpcDialog, raw, entityID, locale, enabled, sourcePath)
}

// ResolveAs localizes raw for locale under profile.
//
// When enabled is false raw is returned unchanged. sourcePath names the file
// raw was read from; it is used as provenance for new dictionary entries and
// as the base name of the materialized file, and may be empty.
func (p *Pipeline) ResolveAs(profile Profile, raw string, entityID int, locale string, enabled bool, sourcePath string) string {
	if !enabled {
		p.counters.bypassed.Add(1)

		return raw
	}

	if utf8.RuneCountInString(raw) > p.maxLen {
		p.counters.rejected.Add(1)
		p.logger.Warn().
			Str("path", sourcePath).
			Int("length", utf8.RuneCountInString(raw)).
			Int("max", p.maxLen).
			Msg("Markup was too long")

		return p.message(locale, MsgTooLong)
	}

	dict := p.dicts.Store(locale)
	fingerprint := rescache.Fingerprint(profile.Name, raw, entityID, locale)

	gen := p.cache.Generation()

	entry, hit := p.cache.Get(fingerprint)
	if !hit {
		entry = p.build(profile, raw, dict, sourcePath)
		if !p.cache.PutAt(gen, fingerprint, entry) {
			p.logger.Debug().Str("path", sourcePath).Msg("Cache was cleared during build, template not stored")
		}
	}

	out, stats := resolve.Resolve(entry.Template, dict)

	p.counters.resolved.Add(1)
	p.logger.Debug().
		Str("profile", profile.Name).
		Str("locale", locale).
		Str("path", sourcePath).
		Bool("cached", hit).
		Bool("pending", entry.Pending).
		Int("resolved", stats.Resolved).
		Strs("unresolved", stats.Unresolved).
		Msg("Resolved markup")

	if !hit && !entry.Pending {
		p.materializeFile(sourcePath, locale, out)
	}

	return out
}

// build runs the stages that produce a cacheable template.
func (p *Pipeline) build(profile Profile, raw string, dict *dictionary.Store, sourcePath string) rescache.Entry {
	p.counters.built.Add(1)

	root := markup.Normalize(raw)

	res := extract.Extract(root, dict, profile.Protected)

	pending := false
	if res.Pending() {
		pending = dict.PersistNew(res.Fragments, sourcePath)
		if pending {
			p.counters.persisted.Add(1)
			p.logger.Info().
				Str("locale", dict.Locale()).
				Str("path", sourcePath).
				Interface("fragments", res.Fragments).
				Msg("Markup has fragments awaiting translation")
		}
	}

	converter := present.Converter{
		Tiers: p.rules.Tiers,
		// Buttons are sized for the text the player will see.
		Measure: func(caption string) int {
			shown, _ := resolve.Substitute(caption, dict)

			return utf8.RuneCountInString(shown)
		},
	}
	converter.Convert(root)

	content := markup.Content(root)
	markup.UnwrapAll(content, "html, body, center")

	return rescache.Entry{
		Template: profile.wrap(strings.TrimSpace(markup.RenderChildren(content))),
		Pending:  pending,
	}
}

// ResolveFile reads the resource at path and localizes it under profile.
//
// Ignored resources and actors with translation disabled get the file as is.
// Otherwise an already localized sibling (see [LocalizedPath]) is served
// verbatim when it exists, and the base file goes through the pipeline when
// it does not. A missing file yields a fixed message.
func (p *Pipeline) ResolveFile(profile Profile, path string, entityID int, locale string, enabled bool) string {
	if p.rules.Ignored(path) || !enabled {
		p.counters.bypassed.Add(1)

		raw, ok := p.read(path, locale)
		if !ok {
			return p.message(locale, MsgMissing)
		}

		return raw
	}

	if localized := LocalizedPath(path, locale); p.exists(localized) {
		if raw, ok := p.read(localized, locale); ok {
			p.logger.Debug().Str("path", localized).Msg("Serving localized file")

			return raw
		}
	}

	raw, ok := p.read(path, locale)
	if !ok {
		return p.message(locale, MsgMissing)
	}

	return p.ResolveAs(profile, raw, entityID, locale, true, path)
}

// Ignored reports whether path is on the ignore list and served unprocessed.
func (p *Pipeline) Ignored(path string) bool {
	return p.rules.Ignored(path)
}

// ClearCache drops every cached template and returns how many there were.
func (p *Pipeline) ClearCache() int {
	n := p.cache.ClearAll()

	p.logger.Info().Int("entries", n).Msg("Cleared resolution cache")

	return n
}

// LocalizedPath returns path with "_<locale>" inserted before the extension.
// The locale is lowercased with '-' replaced by '_'. A path without extension
// gets ".htm".
func LocalizedPath(path, locale string) string {
	suffix := "_" + strings.ReplaceAll(strings.ToLower(locale), "-", "_")

	ext := filepath.Ext(path)
	if ext == "" {
		return path + suffix + ".htm"
	}

	return strings.TrimSuffix(path, ext) + suffix + ext
}

// fullPath resolves path against Root. With a Root set, paths that end up
// outside of it are refused.
func (p *Pipeline) fullPath(path string) (string, bool) {
	if p.root == "" {
		return path, true
	}

	if !filepath.IsAbs(path) {
		if !filepath.IsLocal(path) {
			return "", false
		}

		return filepath.Join(p.root, path), true
	}

	rel, err := filepath.Rel(p.root, path)
	if err != nil || !filepath.IsLocal(rel) {
		return "", false
	}

	return filepath.Clean(path), true
}

func (p *Pipeline) exists(path string) bool {
	full, ok := p.fullPath(path)
	if !ok {
		return false
	}

	_, err := os.Stat(full)

	return err == nil
}

func (p *Pipeline) read(path, locale string) (string, bool) {
	full, ok := p.fullPath(path)
	if !ok {
		p.logger.Warn().Str("path", path).Str("locale", locale).Str("root", p.root).Msg("Refused path outside the resource root")

		return "", false
	}

	data, err := os.ReadFile(full)
	if err != nil {
		event := p.logger.Warn().Str("path", path).Str("locale", locale)
		if !errors.Is(err, fs.ErrNotExist) {
			event = event.Err(err)
		}

		event.Msg("HTML file is missing")

		return "", false
	}

	return string(data), true
}

// materializeFile writes out next to the source file. Failures are logged.
func (p *Pipeline) materializeFile(sourcePath, locale, out string) {
	if !p.materialize || sourcePath == "" {
		return
	}

	target, ok := p.fullPath(LocalizedPath(sourcePath, locale))
	if !ok {
		p.logger.Warn().Str("path", sourcePath).Str("root", p.root).Msg("Refused to materialize outside the resource root")

		return
	}

	if err := os.MkdirAll(filepath.Dir(target), dirPermissions); err != nil {
		p.logger.Warn().Err(err).Str("path", target).Msg("Failed to create directory for localized file")

		return
	}

	if err := fileatomic.WriteFile(target, strings.NewReader(out)); err != nil {
		p.logger.Warn().Err(err).Str("path", target).Msg("Failed to write localized file")

		return
	}

	p.counters.materialized.Add(1)
	p.logger.Info().Str("path", target).Str("locale", locale).Msg("Saved localized file")
}

func (p *Pipeline) message(locale string, msg i18n.MsgKey) string {
	return "<html><body>" + i18n.TrFor(locale, string(msg)) + "</body></html>"
}
