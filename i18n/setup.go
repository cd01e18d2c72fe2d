// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/leonelquinteros/gotext"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

//go:embed po/*.po
var embedded embed.FS

// poDomain is the gettext domain every catalogue is loaded under.
const poDomain = "l2i18n"

// catalog is one loaded set of gettext catalogues.
type catalog struct {
	// locales is keyed by canonical tag string, e.g. "pt-BR".
	locales map[string]*gotext.Locale
	// tags lists the matcher's supported tags, base tag first.
	tags    []language.Tag
	matcher language.Matcher
}

// active is nil until Setup succeeds.
var active atomic.Pointer[catalog]

// Setup loads the gettext catalogues embedded in the binary and makes them
// the active set. Calling it again replaces the previous set.
//
// Each catalogue is a file po/<locale>.po whose name may use an underscore
// or a hyphen ("pt_BR.po", "pt-BR.po"). Files whose name does not parse as a
// language tag are skipped with a warning. The template po/l2i18n.pot is not
// a catalogue.
//
// Until Setup has run every lookup returns its msgid unchanged.
func Setup() error {
	Logger = log.With().Str("sys", "i18n").Logger()

	c, err := loadCatalog(embedded, "po")
	if err != nil {
		return err
	}

	active.Store(c)

	return nil
}

func loadCatalog(fsys fs.FS, dir string) (*catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	c := &catalog{locales: map[string]*gotext.Locale{}}

	var loaded []language.Tag

	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".po")
		if entry.IsDir() || !ok {
			continue
		}

		tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
		if err != nil {
			Logger.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping catalogue with an invalid locale name")

			continue
		}

		po := gotext.NewPoFS(fsys)
		po.ParseFile(path.Join(dir, entry.Name()))

		loc := gotext.NewLocale("", tag.String())
		loc.AddTranslator(poDomain, po)

		c.locales[tag.String()] = loc
		loaded = append(loaded, tag)

		Logger.Debug().Str("locale", tag.String()).Msg("Loaded catalogue")
	}

	slices.SortFunc(loaded, func(a, b language.Tag) int { return strings.Compare(a.String(), b.String()) })

	// The base tag goes first so that it wins when nothing matches.
	c.tags = append([]language.Tag{baseTag}, slices.DeleteFunc(loaded, func(t language.Tag) bool { return t == baseTag })...)
	c.matcher = language.NewMatcher(c.tags)

	Logger.Info().Int("locales", len(c.locales)).Str("domain", poDomain).Msg("Loaded message catalogues")

	return c, nil
}

// lookup picks the loaded locale that best serves t. It returns a nil
// locale, and the base tag, when no catalogue is active.
func (c *catalog) lookup(t language.Tag) (*gotext.Locale, language.Tag) {
	if c == nil {
		return nil, baseTag
	}

	// The matched tag may carry extensions; the index names the loaded tag.
	_, idx := language.MatchStrings(c.matcher, t.String())
	supported := c.tags[idx]

	return c.locales[supported.String()], supported
}
