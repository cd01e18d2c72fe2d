// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// BaseLocale is the language of every msgid and the fallback for lookups.
const BaseLocale = "en"

var baseTag = language.Make(BaseLocale)

// Languages returns the tags with a loaded catalogue plus the base tag,
// sorted by tag string. It panics if Setup has not run.
func Languages() []language.Tag {
	c := active.Load()
	if c == nil {
		panic("i18n: Setup must be called before calling Languages")
	}

	out := slices.Clone(c.tags)
	slices.SortFunc(out, func(a, b language.Tag) int { return strings.Compare(a.String(), b.String()) })

	return out
}

// TagForLocale converts a dictionary locale name such as "pt_BR" into a
// language tag. Names that do not parse yield the [BaseLocale] tag.
func TagForLocale(locale string) language.Tag {
	t, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return baseTag
	}

	return t
}

// DisplayName returns the name of t in its own language, for example
// "português (Brasil)". It falls back to the tag string.
func DisplayName(t language.Tag) string {
	if name := display.Self.Name(t); name != "" {
		return name
	}

	return t.String()
}
