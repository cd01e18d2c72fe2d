// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package keys derives dictionary keys from dialog text.

A key is a lowercase slug over [a-z0-9_]. The derivation is pure: the same
text always yields the same key, in this process and in any other.
*/
package keys

import (
	"regexp"
	"strings"
)

var (
	// digitGroupRegexp matches a comma used as a digit-group separator, as in 12,345.
	digitGroupRegexp = regexp.MustCompile(`(\d),(\d)`)

	// nonKeyCharRegexp matches any character that cannot appear in a key before dot stripping.
	nonKeyCharRegexp = regexp.MustCompile(`[^a-z0-9.]`)

	underscoreRunRegexp = regexp.MustCompile(`_+`)
)

// Derive turns text into a TranslationKey.
//
// Callers filter out empty text first. Derive may still return "" for text
// made only of punctuation, which callers must treat as "no key".
func Derive(text string) string {
	// Applied twice so that overlapping groups such as 1,2,3 collapse fully.
	s := digitGroupRegexp.ReplaceAllString(text, "$1$2")
	s = digitGroupRegexp.ReplaceAllString(s, "$1$2")

	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ToLower(s)
	s = nonKeyCharRegexp.ReplaceAllString(s, "_")
	s = underscoreRunRegexp.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")

	// "1._qualifying" reads as an ordinal, not a decimal.
	s = strings.ReplaceAll(s, "._", "_")
	s = strings.ReplaceAll(s, ".", "")

	return s
}

// Placeholder returns the %key% token for key.
func Placeholder(key string) string {
	return "%" + key + "%"
}

// IsPlaceholder reports whether s, once trimmed, is entirely a %...% token.
func IsPlaceholder(s string) bool {
	s = strings.TrimSpace(s)

	return len(s) >= 2 && s[0] == '%' && s[len(s)-1] == '%'
}
