// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package resolve substitutes %key% placeholders with dictionary text and
// applies the final layout pass to the result.
package resolve

import (
	"regexp"
	"strings"

	"github.com/Dhousefe/aCisDsec/core/dictionary"
	"github.com/Dhousefe/aCisDsec/core/markup"
	"github.com/Dhousefe/aCisDsec/core/present"
)

// Reserved tokens belong to other subsystems and are never substituted.
var Reserved = []string{"quest", "objectId"}

var tokenPattern = regexp.MustCompile(`%([^%<>\s"]+)%`)

// Dictionary returns the text of key, or [dictionary.Unresolved] of key when
// it has none.
type Dictionary interface {
	Lookup(key string) string
}

// Stats describes one resolution.
type Stats struct {
	Resolved   int
	Unresolved []string
}

// IsReserved reports whether key is one of the Reserved tokens.
func IsReserved(key string) bool {
	for _, r := range Reserved {
		if strings.EqualFold(key, r) {
			return true
		}
	}

	return false
}

// Substitute replaces every resolvable placeholder in raw. Keys are looked
// up once each in order of first appearance; keys that do not resolve are
// retried once after the scan and left as %key% if they still do not.
func Substitute(raw string, dict Dictionary) (string, Stats) {
	values := map[string]string{}

	var (
		stats   Stats
		pending []string
		seen    = map[string]bool{}
	)

	for _, m := range tokenPattern.FindAllStringSubmatch(raw, -1) {
		key := m[1]
		if IsReserved(key) || seen[key] {
			continue
		}

		seen[key] = true

		if v, ok := lookup(dict, key); ok {
			values[key] = v
		} else {
			pending = append(pending, key)
		}
	}

	for _, key := range pending {
		if v, ok := lookup(dict, key); ok {
			values[key] = v
		} else {
			stats.Unresolved = append(stats.Unresolved, key)
		}
	}

	stats.Resolved = len(values)

	if len(values) == 0 {
		return raw, stats
	}

	out := tokenPattern.ReplaceAllStringFunc(raw, func(token string) string {
		if v, ok := values[token[1:len(token)-1]]; ok {
			return v
		}

		return token
	})

	return out, stats
}

func lookup(dict Dictionary, key string) (string, bool) {
	v := dict.Lookup(key)
	if v == dictionary.Unresolved(key) {
		return "", false
	}

	return Unwrap(v), true
}

// Unwrap removes one layer of [..] brackets and then one layer of double
// quotes from a dictionary value.
func Unwrap(v string) string {
	if len(v) > 1 && strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") {
		v = v[1 : len(v)-1]
	}

	if len(v) > 1 && strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		v = v[1 : len(v)-1]
	}

	return v
}

// Finish applies the layout rules that hold for every delivered window:
// decorative wrappers go, text is rewrapped and button captions are capped.
func Finish(raw string) string {
	root := markup.Parse(raw)

	markup.UnwrapAll(root, markup.Decorative)
	present.Wrap(root)
	present.CapCaptions(root, present.CaptionLimit)

	return markup.Render(root)
}

// Resolve substitutes placeholders in raw and finishes the result.
func Resolve(raw string, dict Dictionary) (string, Stats) {
	out, stats := Substitute(raw, dict)

	return Finish(out), stats
}
