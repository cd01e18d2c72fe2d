// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/magiconair/properties"

	"github.com/Dhousefe/aCisDsec/core/present"
)

// IgnoreKey is the translation config key listing resources that are never translated.
const IgnoreKey = "npc_ignore"

// Rules are the operator settings read from the translation config file.
type Rules struct {
	Tiers  []present.Tier
	Ignore []string
}

// Ignored reports whether path is on the ignore list.
func (r Rules) Ignored(path string) bool {
	return slices.Contains(r.Ignore, strings.TrimSpace(path))
}

// LoadRules reads the translation config file at path.
//
// It always returns usable rules: when the file cannot be read the default
// button tiers and an empty ignore list are returned along with the error,
// and a malformed tier table falls back to the defaults without affecting
// the ignore list.
func LoadRules(path string) (Rules, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return Rules{Tiers: slices.Clone(present.DefaultTiers)}, fmt.Errorf("failed to read translation config %s: %w", path, err)
	}

	rules := Rules{Ignore: splitList(p.GetString(IgnoreKey, ""))}

	rules.Tiers, err = present.TiersFrom(p)
	if err != nil {
		return rules, fmt.Errorf("invalid button tiers in %s: %w", path, err)
	}

	return rules, nil
}

func splitList(s string) []string {
	var out []string

	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
