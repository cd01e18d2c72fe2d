// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package extract rewrites translatable text in a normalized markup tree into
// %key% placeholders and collects the fragments the dictionary cannot resolve yet.
package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Dhousefe/aCisDsec/core/keys"
	"github.com/Dhousefe/aCisDsec/core/markup"
)

// QuestToken is link text owned by the quest dialog subsystem. It is never extracted.
const QuestToken = "quest"

// Dictionary is the read side of a locale dictionary.
type Dictionary interface {
	Get(key string) (string, bool)
}

// Result describes one extraction run.
type Result struct {
	// Fragments maps each key that still needs a translation to its source text.
	Fragments map[string]string
	// Substituted counts the nodes rewritten to placeholders.
	Substituted int
}

// Pending reports whether any fragment still needs a translation.
func (r Result) Pending() bool {
	return len(r.Fragments) > 0
}

type run struct {
	dict Dictionary
	res  Result

	// seen maps every key claimed in this run to the text that claimed it.
	seen map[string]string
}

// Extract runs the link pass and then the body-text pass over root, mutating
// it in place. Text inside elements of protected (anchors included) is left
// to the link pass or untouched.
func Extract(root *html.Node, dict Dictionary, protected markup.Set) Result {
	r := &run{
		dict: dict,
		res:  Result{Fragments: map[string]string{}},
		seen: map[string]string{},
	}

	r.links(root)
	r.body(root, protected)

	return r.res
}

func (r *run) links(root *html.Node) {
	markup.Document(root).Find("a").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if skip(text) {
			return
		}

		if key, ok := r.register(text); ok {
			markup.SetText(s.Get(0), keys.Placeholder(key))
			r.res.Substituted++
		}
	})
}

func (r *run) body(root *html.Node, protected markup.Set) {
	if protected == nil {
		protected = markup.DefaultProtected
	}

	nodes := markup.TextNodes(root, func(n *html.Node) bool {
		return markup.InSet(n, protected) || markup.InSet(n, linkOnly)
	})

	for _, n := range nodes {
		text := strings.TrimSpace(n.Data)
		if skip(text) {
			continue
		}

		if key, ok := r.register(text); ok {
			markup.ReplaceCore(n, keys.Placeholder(key))
			r.res.Substituted++
		}
	}
}

// linkOnly keeps anchors out of the body pass even under a custom protected set.
var linkOnly = markup.NewSet("a")

// register derives and claims a key for text. It reports whether the node
// should be rewritten to the key's placeholder, which is the case whenever the
// dictionary has a non-empty entry. Text without a usable entry, or whose
// entry still equals the source text, is recorded as a pending fragment.
func (r *run) register(text string) (string, bool) {
	base := keys.Derive(text)
	if base == "" {
		return "", false
	}

	key := r.claim(base, text)

	v, ok := r.dict.Get(key)
	if !ok || v == "" {
		r.res.Fragments[key] = text

		return key, false
	}

	if v == text {
		r.res.Fragments[key] = text
	}

	return key, true
}

// claim returns base if it is free or already claimed by the same text,
// otherwise the first of base_1, base_2, ... that is.
func (r *run) claim(base, text string) string {
	key := base

	for n := 1; ; n++ {
		prev, ok := r.seen[key]
		if !ok {
			r.seen[key] = text

			return key
		}

		if prev == text {
			return key
		}

		key = base + "_" + strconv.Itoa(n)
	}
}

func skip(text string) bool {
	return text == "" || strings.EqualFold(text, QuestToken) || keys.IsPlaceholder(text)
}
