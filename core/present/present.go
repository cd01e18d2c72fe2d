// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package present applies the client-facing layout rules to a markup tree:
// links become size-tiered buttons, long text runs are wrapped and button
// captions are capped.
package present

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/Dhousefe/aCisDsec/core/markup"
)

const (
	// WrapThreshold is the run length from which a text node gets wrapped.
	WrapThreshold = 50
	// WrapWidth is the maximum length of one wrapped line.
	WrapWidth = 49
	// CaptionLimit is the maximum length of a button caption.
	CaptionLimit = 45

	lineBreak = "br1"
)

// Controls are the elements whose presence means the markup already has its
// own widgets and links must be left as they are.
const Controls = "button, edit, combobox"

// Converter turns anchors into buttons.
type Converter struct {
	Tiers []Tier
	// Measure returns the display length of a caption. When nil the caption's
	// rune count is used.
	Measure func(caption string) int
}

// Convert replaces every anchor under root with a button sized for its
// caption and returns how many were converted. Nothing is converted when the
// tree already contains a control.
func (c Converter) Convert(root *html.Node) int {
	doc := markup.Document(root)
	if doc.Find(Controls).Length() > 0 {
		return 0
	}

	converted := 0

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		a := s.Get(0)

		markup.UnwrapAll(a, markup.Decorative)

		caption := stripQuotes(stripQuotes(markup.CollapseSpace(s.Text())))
		tier := Select(c.Tiers, c.measure(caption))

		button := markup.NewElement("button",
			html.Attribute{Key: "width", Val: strconv.Itoa(tier.Width)},
			html.Attribute{Key: "height", Val: strconv.Itoa(tier.Height)},
			html.Attribute{Key: "back", Val: tier.Back},
			html.Attribute{Key: "fore", Val: tier.Fore},
			html.Attribute{Key: "action", Val: markup.AttrOr(a, "action", "")},
			html.Attribute{Key: "value", Val: caption},
		)

		a.Parent.InsertBefore(button, a)
		a.Parent.RemoveChild(a)

		converted++
	})

	return converted
}

func (c Converter) measure(caption string) int {
	if c.Measure != nil {
		return c.Measure(caption)
	}

	return utf8.RuneCountInString(caption)
}

// stripQuotes removes one layer of surrounding double quotes.
func stripQuotes(s string) string {
	if len(s) > 1 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}

	return s
}

// Wrap drops existing soft line breaks and then splits every text run of at
// least WrapThreshold characters into lines of at most WrapWidth, preferring
// to break at the last space that fits.
func Wrap(root *html.Node) {
	markup.Document(root).Find(lineBreak).Remove()
	markup.MergeText(root)

	for _, n := range markup.TextNodes(root, nil) {
		if utf8.RuneCountInString(n.Data) < WrapThreshold {
			continue
		}

		wrapNode(n)
	}
}

func wrapNode(n *html.Node) {
	parent := n.Parent
	lines := SplitLines(n.Data)

	for i, line := range lines {
		if i > 0 {
			parent.InsertBefore(markup.NewElement(lineBreak), n)
			line = " " + line
		}

		parent.InsertBefore(markup.NewText(line), n)
	}

	parent.RemoveChild(n)
}

// SplitLines cuts s into lines of at most WrapWidth characters. A line ends
// before the last space within reach when there is one. Spaces preceding that
// one stay on the line, and spaces at the start of the following line are
// dropped.
func SplitLines(s string) []string {
	r := []rune(s)

	var lines []string

	for idx := 0; idx < len(r); {
		end := min(idx+WrapWidth, len(r))

		if end < len(r) {
			if sp := lastSpace(r, idx, end); sp > idx {
				end = sp
			}
		}

		lines = append(lines, string(r[idx:end]))
		idx = end

		for idx < len(r) && r[idx] == ' ' {
			idx++
		}

		// A break followed only by spaces still ends with an empty line.
		if idx == len(r) && end < len(r) {
			lines = append(lines, "")
		}
	}

	return lines
}

func lastSpace(r []rune, from, at int) int {
	for i := at; i > from; i-- {
		if r[i] == ' ' {
			return i
		}
	}

	return -1
}

// CapCaptions truncates every button value longer than limit characters.
func CapCaptions(root *html.Node, limit int) {
	markup.Document(root).Find("button[value]").Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)

		value := markup.AttrOr(n, "value", "")
		if utf8.RuneCountInString(value) <= limit {
			return
		}

		markup.SetAttr(n, "value", string([]rune(value)[:limit]))
	})
}
