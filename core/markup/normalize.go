// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Decorative is the selector for coloring wrappers that carry no meaning of their own.
const Decorative = "font"

// Set is a set of element names.
type Set map[string]bool

// NewSet builds a Set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = true
	}

	return s
}

// DefaultProtected holds the interactive elements whose text is never
// extracted as loose body text: anchors, buttons, text inputs and dropdowns.
var DefaultProtected = NewSet("a", "button", "edit", "multiedit", "combobox", "input", "textarea", "select")

// Normalize parses raw and strips decorative wrappers, keeping their content in place.
func Normalize(raw string) *html.Node {
	root := Parse(raw)

	UnwrapAll(root, Decorative)

	return root
}

// UnwrapAll replaces every element matching selector with its children, then
// merges the text nodes this leaves side by side.
func UnwrapAll(root *html.Node, selector string) {
	Document(root).Find(selector).Each(func(_ int, s *goquery.Selection) {
		Unwrap(s.Get(0))
	})

	MergeText(root)
}

// Unwrap replaces n with its children.
func Unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}

	parent.RemoveChild(n)
}

// MergeText joins adjacent text nodes throughout the tree.
func MergeText(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling

		if c.Type == html.TextNode {
			for next != nil && next.Type == html.TextNode {
				c.Data += next.Data
				after := next.NextSibling
				n.RemoveChild(next)
				next = after
			}
		} else {
			MergeText(c)
		}

		c = next
	}
}

// Content returns the node whose children form the body of the markup:
// the first body element, else the first html element, else root.
func Content(root *html.Node) *html.Node {
	doc := Document(root)

	if body := doc.Find("body").First(); body.Length() > 0 {
		return body.Get(0)
	}

	if h := doc.Find("html").First(); h.Length() > 0 {
		return h.Get(0)
	}

	return root
}

// InSet reports whether n or any of its ancestors is an element named in set.
func InSet(n *html.Node, set Set) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && set[p.Data] {
			return true
		}
	}

	return false
}

// TextNodes returns, in document order, the text nodes under root for which
// skip returns false. A nil skip keeps every text node.
func TextNodes(root *html.Node, skip func(*html.Node) bool) []*html.Node {
	var out []*html.Node

	var walk func(*html.Node)

	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if skip == nil || !skip(c) {
					out = append(out, c)
				}
			case html.ElementNode, html.DocumentNode:
				walk(c)
			default:
			}
		}
	}

	walk(root)

	return out
}

// CollapseSpace trims s and collapses each run of whitespace to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}

	n.AppendChild(NewText(text))
}

// ReplaceCore replaces the non-space part of a text node's data with text,
// keeping its leading and trailing whitespace.
func ReplaceCore(n *html.Node, text string) {
	data := n.Data
	trimmedLeft := strings.TrimLeft(data, " \t\r\n")
	lead := data[:len(data)-len(trimmedLeft)]
	core := strings.TrimRight(trimmedLeft, " \t\r\n")
	trail := trimmedLeft[len(core):]

	n.Data = lead + text + trail
}

// AttrOr returns the value of attribute key on n, or def.
func AttrOr(n *html.Node, key, def string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}

	return def
}

// SetAttr sets attribute key on n, adding it if missing.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val

			return
		}
	}

	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
