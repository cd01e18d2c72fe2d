// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package markup parses, normalizes and renders the HTML-like dialect used by
in-game dialog windows.

The dialect is not HTML5: it has void elements of its own (br1, button, edit,
combobox, ...) and clients expect them written without closing tags, text
written without entity escaping, and no implied html/head/body structure. The
tree builder here is therefore driven directly by the [html.Tokenizer] rather
than by the HTML5 parser, and [Render] writes the dialect back out. The
resulting [html.Node] tree is ordinary, so goquery selections work on it.

Parsing never fails: malformed input yields a best-effort tree in which no
text is lost.
*/
package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// voidElements are elements that never have children or closing tags in the dialect.
var voidElements = map[string]bool{
	"br":        true,
	"br1":       true,
	"img":       true,
	"button":    true,
	"edit":      true,
	"combobox":  true,
	"multiedit": true,
	"input":     true,
	"hr":        true,
	"meta":      true,
	"link":      true,
}

// IsVoid reports whether name is a void element of the dialect.
func IsVoid(name string) bool {
	return voidElements[name]
}

// Parse builds a tree from raw markup. The returned node is a
// [html.DocumentNode] whose children mirror the top level of the input.
func Parse(raw string) *html.Node {
	root := &html.Node{Type: html.DocumentNode}
	stack := []*html.Node{root}

	z := html.NewTokenizer(strings.NewReader(raw))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF is the normal end; any other error still leaves a usable tree.
			break
		}

		top := stack[len(stack)-1]

		switch tt {
		case html.TextToken:
			// Raw keeps entities and quotes exactly as written.
			appendText(top, string(z.Raw()))

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			el := newElement(tok.Data, tok.Attr)
			top.AppendChild(el)

			if tt == html.StartTagToken && !IsVoid(el.Data) {
				stack = append(stack, el)
			}

		case html.EndTagToken:
			tok := z.Token()

			// Pop to the nearest open element with this name; stray end tags are dropped.
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Data == tok.Data {
					stack = stack[:i]

					break
				}
			}

		case html.CommentToken:
			top.AppendChild(&html.Node{Type: html.CommentNode, Data: z.Token().Data})

		case html.DoctypeToken:
			// Dialog clients ignore doctypes.
		}
	}

	return root
}

func newElement(name string, attrs []html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
		Attr:     attrs,
	}
}

// NewElement returns a detached element node.
func NewElement(name string, attrs ...html.Attribute) *html.Node {
	return newElement(name, attrs)
}

// NewText returns a detached text node.
func NewText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// appendText adds data to parent, merging with a trailing text node.
func appendText(parent *html.Node, data string) {
	if last := parent.LastChild; last != nil && last.Type == html.TextNode {
		last.Data += data

		return
	}

	parent.AppendChild(NewText(data))
}

// Document wraps root for goquery selection.
func Document(root *html.Node) *goquery.Document {
	return goquery.NewDocumentFromNode(root)
}
