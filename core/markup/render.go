// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package markup

import (
	"strings"

	"golang.org/x/net/html"
)

var attrValueEscaper = strings.NewReplacer(`"`, "&quot;")

// Render writes n and its descendants in the dialect.
// A document node renders as its children.
func Render(n *html.Node) string {
	var sb strings.Builder

	render(&sb, n)

	return sb.String()
}

// RenderChildren writes the children of n without n itself.
func RenderChildren(n *html.Node) string {
	var sb strings.Builder

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		render(&sb, c)
	}

	return sb.String()
}

func render(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			render(sb, c)
		}

	case html.TextNode:
		sb.WriteString(n.Data)

	case html.CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.Data)
		sb.WriteString("-->")

	case html.ElementNode:
		sb.WriteByte('<')
		sb.WriteString(n.Data)

		for _, a := range n.Attr {
			sb.WriteByte(' ')
			sb.WriteString(a.Key)
			sb.WriteString(`="`)
			sb.WriteString(attrValueEscaper.Replace(a.Val))
			sb.WriteByte('"')
		}

		sb.WriteByte('>')

		if IsVoid(n.Data) {
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			render(sb, c)
		}

		sb.WriteString("</")
		sb.WriteString(n.Data)
		sb.WriteByte('>')

	default:
	}
}
