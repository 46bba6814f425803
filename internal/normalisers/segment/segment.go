// Package segment splits a section's HTML into block-level semantic
// units. Sections arrive pre-split at heading boundaries; encountering
// a heading therefore terminates the walk rather than crossing into
// the next section.
package segment

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

// directKinds maps element names that become items as-is.
var directKinds = map[string]domain.ItemKind{
	"p":          domain.ItemParagraph,
	"ul":         domain.ItemList,
	"ol":         domain.ItemList,
	"table":      domain.ItemTable,
	"pre":        domain.ItemPre,
	"blockquote": domain.ItemBlockquote,
	"figure":     domain.ItemFigure,
}

// Items segments the section HTML into ordered section items. Text
// nodes with non-whitespace content become paragraphs, wrapper divs
// and sections are unwrapped, and unrecognised tags become "other"
// items.
func Items(sectionHTML string) []domain.SectionItem {
	nodes, err := html.ParseFragment(strings.NewReader(sectionHTML), &html.Node{
		Type: html.ElementNode, Data: "body", DataAtom: atom.Body,
	})
	if err != nil {
		return nil
	}

	var items []domain.SectionItem
	for _, n := range nodes {
		if isHeading(n) {
			break
		}
		if item, ok := itemFor(n); ok {
			items = append(items, item)
		}
	}
	return items
}

// itemFor classifies one top-level node.
func itemFor(n *html.Node) (domain.SectionItem, bool) {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return domain.SectionItem{}, false
		}
		return domain.SectionItem{Kind: domain.ItemParagraph, HTML: n.Data}, true

	case html.ElementNode:
		if kind, ok := directKinds[n.Data]; ok {
			return domain.SectionItem{Kind: kind, HTML: render(n)}, true
		}
		if n.Data == "div" || n.Data == "section" {
			return unwrap(n)
		}
		return domain.SectionItem{Kind: domain.ItemOther, HTML: render(n)}, true

	default:
		return domain.SectionItem{}, false
	}
}

// unwrap handles div/section wrappers: figure-classed wrappers are
// figures, wrappers directly holding a structural child lift that
// child, and anything else is treated as paragraph content.
func unwrap(n *html.Node) (domain.SectionItem, bool) {
	if class, _ := attrVal(n, "class"); strings.Contains(class, "figure") {
		return domain.SectionItem{Kind: domain.ItemFigure, HTML: render(n)}, true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "table":
			return domain.SectionItem{Kind: domain.ItemTable, HTML: render(c)}, true
		case "ul", "ol":
			return domain.SectionItem{Kind: domain.ItemList, HTML: render(c)}, true
		case "figure":
			return domain.SectionItem{Kind: domain.ItemFigure, HTML: render(c)}, true
		}
	}

	if strings.TrimSpace(textContent(n)) == "" {
		return domain.SectionItem{}, false
	}
	return domain.SectionItem{Kind: domain.ItemParagraph, HTML: render(n)}, true
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func attrVal(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func render(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
