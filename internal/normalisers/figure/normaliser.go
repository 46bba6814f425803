// Package figure canonicalises figure markup. Articles reference
// figures in several shapes (class-marked divs, real figure elements,
// nested wrappers); folding rewrites every one of them into
// <figure data-figid="..."><figcaption>...</figcaption></figure> so
// later stages can treat all figures uniformly. Captions prefer the
// extended description fetched from the article's companion page over
// the short caption over image alt text.
package figure

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/calliope-labs/calliope/internal/normalisers"
)

// Placeholder is the caption used when no description resolves.
const Placeholder = "Figure"

// extendedLinkText marks the "extended description" link inside figure
// label paragraphs; it is navigation, not caption content.
const extendedLinkText = "extended description"

// IDs returns the id attributes of all figure elements in the
// fragment, nested ones included, in document order.
func IDs(fragment string) []string {
	root, err := parse(fragment)
	if err != nil {
		return nil
	}
	var ids []string
	walkAll(root, func(n *html.Node) bool {
		if isFigure(n) {
			if id, ok := attr(n, "id"); ok && id != "" {
				ids = append(ids, id)
			}
		}
		return true
	})
	return ids
}

// Descriptions extracts the best-matching content block for each
// requested id present in the description page.
func Descriptions(page string, ids []string) map[string]string {
	root, err := parse(page)
	if err != nil {
		return nil
	}

	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	out := make(map[string]string)
	walkAll(root, func(n *html.Node) bool {
		id, ok := attr(n, "id")
		if !ok || !known[id] {
			return true
		}
		if _, seen := out[id]; seen {
			return true
		}
		out[id] = descriptionBlock(n, known)
		return true
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

// descriptionBlock picks the content for an id-bearing node: container
// elements yield their inner HTML verbatim, headings yield all
// following siblings up to the next heading or known figure id,
// anything else yields its parent's inner HTML.
func descriptionBlock(n *html.Node, known map[string]bool) string {
	switch {
	case isContainer(n):
		return innerHTML(n)
	case isHeading(n):
		var sb strings.Builder
		for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
			if sib.Type == html.ElementNode {
				if isHeading(sib) {
					break
				}
				if id, ok := attr(sib, "id"); ok && known[id] {
					break
				}
			}
			renderNode(&sb, sib)
		}
		return sb.String()
	case n.Parent != nil && n.Parent.Type == html.ElementNode:
		return innerHTML(n.Parent)
	default:
		return innerHTML(n)
	}
}

// Fold rewrites every outermost figure element in the fragment into
// the canonical shape. extended maps figure ids to the description
// blocks from phase one and may be nil.
func Fold(fragment string, extended map[string]string) string {
	root, err := parse(fragment)
	if err != nil {
		return fragment
	}

	var fold func(n *html.Node)
	fold = func(n *html.Node) {
		c := n.FirstChild
		for c != nil {
			next := c.NextSibling
			if isFigure(c) {
				n.InsertBefore(canonical(c, extended), c)
				n.RemoveChild(c)
			} else {
				fold(c)
			}
			c = next
		}
	}
	for _, n := range root {
		if isFigure(n) {
			// Top-level figure nodes are replaced during render.
			continue
		}
		fold(n)
	}

	var sb strings.Builder
	for _, n := range root {
		if isFigure(n) {
			renderNode(&sb, canonical(n, extended))
			continue
		}
		renderNode(&sb, n)
	}
	return sb.String()
}

// canonical builds <figure data-figid><figcaption>text</figcaption></figure>
// for a source figure element.
func canonical(fig *html.Node, extended map[string]string) *html.Node {
	id, _ := attr(fig, "id")
	caption := resolveCaption(fig, id, extended)

	figure := &html.Node{
		Type: html.ElementNode, Data: "figure", DataAtom: atom.Figure,
		Attr: []html.Attribute{{Key: "data-figid", Val: id}},
	}
	figcaption := &html.Node{
		Type: html.ElementNode, Data: "figcaption", DataAtom: atom.Figcaption,
	}
	figcaption.AppendChild(&html.Node{Type: html.TextNode, Data: caption})
	figure.AppendChild(figcaption)
	return figure
}

// resolveCaption applies the description priority: extended
// description, then short caption, then joined image alt text, then
// the generic placeholder.
func resolveCaption(fig *html.Node, id string, extended map[string]string) string {
	if desc, ok := extended[id]; ok {
		if text := normalisers.FlattenHTML(desc); text != "" {
			return text
		}
	}
	if caption := shortCaption(fig); caption != "" {
		return caption
	}
	if alts := altTexts(fig); len(alts) > 0 {
		return strings.Join(alts, "; ")
	}
	return Placeholder
}

// shortCaption looks for a figcaption, a figure-label paragraph (with
// the extended-description link stripped), or a centered caption
// paragraph.
func shortCaption(fig *html.Node) string {
	var figcaption, labelPara, centeredPara *html.Node
	walk(fig, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch {
		case n.Data == "figcaption" && figcaption == nil:
			figcaption = n
		case n.Data == "p":
			if class, _ := attr(n, "class"); strings.Contains(class, "label") && labelPara == nil {
				labelPara = n
			} else if isCentered(n) && centeredPara == nil {
				centeredPara = n
			}
		}
		return true
	})

	if figcaption != nil {
		if text := nodeText(figcaption); text != "" {
			return text
		}
	}
	if labelPara != nil {
		if text := nodeText(withoutExtendedLink(labelPara)); text != "" {
			return text
		}
	}
	if centeredPara != nil {
		if text := nodeText(centeredPara); text != "" {
			return text
		}
	}
	return ""
}

// withoutExtendedLink returns a copy of the paragraph with any
// "extended description" anchors removed.
func withoutExtendedLink(p *html.Node) *html.Node {
	clone := cloneTree(p)
	var anchors []*html.Node
	walk(clone, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "a" &&
			strings.Contains(strings.ToLower(nodeText(n)), extendedLinkText) {
			anchors = append(anchors, n)
			return false
		}
		return true
	})
	for _, a := range anchors {
		a.Parent.RemoveChild(a)
	}
	return clone
}

func altTexts(fig *html.Node) []string {
	var alts []string
	walk(fig, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "img" {
			if alt, ok := attr(n, "alt"); ok {
				if alt = strings.TrimSpace(alt); alt != "" {
					alts = append(alts, alt)
				}
			}
		}
		return true
	})
	return alts
}

// --- node helpers ---

func parse(fragment string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type: html.ElementNode, Data: "body", DataAtom: atom.Body,
	})
}

// walk visits a node's subtree depth-first. Returning false from fn
// skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func walkAll(nodes []*html.Node, fn func(*html.Node) bool) {
	for _, n := range nodes {
		walk(n, fn)
	}
}

func isFigure(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.Data == "figure" {
		return true
	}
	class, _ := attr(n, "class")
	return strings.Contains(class, "figure")
}

func isContainer(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "div", "section", "figure", "article", "aside":
		return true
	}
	return false
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

func isCentered(n *html.Node) bool {
	if class, _ := attr(n, "class"); strings.Contains(class, "center") {
		return true
	}
	style, _ := attr(n, "style")
	return strings.Contains(strings.ReplaceAll(style, " ", ""), "text-align:center")
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func innerHTML(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(&sb, c)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, n *html.Node) {
	_ = html.Render(sb, n)
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(node *html.Node) bool {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		return true
	})
	return normalisers.CollapseWhitespace(sb.String())
}

func cloneTree(n *html.Node) *html.Node {
	clone := &html.Node{
		Type: n.Type, Data: n.Data, DataAtom: n.DataAtom, Namespace: n.Namespace,
		Attr: append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneTree(c))
	}
	return clone
}

// SortedIDs is a helper for deterministic iteration in logs and tests.
func SortedIDs(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
