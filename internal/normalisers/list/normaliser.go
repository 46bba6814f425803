// Package list converts HTML lists, possibly nested, into plain text
// blocks. Nested lists are represented as an explicit recursive block
// tree and rendered innermost-first, so a parent item's lines always
// include its children's already-converted text.
package list

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/calliope-labs/calliope/internal/normalisers"
)

// Indent is the per-level indentation for nested list lines.
const Indent = "  "

// block is a converted list: its items plus the marker scheme the
// list declared.
type block struct {
	ordered  bool
	typ      byte // '1', 'a', 'A', 'i', 'I'
	start    int
	reversed bool
	items    []item
}

// item is one list entry: its own text plus any nested list blocks.
type item struct {
	text   string
	blocks []*block
}

// Convert renders every list in the fragment as plain text. With
// keepMarkers each item is prefixed with its computed marker; without,
// items are bare text and marker-like prefixes are stripped from
// nested lines as well. Non-list content between lists is flattened.
func Convert(fragment string, keepMarkers bool) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), bodyContext())
	if err != nil {
		return normalisers.FlattenHTML(fragment)
	}

	var parts []string
	for _, n := range nodes {
		collectParts(n, keepMarkers, &parts)
	}

	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimRight(p, "\n"); strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

// bodyContext returns a body element for fragment parsing.
func bodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

// collectParts walks a node, rendering outermost lists and flattening
// interstitial content.
func collectParts(n *html.Node, keepMarkers bool, parts *[]string) {
	if isList(n) {
		b := parseList(n)
		*parts = append(*parts, strings.Join(render(b, keepMarkers), "\n"))
		return
	}
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	if n.Type != html.ElementNode && n.Type != html.DocumentNode {
		return
	}
	if n.Type == html.ElementNode && !containsList(n) {
		if t := normalisers.FlattenHTML(renderHTML(n)); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectParts(c, keepMarkers, parts)
	}
}

func isList(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol")
}

func containsList(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isList(c) || containsList(c) {
			return true
		}
	}
	return false
}

func renderHTML(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// parseList builds the recursive block for a ul/ol element.
func parseList(n *html.Node) *block {
	b := &block{ordered: n.Data == "ol", typ: '1', start: 1}
	if b.ordered {
		if v, ok := attr(n, "type"); ok && len(v) == 1 {
			switch v[0] {
			case '1', 'a', 'A', 'i', 'I':
				b.typ = v[0]
			}
		}
		if v, ok := attr(n, "start"); ok {
			if s := parseInt(v); s != 0 {
				b.start = s
			}
		}
		_, b.reversed = attr(n, "reversed")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			b.items = append(b.items, parseItem(c))
		}
	}
	return b
}

func parseInt(s string) int {
	neg := false
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	v := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		v = v*10 + int(r-'0')
	}
	if neg {
		v = -v
	}
	return v
}

// parseItem extracts a list item's own text and its nested lists. A
// descendant list is captured as a child block and not descended into
// for text.
func parseItem(li *html.Node) item {
	var it item
	var text strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if isList(n) {
			it.blocks = append(it.blocks, parseList(n))
			return
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}

	it.text = normalisers.CollapseWhitespace(text.String())
	return it
}

// markerLike matches leading bullet or enumeration prefixes left over
// in item text.
var markerLike = regexp.MustCompile(`^\s*(?:[-•*]|\(?\d+[.)]|\(?[A-Za-z][.)]|[ivxlcdm]+[.)]|[IVXLCDM]+[.)])\s+`)

func stripMarker(line string) string {
	return markerLike.ReplaceAllString(line, "")
}

// render produces the lines for a block. Items are numbered from the
// block's start value, counting down when the list is reversed.
func render(b *block, keepMarkers bool) []string {
	var lines []string
	value := b.start
	for _, it := range b.items {
		lines = append(lines, renderItem(b, it, value, keepMarkers)...)
		if b.reversed {
			value--
		} else {
			value++
		}
	}
	return lines
}

func renderItem(b *block, it item, value int, keepMarkers bool) []string {
	var lines []string
	text := it.text
	if !keepMarkers {
		text = stripMarker(text)
	}

	if text != "" {
		if keepMarkers {
			if b.ordered {
				text = Marker(b.typ, value) + ". " + text
			} else {
				text = "- " + text
			}
		}
		lines = append(lines, text)
	}

	for _, child := range render2(it.blocks, keepMarkers) {
		if text != "" {
			child = Indent + child
		}
		lines = append(lines, child)
	}
	return lines
}

// render2 renders a sequence of nested blocks into one line stream.
func render2(blocks []*block, keepMarkers bool) []string {
	var lines []string
	for _, b := range blocks {
		lines = append(lines, render(b, keepMarkers)...)
	}
	return lines
}

// Marker converts an ordinal to its list marker for the given type
// attribute. Roman numerals outside 1..3999 and letters below 1 fall
// back to decimal.
func Marker(typ byte, value int) string {
	switch typ {
	case 'a':
		if s := toAlpha(value); s != "" {
			return s
		}
	case 'A':
		if s := toAlpha(value); s != "" {
			return strings.ToUpper(s)
		}
	case 'i':
		if s := toRoman(value); s != "" {
			return strings.ToLower(s)
		}
	case 'I':
		if s := toRoman(value); s != "" {
			return s
		}
	}
	return itoa(value)
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// toAlpha converts 1-based ordinals to bijective base-26 letters:
// 1=a .. 26=z, 27=aa. Returns "" for values below 1.
func toAlpha(v int) string {
	if v < 1 {
		return ""
	}
	var out []byte
	for v > 0 {
		v--
		out = append([]byte{byte('a' + v%26)}, out...)
		v /= 26
	}
	return string(out)
}

var romanValues = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// toRoman converts values in 1..3999 to uppercase Roman numerals.
// Returns "" outside that domain.
func toRoman(v int) string {
	if v < 1 || v > 3999 {
		return ""
	}
	var sb strings.Builder
	for _, rv := range romanValues {
		for v >= rv.value {
			sb.WriteString(rv.symbol)
			v -= rv.value
		}
	}
	return sb.String()
}
