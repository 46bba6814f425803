// Package table converts HTML tables into Markdown and a plain-text
// fallback. The Markdown form is deterministic and keeps cell text
// only; nested markup inside cells is not preserved.
package table

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/calliope-labs/calliope/internal/normalisers"
)

// ToMarkdown renders the first table in the fragment as a Markdown
// table. The header row comes from thead or, absent that, from the
// first tbody row when it consists entirely of header cells. Returns
// "" when the fragment holds no table or no rows.
func ToMarkdown(fragment string) string {
	tbl := findTable(fragment)
	if tbl == nil {
		return ""
	}

	header, rows := extractRows(tbl)
	if header == nil && len(rows) == 0 {
		return ""
	}

	width := len(header)
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	if width == 0 {
		return ""
	}
	if header == nil {
		header = make([]string, width)
	}

	var sb strings.Builder
	writeRow(&sb, pad(header, width))
	sep := make([]string, width)
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&sb, sep)
	for _, r := range rows {
		writeRow(&sb, pad(r, width))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Fallback renders the table as plain text for the retrieval format:
// the Markdown form stripped of pipe and backtick characters. Used
// when the external summarisation call fails or returns nothing.
func Fallback(fragment string) string {
	md := ToMarkdown(fragment)
	md = strings.Map(func(r rune) rune {
		if r == '|' || r == '`' {
			return -1
		}
		return r
	}, md)

	var lines []string
	for _, line := range strings.Split(md, "\n") {
		line = normalisers.CollapseWhitespace(line)
		if line == "" || strings.Trim(line, "- ") == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func findTable(fragment string) *html.Node {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type: html.ElementNode, Data: "body", DataAtom: atom.Body,
	})
	if err != nil {
		return nil
	}
	var find func(n *html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "table" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if t := find(c); t != nil {
				return t
			}
		}
		return nil
	}
	for _, n := range nodes {
		if t := find(n); t != nil {
			return t
		}
	}
	return nil
}

// extractRows walks thead/tbody/tfoot and loose tr children. The
// returned header is nil when no header row could be determined.
func extractRows(tbl *html.Node) (header []string, rows [][]string) {
	var bodyRows []*html.Node

	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead":
				for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
					if tr.Type == html.ElementNode && tr.Data == "tr" && header == nil {
						header = cells(tr)
					}
				}
			case "tbody", "tfoot":
				collect(c)
			case "tr":
				bodyRows = append(bodyRows, c)
			}
		}
	}
	collect(tbl)

	// Without a thead, an all-header first row serves as the header.
	if header == nil && len(bodyRows) > 0 && allHeaderCells(bodyRows[0]) {
		header = cells(bodyRows[0])
		bodyRows = bodyRows[1:]
	}

	for _, tr := range bodyRows {
		rows = append(rows, cells(tr))
	}
	return header, rows
}

func cells(tr *html.Node) []string {
	var out []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			text := normalisers.CollapseWhitespace(cellText(c))
			out = append(out, strings.ReplaceAll(text, "|", `\|`))
		}
	}
	return out
}

func allHeaderCells(tr *html.Node) bool {
	any := false
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "th":
			any = true
		case "td":
			return false
		}
	}
	return any
}

func cellText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(cellText(c))
	}
	return sb.String()
}

func pad(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}

func writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("| ")
	sb.WriteString(strings.Join(cells, " | "))
	sb.WriteString(" |\n")
}
