package normalisers

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Pre-compiled regular expressions for HTML flattening.
var (
	closeBlockTags = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article|figcaption)>`)
	brTags         = regexp.MustCompile(`(?i)<br\s*/?>`)
	allTags        = regexp.MustCompile(`<[^>]+>`)
	multiSpaces    = regexp.MustCompile(`[ \t]+`)
	multiNewlines  = regexp.MustCompile(`\n{3,}`)
)

// FlattenHTML strips markup from an HTML fragment and returns readable
// text. Closing block-level tags become paragraph breaks, entities are
// decoded, and incidental whitespace is collapsed. Inline markup is
// dropped without inserting breaks.
func FlattenHTML(fragment string) string {
	text := closeBlockTags.ReplaceAllString(fragment, "\n\n")
	text = brTags.ReplaceAllString(text, "\n")
	text = allTags.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = multiSpaces.ReplaceAllString(text, " ")

	// Trim each line, then collapse runs of blank lines.
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = multiNewlines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// diacriticsRemover decomposes to NFD, drops combining marks, and
// recomposes to NFC.
var diacriticsRemover = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// StripDiacritics removes combining diacritical marks: "Kähler" becomes
// "Kahler". Input that fails to transform is returned unchanged.
func StripDiacritics(s string) string {
	out, _, err := transform.String(diacriticsRemover, s)
	if err != nil {
		return s
	}
	return out
}

// CollapseWhitespace reduces all whitespace runs to single spaces and
// trims the result. Used for single-line contexts such as table cells.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
