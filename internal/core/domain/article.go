package domain

import "time"

// Article is the canonical representation of a fetched encyclopedia
// article. Articles are immutable once fetched; re-ingestion replaces
// the stored article wholesale.
type Article struct {
	// ID is the opaque article slug, e.g. "group-theory".
	ID string

	// Title is the display title with diacritics stripped.
	Title string

	// OriginalTitle is the title exactly as published.
	OriginalTitle string

	// Authors lists the article's credited authors.
	Authors []string

	// Preamble is the raw HTML of the untitled lead section.
	Preamble string

	// Sections are the article body sections in document order.
	Sections []ArticleSection

	// Related holds ids of related articles.
	Related []string

	// CreatedAt is the article's original publication date.
	CreatedAt time.Time

	// UpdatedAt is the article's last revision date.
	UpdatedAt time.Time
}

// PreambleSectionNumber is the reserved section number for the preamble.
const PreambleSectionNumber = "0"

// ArticleSection is one heading-delimited slice of an article.
type ArticleSection struct {
	// Number is the dotted section number, e.g. "3.3". "0" is reserved
	// for the preamble. Ordering is by document order, not numeric sort.
	Number string

	// Heading is the section heading text.
	Heading string

	// Content is the raw section HTML, headings excluded.
	Content string
}

// ItemKind classifies a block-level section item.
type ItemKind string

// Section item kinds.
const (
	ItemParagraph  ItemKind = "paragraph"
	ItemList       ItemKind = "list"
	ItemTable      ItemKind = "table"
	ItemPre        ItemKind = "pre"
	ItemBlockquote ItemKind = "blockquote"
	ItemFigure     ItemKind = "figure"
	ItemOther      ItemKind = "other"
)

// SectionItem is one block-level semantic unit of a section. The item
// sequence is order-preserving and is the unit of chunk-boundary
// alignment between the retrieval and generation formats.
type SectionItem struct {
	// Kind classifies the item.
	Kind ItemKind

	// HTML is the raw markup of the item.
	HTML string
}
