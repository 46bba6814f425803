package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is one section item rendered into its two textual formats.
// Either side may be empty; a unit empty on both sides is dropped
// before chunking.
type Unit struct {
	// RetrievalText is the normalized, diacritic-free form.
	RetrievalText string

	// GenerationText preserves markers, markdown and math symbols.
	GenerationText string
}

// ProcessedChunk is an aligned pair of chunk texts produced by the
// semantic chunker. RetrievalText and GenerationText originate from
// the same ordered subsequence of section items: content alignment,
// not textual equality, is guaranteed.
type ProcessedChunk struct {
	// RetrievalText is fully normalized: diacritic-free, TeX resolved
	// to language or symbols, lists and tables as plain description.
	RetrievalText string

	// GenerationText preserves list markers and markdown tables and
	// keeps TeX as symbols, for LLM context and display.
	GenerationText string

	// TokenCount is measured on RetrievalText only.
	TokenCount int
}

// Chunk is the persisted form of a processed chunk.
type Chunk struct {
	// ID is "{articleID}/{sectionNumber}/chunk-{index}".
	ID string

	// SectionID is "{articleID}/{sectionNumber}".
	SectionID string

	// Index is the zero-based position within the section, in document order.
	Index int

	// Text is the retrieval-format chunk text.
	Text string

	// NumTokens is the token count of Text.
	NumTokens int
}

// ChunkRecord is a chunk joined with its section and article metadata,
// as fetched for search results.
type ChunkRecord struct {
	Chunk
	SectionNumber  string
	SectionHeading string
	ArticleID      string
	ArticleTitle   string
}

// SectionID builds "{articleID}/{number}".
func SectionID(articleID, number string) string {
	return articleID + "/" + number
}

// ChunkID builds "{articleID}/{number}/chunk-{index}".
func ChunkID(articleID, number string, index int) string {
	return fmt.Sprintf("%s/%s/chunk-%d", articleID, number, index)
}

// ParseChunkID splits a chunk id into its section id and chunk index.
func ParseChunkID(id string) (sectionID string, index int, err error) {
	i := strings.LastIndex(id, "/chunk-")
	if i <= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidChunkID, id)
	}
	index, err = strconv.Atoi(id[i+len("/chunk-"):])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidChunkID, id)
	}
	return id[:i], index, nil
}

// GenerationBlobKey is the deterministic blob store key for a chunk's
// generation-format text.
func GenerationBlobKey(chunkID string) string {
	return "chunks/" + chunkID + ".txt"
}
