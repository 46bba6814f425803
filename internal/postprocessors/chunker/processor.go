// Package chunker packs aligned unit pairs into token-bounded chunks.
package chunker

import (
	"strings"

	"github.com/calliope-labs/calliope/internal/core/domain"
	"github.com/calliope-labs/calliope/internal/core/ports/driven"
)

// DefaultMaxTokens is the default token budget per chunk.
const DefaultMaxTokens = 1024

// Processor greedily bins units into chunks by the token count of
// their retrieval text. It never splits inside a unit: a unit larger
// than the budget becomes a chunk of its own.
type Processor struct {
	tokenizer driven.Tokenizer
	maxTokens int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxTokens sets the token budget per chunk. A non-positive value
// means unlimited, which is how the preamble is processed so it never
// splits across chunks.
func WithMaxTokens(maxTokens int) Option {
	return func(p *Processor) {
		p.maxTokens = maxTokens
	}
}

// New creates a chunker with the given options.
func New(tokenizer driven.Tokenizer, opts ...Option) *Processor {
	p := &Processor{
		tokenizer: tokenizer,
		maxTokens: DefaultMaxTokens,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process packs the unit sequence into chunks. Both texts of a chunk
// cover the same ordered run of units, joined by blank lines; token
// counts are measured on the retrieval side only.
func (p *Processor) Process(units []domain.Unit) []domain.ProcessedChunk {
	var chunks []domain.ProcessedChunk
	var retrieval, generation []string
	tokens := 0

	flush := func() {
		if len(retrieval) == 0 && len(generation) == 0 {
			return
		}
		chunks = append(chunks, domain.ProcessedChunk{
			RetrievalText:  strings.Join(retrieval, "\n\n"),
			GenerationText: strings.Join(generation, "\n\n"),
			TokenCount:     tokens,
		})
		retrieval, generation = nil, nil
		tokens = 0
	}

	for _, unit := range units {
		n := p.tokenizer.CountTokens(unit.RetrievalText)

		if p.maxTokens > 0 && tokens+n > p.maxTokens {
			flush()
		}

		if unit.RetrievalText != "" {
			retrieval = append(retrieval, unit.RetrievalText)
		}
		if unit.GenerationText != "" {
			generation = append(generation, unit.GenerationText)
		}
		tokens += n

		// Oversized-unit escape valve: it stands alone rather than
		// being split.
		if p.maxTokens > 0 && n > p.maxTokens {
			flush()
		}
	}

	flush()
	return chunks
}
