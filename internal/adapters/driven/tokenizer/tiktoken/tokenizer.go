// Package tiktoken implements the Tokenizer port with the tokenizer
// family used by the OpenAI embedding models, so chunk budgets line up
// with what the embedding calls will see.
package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/calliope-labs/calliope/internal/core/ports/driven"
)

// DefaultEncoding matches the text-embedding-3-* model family.
const DefaultEncoding = "cl100k_base"

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// Tokenizer counts tokens with a fixed tiktoken encoding.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenizer creates a tokenizer for the given encoding name. An
// empty name selects DefaultEncoding.
func NewTokenizer(encodingName string) (*Tokenizer, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("loading encoding %q: %w", encodingName, err)
	}
	return &Tokenizer{encoding: encoding}, nil
}

// NewTokenizerForModel creates a tokenizer matching a model name.
func NewTokenizerForModel(model string) (*Tokenizer, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("loading encoding for model %q: %w", model, err)
	}
	return &Tokenizer{encoding: encoding}, nil
}

// CountTokens returns the number of tokens in the text.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}
