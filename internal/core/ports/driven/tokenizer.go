package driven

// Tokenizer counts tokens the way the embedding model does, so chunk
// budgets line up with what the provider will actually see.
type Tokenizer interface {
	// CountTokens returns the number of tokens in the text.
	CountTokens(text string) int
}
