package driven

import "context"

// Converter performs the LLM-backed text conversions that the
// deterministic normalisers cannot: prose rendering of residual math
// and natural-language table summaries. This is an optional service -
// when nil, fallback text is used instead.
type Converter interface {
	// ConvertMath rewrites each text so its mathematical notation
	// reads as prose. The article title and section heading are
	// contextual hints for the prompt. Results are parallel to the
	// input.
	ConvertMath(ctx context.Context, texts []string, articleTitle, sectionHeading string) ([]string, error)

	// SummarizeTables produces a short natural-language summary for
	// each markdown table. Results are parallel to the input.
	SummarizeTables(ctx context.Context, tables []string, articleTitle, sectionHeading string) ([]string, error)

	// Close releases resources.
	Close() error
}
