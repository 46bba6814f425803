// Package cohere implements the Reranker port with Cohere's
// cross-encoder rerank API.
package cohere

import (
	"context"
	"errors"
	"fmt"

	cohereapi "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/calliope-labs/calliope/internal/core/domain"
	"github.com/calliope-labs/calliope/internal/core/ports/driven"
	"github.com/calliope-labs/calliope/internal/logger"
)

// DefaultModel is the rerank model used when none is configured.
const DefaultModel = "rerank-v3.5"

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Reranker scores (query, document) pairs with Cohere's rerank
// endpoint.
type Reranker struct {
	client *cohereclient.Client
	model  string
}

// NewReranker creates a reranker. An empty model selects DefaultModel.
func NewReranker(apiKey, model string) (*Reranker, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing cohere api key", domain.ErrInvalidInput)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Reranker{
		client: cohereclient.NewClient(cohereclient.WithToken(apiKey)),
		model:  model,
	}, nil
}

// Rerank scores documents against the query and returns their indices
// in descending relevance order, truncated to topN.
func (r *Reranker) Rerank(ctx context.Context, query string, documents []string, topN int) ([]driven.RankedIndex, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	if topN <= 0 || topN > len(documents) {
		topN = len(documents)
	}

	resp, err := r.client.V2.Rerank(ctx, &cohereapi.V2RerankRequest{
		Model:     r.model,
		Query:     query,
		Documents: documents,
		TopN:      &topN,
	})
	if err != nil {
		return nil, fmt.Errorf("cohere rerank: %w", err)
	}
	if resp == nil {
		return nil, errors.New("cohere rerank returned empty response")
	}

	ranked := make([]driven.RankedIndex, 0, len(resp.Results))
	for _, result := range resp.Results {
		ranked = append(ranked, driven.RankedIndex{
			Index: result.Index,
			Score: result.RelevanceScore,
		})
	}
	logger.Debug("Reranked %d documents to %d results", len(documents), len(ranked))
	return ranked, nil
}

// Close releases resources.
func (r *Reranker) Close() error {
	return nil
}
