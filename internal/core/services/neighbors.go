package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/calliope-labs/calliope/internal/core/domain"
	"github.com/calliope-labs/calliope/internal/logger"
)

// Neighbors returns the chunks adjacent to the given chunk within its
// section. Edge chunks borrow an extra neighbour from their open side
// so every result carries comparable context.
func (s *SearchService) Neighbors(ctx context.Context, chunkID string) ([]domain.Chunk, error) {
	sectionID, index, err := domain.ParseChunkID(chunkID)
	if err != nil {
		return nil, err
	}

	total, err := s.store.SectionChunkCount(ctx, sectionID)
	if err != nil {
		return nil, fmt.Errorf("count section chunks: %w", err)
	}

	indices := neighborIndices(index, total)
	logger.Debug("Neighbors of %s: indices %v of %d", chunkID, indices, total)
	if len(indices) == 0 {
		return []domain.Chunk{}, nil
	}

	ids := make([]string, len(indices))
	for i, idx := range indices {
		ids[i] = fmt.Sprintf("%s/chunk-%d", sectionID, idx)
	}

	records, err := s.store.GetChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch neighbor chunks: %w", err)
	}

	chunks := make([]domain.Chunk, len(records))
	for i, r := range records {
		chunks[i] = r.Chunk
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// neighborIndices applies the adjacency rules for a chunk at index
// within a section of total chunks.
func neighborIndices(index, total int) []int {
	if total <= 1 {
		return nil
	}

	switch {
	case index == 0:
		if total > 2 {
			return []int{1, 2}
		}
		return []int{1}

	case index == total-1:
		if index >= 2 {
			return []int{index - 2, index - 1}
		}
		return []int{index - 1}

	default:
		return []int{index - 1, index + 1}
	}
}
