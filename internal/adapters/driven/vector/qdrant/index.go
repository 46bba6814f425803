// Package qdrant implements the VectorIndex port against a Qdrant
// server over gRPC.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/calliope-labs/calliope/internal/core/domain"
	"github.com/calliope-labs/calliope/internal/core/ports/driven"
	"github.com/calliope-labs/calliope/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Payload keys stored with every point.
const (
	payloadChunkID   = "chunkId"
	payloadArticleID = "articleId"
)

// pointNamespace makes point UUIDs deterministic per chunk id, so
// re-upserting a chunk replaces its previous vector.
var pointNamespace = uuid.MustParse("8c9d7a52-3f41-4b7e-9a06-5d2c61b0a914")

// Index is a Qdrant-backed vector index. Chunk ids are carried in the
// point payload because Qdrant point ids must be UUIDs.
type Index struct {
	conn       *grpc.ClientConn
	points     qdrant.PointsClient
	collection string
}

// NewIndex connects to Qdrant and ensures the collection exists with
// the given vector size and cosine distance.
func NewIndex(addr, collection string, dimensions int) (*Index, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	idx := &Index{
		conn:       conn,
		points:     qdrant.NewPointsClient(conn),
		collection: collection,
	}

	if err := idx.ensureCollection(qdrant.NewCollectionsClient(conn), dimensions); err != nil {
		conn.Close()
		return nil, err
	}
	return idx, nil
}

func (i *Index) ensureCollection(collections qdrant.CollectionsClient, dimensions int) error {
	ctx := context.Background()

	resp, err := collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("listing collections: %w", err)
	}
	for _, c := range resp.GetCollections() {
		if c.GetName() == i.collection {
			return nil
		}
	}

	_, err = collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: i.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dimensions),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", i.collection, err)
	}
	logger.Info("Created qdrant collection %q (%d dimensions)", i.collection, dimensions)
	return nil
}

// Upsert inserts or replaces vectors for the given chunk IDs.
func (i *Index) Upsert(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", domain.ErrInvalidInput, len(ids), len(vectors))
	}
	if len(ids) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(ids))
	for n, chunkID := range ids {
		articleID := chunkID
		if sectionID, _, err := domain.ParseChunkID(chunkID); err == nil {
			articleID = articleIDOf(sectionID)
		}
		points[n] = &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{
					Uuid: uuid.NewSHA1(pointNamespace, []byte(chunkID)).String(),
				},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{
					Vector: &qdrant.Vector{Data: vectors[n]},
				},
			},
			Payload: map[string]*qdrant.Value{
				payloadChunkID:   {Kind: &qdrant.Value_StringValue{StringValue: chunkID}},
				payloadArticleID: {Kind: &qdrant.Value_StringValue{StringValue: articleID}},
			},
		}
	}

	wait := true
	_, err := i.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: i.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}
	return nil
}

// DeleteByArticle removes all vectors belonging to an article via a
// payload filter.
func (i *Index) DeleteByArticle(ctx context.Context, articleID string) error {
	wait := true
	_, err := i.points.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: i.collection,
		Wait:           &wait,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{{
						ConditionOneOf: &qdrant.Condition_Field{
							Field: &qdrant.FieldCondition{
								Key: payloadArticleID,
								Match: &qdrant.Match{
									MatchValue: &qdrant.Match_Keyword{Keyword: articleID},
								},
							},
						},
					}},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting vectors for article %q: %w", articleID, err)
	}
	return nil
}

// Search finds the k nearest neighbours to the query vector.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	resp, err := i.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: i.collection,
		Vector:         query,
		Limit:          uint64(k),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		chunkID := point.GetPayload()[payloadChunkID].GetStringValue()
		if chunkID == "" {
			logger.Warn("Qdrant point without chunk id payload, skipping")
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    chunkID,
			Similarity: float64(point.GetScore()),
		})
	}
	return hits, nil
}

// Close releases the gRPC connection.
func (i *Index) Close() error {
	return i.conn.Close()
}

// articleIDOf extracts the article id from a section id.
func articleIDOf(sectionID string) string {
	for n := 0; n < len(sectionID); n++ {
		if sectionID[n] == '/' {
			return sectionID[:n]
		}
	}
	return sectionID
}
