// Package search runs KNN retrieval over the chunk vector index.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Hash field names, mirroring the write side in the document repository.
const (
	fieldContent    = "__content"
	fieldDocID      = "doc_id"
	fieldChunkIndex = "chunk_index"
	fieldStart      = "start"
	fieldEnd        = "end"
	fieldMetadata   = "metadata"
)

// store is the consumer interface for chunk retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo retrieves the nearest chunks for a query vector.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a search repository. keyPrefix must match the one the
// document repository writes under.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Search returns up to k chunks ordered by ascending cosine distance to
// the query vector. Vectors are not returned; only content and metadata
// are fetched back.
func (r *Repo) Search(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	result, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.keyPrefix + "chunk:idx",
		Vector:    vector,
		K:         k,
		ReturnFields: []string{
			fieldContent, fieldDocID, fieldChunkIndex, fieldStart, fieldEnd, fieldMetadata,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchFailed, err)
	}
	if result == nil || len(result.Entries) == 0 {
		return nil, nil
	}

	chunks := make([]domain.RetrievedChunk, 0, len(result.Entries))
	for _, entry := range result.Entries {
		chunks = append(chunks, domain.RetrievedChunk{
			Chunk:    parseEntry(entry.Fields),
			Distance: entry.Score,
		})
	}
	return chunks, nil
}

func parseEntry(m map[string]string) domain.Chunk {
	c := domain.Chunk{
		DocumentID: m[fieldDocID],
		Content:    m[fieldContent],
		Metadata:   map[string]string{},
	}
	c.Index, _ = strconv.Atoi(m[fieldChunkIndex])
	c.Start, _ = strconv.Atoi(m[fieldStart])
	c.End, _ = strconv.Atoi(m[fieldEnd])
	if raw := m[fieldMetadata]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &c.Metadata)
	}
	return c
}
