package query

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// Searcher retrieves the nearest chunks for a query vector.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error)
}

// Embedder vectorizes text into embeddings (query mode).
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces answer text from an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LogRepository persists query log entries.
type LogRepository interface {
	Create(ctx context.Context, log *domain.QueryLog) error
	List(ctx context.Context, offset, limit int) ([]domain.QueryLog, int, error)
}
