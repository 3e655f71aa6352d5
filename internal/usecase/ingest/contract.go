package ingest

import (
	"context"
	"io"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/parser"
)

// Repository defines the storage contract for documents and their chunks.
type Repository interface {
	Create(ctx context.Context, doc *domain.SourceDocument, chunks []domain.Chunk) error
	Get(ctx context.Context, id string) (domain.SourceDocument, error)
	List(ctx context.Context, offset, limit int) ([]domain.SourceDocument, int, error)
	Chunks(ctx context.Context, doc *domain.SourceDocument) ([]domain.Chunk, error)
	ReplaceChunks(ctx context.Context, doc *domain.SourceDocument, oldCount int, chunks []domain.Chunk) error
	Delete(ctx context.Context, id string) error
}

// FileParser extracts text and container metadata from stored files.
type FileParser interface {
	Supports(fileType string) bool
	Parse(path, fileType string) (parser.Parsed, error)
}

// FileStore persists uploaded file bytes.
type FileStore interface {
	Save(originalName string, r io.Reader) (path string, size int64, err error)
	Remove(path string) error
}

// Embedder vectorizes text into embeddings (document mode).
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
