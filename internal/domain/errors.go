package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing source document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrUnsupportedFormat signals a file type no parser is registered for.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrParseFailed signals a corrupt or unreadable document.
	ErrParseFailed = errors.New("document parse failed")
	// ErrInvalidChunking signals chunker parameters that cannot make progress.
	ErrInvalidChunking = errors.New("invalid chunking configuration")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrGenerationProvider signals a text generation provider failure.
	ErrGenerationProvider = errors.New("generation provider error")
	// ErrSearchFailed signals a vector index query failure.
	ErrSearchFailed = errors.New("vector search failed")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)
