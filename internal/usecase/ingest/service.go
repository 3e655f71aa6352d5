// Package ingest handles the document lifecycle: upload, chunking,
// vectorization, reindexing and deletion.
package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/chunk"
	"github.com/kailas-cloud/ragdex/internal/domain/textnorm"
	"github.com/kailas-cloud/ragdex/internal/metrics"
	"github.com/kailas-cloud/ragdex/internal/parser"
)

// UploadRequest carries one document upload.
type UploadRequest struct {
	FileName   string
	File       io.Reader
	Title      string
	Author     string
	UploadedBy string
	Metadata   map[string]string
}

// Service handles document ingestion with automatic chunking and vectorization.
type Service struct {
	repo     Repository
	parser   FileParser
	files    FileStore
	embedder Embedder
	logger   *zap.Logger

	chunkSize    int
	chunkOverlap int
	workers      int

	mu    sync.Mutex
	locks map[string]*docLock
}

// docLock is a reference-counted per-document mutex; the map entry is dropped
// once the last holder releases it.
type docLock struct {
	mu   sync.Mutex
	refs int
}

// New creates an ingest service. embedder must be the document-mode instance.
func New(
	repo Repository,
	p FileParser,
	files FileStore,
	embedder Embedder,
	logger *zap.Logger,
	chunkSize, chunkOverlap, workers int,
) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		repo:         repo,
		parser:       p,
		files:        files,
		embedder:     embedder,
		logger:       logger,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		workers:      workers,
		locks:        map[string]*docLock{},
	}
}

// Ingest stores the uploaded file, parses it, chunks the cleaned text, embeds
// every chunk and writes document plus chunks in one bulk operation. Nothing
// is persisted in the index until every chunk has its embedding, so a provider
// failure mid-batch leaves no partial document.
func (s *Service) Ingest(ctx context.Context, req UploadRequest) (domain.SourceDocument, error) {
	fileType := filepath.Ext(req.FileName)
	if !s.parser.Supports(fileType) {
		return domain.SourceDocument{}, fmt.Errorf("file type %q: %w", fileType, domain.ErrUnsupportedFormat)
	}

	path, size, err := s.files.Save(req.FileName, req.File)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("save upload: %w", err)
	}

	doc, err := s.ingestStored(ctx, req, path, fileType, size)
	if err != nil {
		s.removeFile(path)
		metrics.DocumentsIngestedTotal.WithLabelValues(fileType, "error").Inc()
		return domain.SourceDocument{}, err
	}

	metrics.DocumentsIngestedTotal.WithLabelValues(fileType, "success").Inc()
	metrics.ChunksStoredTotal.Add(float64(doc.ChunkCount))
	return doc, nil
}

func (s *Service) ingestStored(
	ctx context.Context, req UploadRequest, path, fileType string, size int64,
) (domain.SourceDocument, error) {
	parsed, err := s.parser.Parse(path, fileType)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("parse %s: %w", req.FileName, err)
	}

	meta := mergeMetadata(req.Metadata, parsed.Metadata, path, fileType)

	doc := domain.SourceDocument{
		ID:         uuid.NewString(),
		Title:      resolveTitle(req.Title, meta, req.FileName),
		Author:     firstNonEmpty(req.Author, meta[domain.MetaAuthor]),
		FilePath:   path,
		FileType:   fileType,
		FileSize:   size,
		Metadata:   meta,
		UploadedBy: req.UploadedBy,
		UploadedAt: time.Now().UTC(),
	}

	chunks, err := s.buildChunks(ctx, &doc, parsed.Text)
	if err != nil {
		return domain.SourceDocument{}, err
	}
	doc.ChunkCount = len(chunks)

	if err := s.repo.Create(ctx, &doc, chunks); err != nil {
		return domain.SourceDocument{}, err
	}
	return doc, nil
}

// Reindex re-parses the stored file and replaces the document's chunks.
// The document record keeps its identity and metadata; only chunk_count moves.
func (s *Service) Reindex(ctx context.Context, id string) (domain.SourceDocument, error) {
	unlock := s.lock(id)
	defer unlock()

	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.SourceDocument{}, err
	}

	parsed, err := s.parser.Parse(doc.FilePath, doc.FileType)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("reparse document %s: %w", id, err)
	}

	chunks, err := s.buildChunks(ctx, &doc, parsed.Text)
	if err != nil {
		return domain.SourceDocument{}, err
	}

	oldCount := doc.ChunkCount
	doc.ChunkCount = len(chunks)

	if err := s.repo.ReplaceChunks(ctx, &doc, oldCount, chunks); err != nil {
		return domain.SourceDocument{}, err
	}

	metrics.ChunksStoredTotal.Add(float64(len(chunks)))
	return doc, nil
}

// Delete removes the document, its chunks and its stored file. The entity
// delete is strict; a failed file removal is logged but does not fail the call.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.files.Remove(doc.FilePath); err != nil {
		s.logger.Warn("Failed to remove stored file",
			zap.String("document_id", id), zap.String("path", doc.FilePath), zap.Error(err))
	}
	return nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.SourceDocument, error) {
	return s.repo.Get(ctx, id)
}

// List returns documents ordered by upload time, newest first.
func (s *Service) List(ctx context.Context, offset, limit int) ([]domain.SourceDocument, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

// Chunks returns all chunks of a document in ordinal order.
func (s *Service) Chunks(ctx context.Context, id string) ([]domain.Chunk, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.Chunks(ctx, &doc)
}

// buildChunks cleans the text, splits it and embeds every piece through a
// bounded worker pool. Ordinal order of the result matches the split order.
func (s *Service) buildChunks(
	ctx context.Context, doc *domain.SourceDocument, text string,
) ([]domain.Chunk, error) {
	pieces, err := chunk.Split(textnorm.Clean(text), s.chunkSize, s.chunkOverlap)
	if err != nil {
		return nil, err
	}
	if len(pieces) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(pieces))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range pieces {
		i := i
		g.Go(func() error {
			result, err := s.embedder.Embed(gctx, pieces[i].Content)
			if err != nil {
				return fmt.Errorf("embed chunk %d: %w", i, err)
			}
			chunks[i] = domain.Chunk{
				DocumentID: doc.ID,
				Index:      pieces[i].Index,
				Content:    pieces[i].Content,
				Start:      pieces[i].Start,
				End:        pieces[i].End,
				Metadata: map[string]string{
					domain.MetaTitle:  doc.Title,
					domain.MetaAuthor: doc.Author,
					domain.MetaStart:  strconv.Itoa(pieces[i].Start),
					domain.MetaEnd:    strconv.Itoa(pieces[i].End),
				},
				Vector: result.Embedding,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chunks, nil
}

// mergeMetadata layers container metadata, caller metadata and file-stat
// metadata; later layers win on key conflicts.
func mergeMetadata(extra, parsed map[string]string, path, fileType string) map[string]string {
	meta := make(map[string]string, len(extra)+len(parsed)+4)
	for k, v := range parsed {
		meta[k] = v
	}
	for k, v := range extra {
		meta[k] = v
	}
	if basic, err := parser.BasicFileMetadata(path, fileType); err == nil {
		for k, v := range basic {
			meta[k] = v
		}
	}
	return meta
}

func resolveTitle(requested string, meta map[string]string, fileName string) string {
	if requested != "" {
		return requested
	}
	if t := meta[domain.MetaTitle]; t != "" {
		return t
	}
	return fileName
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *Service) removeFile(path string) {
	if err := s.files.Remove(path); err != nil {
		s.logger.Warn("Failed to remove stored file", zap.String("path", path), zap.Error(err))
	}
}

// lock serializes reindex and delete of the same document.
func (s *Service) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &docLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}
