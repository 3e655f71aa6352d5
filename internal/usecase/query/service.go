// Package query answers questions over the ingested corpus: retrieve,
// assemble, generate, log.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/domain/prompt"
)

// Request is one question against the corpus. History and ConversationID are
// optional; TopK <= 0 falls back to the configured default.
type Request struct {
	Question       string
	History        []domain.Turn
	ConversationID string
	TopK           int
}

// Answer is the result of one retrieval-and-generation round.
type Answer struct {
	Response       string
	Chunks         []domain.RetrievedChunk
	ElapsedSeconds float64
}

// Service answers questions using retrieval-augmented generation.
type Service struct {
	embedder  Embedder
	searcher  Searcher
	generator Generator
	logs      LogRepository
	logger    *zap.Logger

	defaultTopK      int
	maxContextTokens int
}

// New creates a query service. embedder must be the query-mode instance.
func New(
	embedder Embedder,
	searcher Searcher,
	generator Generator,
	logs LogRepository,
	logger *zap.Logger,
	defaultTopK, maxContextTokens int,
) *Service {
	return &Service{
		embedder:         embedder,
		searcher:         searcher,
		generator:        generator,
		logs:             logs,
		logger:           logger,
		defaultTopK:      defaultTopK,
		maxContextTokens: maxContextTokens,
	}
}

// Answer embeds the question, retrieves the nearest chunks, assembles the
// prompt and generates a response. An empty corpus is not an error: the
// context section is simply empty and generation still runs.
func (s *Service) Answer(ctx context.Context, req Request) (Answer, error) {
	started := time.Now()

	k := req.TopK
	if k <= 0 {
		k = s.defaultTopK
	}

	embedded, err := s.embedder.Embed(ctx, req.Question)
	if err != nil {
		return Answer{}, fmt.Errorf("embed question: %w", err)
	}

	chunks, err := s.searcher.Search(ctx, embedded.Embedding, k)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve chunks: %w", err)
	}

	p := prompt.Build(req.Question, chunks, req.History, s.maxContextTokens)

	response, err := s.generator.Generate(ctx, p)
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	elapsed := time.Since(started).Seconds()
	s.record(ctx, req, response, chunks, elapsed)

	return Answer{
		Response:       response,
		Chunks:         chunks,
		ElapsedSeconds: elapsed,
	}, nil
}

// Logs returns recorded queries, newest first.
func (s *Service) Logs(ctx context.Context, offset, limit int) ([]domain.QueryLog, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.logs.List(ctx, offset, limit)
}

// record writes the query log. A logging failure never fails the answer.
func (s *Service) record(
	ctx context.Context, req Request, response string, chunks []domain.RetrievedChunk, elapsed float64,
) {
	chunkIDs := make([]string, 0, len(chunks))
	for _, rc := range chunks {
		chunkIDs = append(chunkIDs, domain.ChunkID(rc.Chunk.DocumentID, rc.Chunk.Index))
	}

	entry := domain.QueryLog{
		ID:             uuid.NewString(),
		Query:          req.Question,
		Response:       response,
		ChunkIDs:       chunkIDs,
		ConversationID: req.ConversationID,
		ElapsedSeconds: elapsed,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.logs.Create(ctx, &entry); err != nil {
		s.logger.Warn("Failed to record query log", zap.String("query_log_id", entry.ID), zap.Error(err))
	}
}
