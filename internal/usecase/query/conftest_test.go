package query

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

type mockSearcher struct {
	chunks []domain.RetrievedChunk
	err    error
	lastK  int
}

func (m *mockSearcher) Search(_ context.Context, _ []float32, k int) ([]domain.RetrievedChunk, error) {
	m.lastK = k
	return m.chunks, m.err
}

type mockGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	return m.response, m.err
}

type mockLogRepo struct {
	createErr error
	lastLog   *domain.QueryLog
	logs      []domain.QueryLog
}

func (m *mockLogRepo) Create(_ context.Context, log *domain.QueryLog) error {
	m.lastLog = log
	return m.createErr
}

func (m *mockLogRepo) List(_ context.Context, _, _ int) ([]domain.QueryLog, int, error) {
	return m.logs, len(m.logs), nil
}

type testDeps struct {
	embedder  *mockEmbedder
	searcher  *mockSearcher
	generator *mockGenerator
	logs      *mockLogRepo
}

func newTestService(t *testing.T) (*Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		embedder:  &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}},
		searcher:  &mockSearcher{},
		generator: &mockGenerator{response: "the answer"},
		logs:      &mockLogRepo{},
	}
	svc := New(deps.embedder, deps.searcher, deps.generator, deps.logs, zap.NewNop(), 5, 3000)
	return svc, deps
}

var errBoom = errors.New("boom")
