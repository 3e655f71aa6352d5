package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
	"github.com/kailas-cloud/ragdex/internal/parser"
)

type mockRepo struct {
	createFn        func(ctx context.Context, doc *domain.SourceDocument, chunks []domain.Chunk) error
	getFn           func(ctx context.Context, id string) (domain.SourceDocument, error)
	replaceFn       func(ctx context.Context, doc *domain.SourceDocument, oldCount int, chunks []domain.Chunk) error
	deleteFn        func(ctx context.Context, id string) error
	createCalls     int
	lastCreatedDoc  *domain.SourceDocument
	lastCreatedSet  []domain.Chunk
	lastReplacedSet []domain.Chunk
}

func (m *mockRepo) Create(ctx context.Context, doc *domain.SourceDocument, chunks []domain.Chunk) error {
	m.createCalls++
	m.lastCreatedDoc = doc
	m.lastCreatedSet = chunks
	if m.createFn != nil {
		return m.createFn(ctx, doc, chunks)
	}
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (domain.SourceDocument, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domain.SourceDocument{}, domain.ErrDocumentNotFound
}

func (m *mockRepo) List(_ context.Context, _, _ int) ([]domain.SourceDocument, int, error) {
	return nil, 0, nil
}

func (m *mockRepo) Chunks(_ context.Context, _ *domain.SourceDocument) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *mockRepo) ReplaceChunks(
	ctx context.Context, doc *domain.SourceDocument, oldCount int, chunks []domain.Chunk,
) error {
	m.lastReplacedSet = chunks
	if m.replaceFn != nil {
		return m.replaceFn(ctx, doc, oldCount, chunks)
	}
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockParser struct {
	parseFn func(path, fileType string) (parser.Parsed, error)
}

func (m *mockParser) Supports(fileType string) bool {
	t := strings.ToLower(strings.TrimSpace(fileType))
	return t == ".pdf" || t == ".docx"
}

func (m *mockParser) Parse(path, fileType string) (parser.Parsed, error) {
	if m.parseFn != nil {
		return m.parseFn(path, fileType)
	}
	return parser.Parsed{Text: "parsed text", Metadata: map[string]string{}}, nil
}

type mockFileStore struct {
	saveFn      func(name string, r io.Reader) (string, int64, error)
	removeFn    func(path string) error
	removed     []string
	savedPath   string
	removeCalls int
}

func (m *mockFileStore) Save(name string, r io.Reader) (string, int64, error) {
	if m.saveFn != nil {
		return m.saveFn(name, r)
	}
	m.savedPath = "/uploads/" + name
	return m.savedPath, 42, nil
}

func (m *mockFileStore) Remove(path string) error {
	m.removeCalls++
	m.removed = append(m.removed, path)
	if m.removeFn != nil {
		return m.removeFn(path)
	}
	return nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type testDeps struct {
	repo     *mockRepo
	parser   *mockParser
	files    *mockFileStore
	embedder *mockEmbedder
}

func newTestService(t *testing.T) (*Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		repo:     &mockRepo{},
		parser:   &mockParser{},
		files:    &mockFileStore{},
		embedder: &mockEmbedder{},
	}
	svc := New(deps.repo, deps.parser, deps.files, deps.embedder, zap.NewNop(), 100, 20, 2)
	return svc, deps
}

func upload(name string) UploadRequest {
	return UploadRequest{
		FileName: name,
		File:     strings.NewReader("file bytes"),
	}
}

var errBoom = fmt.Errorf("boom")
