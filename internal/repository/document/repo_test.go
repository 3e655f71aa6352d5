package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
)

func testDoc() *domain.SourceDocument {
	return &domain.SourceDocument{
		ID:         "doc-1",
		Title:      "Title",
		Author:     "Author",
		FilePath:   "/uploads/x.pdf",
		FileType:   ".pdf",
		FileSize:   1234,
		Metadata:   map[string]string{"k": "v"},
		UploadedBy: "alice",
		UploadedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		ChunkCount: 2,
	}
}

func testChunks(docID string) []domain.Chunk {
	return []domain.Chunk{
		{DocumentID: docID, Index: 0, Content: "first", Start: 0, End: 100,
			Metadata: map[string]string{domain.MetaTitle: "Title"}, Vector: []float32{0.1, 0.2}},
		{DocumentID: docID, Index: 1, Content: "second", Start: 80, End: 180,
			Metadata: map[string]string{domain.MetaTitle: "Title"}, Vector: []float32{0.3, 0.4}},
	}
}

func TestCreate_SingleBulkWrite(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "ragdex:", 2)
	doc := testDoc()

	if err := repo.Create(context.Background(), doc, testChunks(doc.ID)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ms.lastItems) != 3 {
		t.Fatalf("expected doc + 2 chunks in one bulk write, got %d items", len(ms.lastItems))
	}
	if ms.lastItems[0].Key != "ragdex:doc:doc-1" {
		t.Errorf("unexpected doc key %q", ms.lastItems[0].Key)
	}
	if ms.lastItems[1].Key != "ragdex:chunk:doc-1:0" {
		t.Errorf("unexpected chunk key %q", ms.lastItems[1].Key)
	}
	if ms.lastItems[2].Key != "ragdex:chunk:doc-1:1" {
		t.Errorf("unexpected chunk key %q", ms.lastItems[2].Key)
	}
	if ms.lastItems[1].Fields[fieldContent] != "first" {
		t.Errorf("unexpected chunk content %q", ms.lastItems[1].Fields[fieldContent])
	}
}

func TestGet_NotFound(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "ragdex:", 2)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "ragdex:", 2)
	doc := testDoc()

	fields := buildDocFields(doc)
	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "ragdex:doc:doc-1" {
			t.Errorf("unexpected key %q", key)
		}
		return fields, nil
	}

	got, err := repo.Get(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != doc.Title || got.Author != doc.Author || got.FilePath != doc.FilePath {
		t.Errorf("unexpected document: %+v", got)
	}
	if got.FileSize != doc.FileSize || got.ChunkCount != doc.ChunkCount {
		t.Errorf("numeric fields lost: %+v", got)
	}
	if !got.UploadedAt.Equal(doc.UploadedAt) {
		t.Errorf("expected uploaded at %v, got %v", doc.UploadedAt, got.UploadedAt)
	}
	if got.Metadata["k"] != "v" {
		t.Errorf("metadata lost: %v", got.Metadata)
	}
}

func TestDelete_CascadesChunks(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "ragdex:", 2)

	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return buildDocFields(testDoc()), nil
	}

	if err := repo.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"ragdex:chunk:doc-1:0", "ragdex:chunk:doc-1:1", "ragdex:doc:doc-1"}
	if len(ms.deletedKeys) != len(want) {
		t.Fatalf("expected %d deleted keys, got %v", len(want), ms.deletedKeys)
	}
	for i, k := range want {
		if ms.deletedKeys[i] != k {
			t.Errorf("deleted key %d: got %q, want %q", i, ms.deletedKeys[i], k)
		}
	}
}

func TestDelete_NotFound(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "ragdex:", 2)

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if len(ms.deletedKeys) != 0 {
		t.Errorf("nothing must be deleted, got %v", ms.deletedKeys)
	}
}

func TestChunks_OrdinalOrder(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "ragdex:", 2)
	doc := testDoc()
	chunks := testChunks(doc.ID)

	ms.hgetMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		if len(keys) != doc.ChunkCount {
			t.Errorf("expected %d keys, got %v", doc.ChunkCount, keys)
		}
		out := make([]map[string]string, len(chunks))
		for i := range chunks {
			out[i] = buildChunkFields(&chunks[i])
		}
		return out, nil
	}

	got, err := repo.Chunks(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	for i, c := range got {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.Content != chunks[i].Content {
			t.Errorf("chunk %d content %q, want %q", i, c.Content, chunks[i].Content)
		}
		if len(c.Vector) != 2 {
			t.Errorf("chunk %d vector lost: %v", i, c.Vector)
		}
	}
}

func TestChunks_ZeroCount(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "ragdex:", 2)
	doc := testDoc()
	doc.ChunkCount = 0

	got, err := repo.Chunks(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected no chunks, got %v", got)
	}
}

func TestReplaceChunks_DeletesOldSet(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "ragdex:", 2)
	doc := testDoc()
	doc.ChunkCount = 1

	err := repo.ReplaceChunks(context.Background(), doc, 3, testChunks(doc.ID)[:1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"ragdex:chunk:doc-1:0", "ragdex:chunk:doc-1:1", "ragdex:chunk:doc-1:2"}
	if len(ms.deletedKeys) != len(want) {
		t.Fatalf("expected %d deleted keys, got %v", len(want), ms.deletedKeys)
	}
	if len(ms.lastItems) != 2 {
		t.Fatalf("expected doc + 1 chunk written, got %d", len(ms.lastItems))
	}
}

func TestList_Descending(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "ragdex:", 2)

	ms.searchListFn = func(
		_ context.Context, index, query string, offset, limit int, sortBy string, desc bool,
	) (*db.SearchResult, error) {
		if index != "ragdex:doc:idx" {
			t.Errorf("unexpected index %q", index)
		}
		if sortBy != "uploaded_ts" || !desc {
			t.Errorf("expected uploaded_ts DESC, got %q desc=%v", sortBy, desc)
		}
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				{Key: "ragdex:doc:doc-1", Fields: buildDocFields(testDoc())},
			},
		}, nil
	}

	docs, total, err := repo.List(context.Background(), 0, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d (total %d)", len(docs), total)
	}
	if docs[0].ID != "doc-1" {
		t.Errorf("expected ID parsed from key, got %q", docs[0].ID)
	}
}

func TestEnsureIndexes_Definitions(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "ragdex:", 768).WithHNSW(HNSWConfig{M: 16, EFConstruct: 200})

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.indexes) != 2 {
		t.Fatalf("expected 2 indexes, got %d", len(ms.indexes))
	}

	chunkIdx := ms.indexes[1]
	var vec *db.IndexField
	for i := range chunkIdx.Fields {
		if chunkIdx.Fields[i].Type == db.IndexFieldVector {
			vec = &chunkIdx.Fields[i]
		}
	}
	if vec == nil {
		t.Fatal("chunk index missing vector field")
	}
	if vec.VectorDim != 768 {
		t.Errorf("expected dim 768, got %d", vec.VectorDim)
	}
	if vec.VectorAlgo != db.VectorHNSW || vec.VectorDistance != db.DistanceCosine {
		t.Errorf("expected HNSW cosine, got %s %s", vec.VectorAlgo, vec.VectorDistance)
	}
	if vec.VectorM != 16 || vec.VectorEFConstruct != 200 {
		t.Errorf("HNSW params lost: M=%d EF=%d", vec.VectorM, vec.VectorEFConstruct)
	}
}

func TestEnsureIndexes_ExistingTolerated(t *testing.T) {
	ms := &mockStore{}
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return db.ErrIndexExists
	}
	repo := New(ms, "ragdex:", 2)

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("existing index must be tolerated, got %v", err)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	in := []float32{1.5, -2.25, 0}
	out := bytesToVector(vectorToBytes(in))
	if len(out) != len(in) {
		t.Fatalf("expected %d floats, got %d", len(in), len(out))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("index %d: got %f, want %f", i, out[i], in[i])
		}
	}
}
