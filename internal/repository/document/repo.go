// Package document persists source documents and their chunks as Redis
// hashes under a shared vector index.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
)

// store is the consumer interface for document persistence (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	DelMulti(ctx context.Context, keys []string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchList(ctx context.Context, index, query string, offset, limit int, sortBy string, desc bool) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig carries pass-through HNSW build parameters for the chunk index.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements document and chunk persistence over db.Store.
type Repo struct {
	store     store
	keyPrefix string
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a document repository. vectorDim is the process-wide embedding
// dimension D; the chunk index is created with it and never silently resized.
func New(s store, keyPrefix string, vectorDim int) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, vectorDim: vectorDim}
}

// WithHNSW configures HNSW build parameters for the chunk index.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndexes creates the document and chunk FT indexes if absent.
// An existing chunk index keeps its original dimension: changing D is a
// breaking migration, not a runtime adaptation.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	docIdx := &db.IndexDefinition{
		Name:        r.docIndexName(),
		StorageType: db.StorageHash,
		Prefixes:    []string{r.keyPrefix + "doc:"},
		Fields: []db.IndexField{
			{Name: "uploaded_ts", Type: db.IndexFieldNumeric, Sortable: true},
		},
	}
	if err := r.store.CreateIndex(ctx, docIdx); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create document index: %w", err)
	}

	chunkIdx := &db.IndexDefinition{
		Name:        r.chunkIndexName(),
		StorageType: db.StorageHash,
		Prefixes:    []string{r.keyPrefix + "chunk:"},
		Fields: []db.IndexField{
			{Name: fieldDocID, Type: db.IndexFieldTag},
			{Name: fieldChunkIndex, Type: db.IndexFieldNumeric, Sortable: true},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorDim:         r.vectorDim,
				VectorAlgo:        db.VectorHNSW,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, chunkIdx); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create chunk index: %w", err)
	}

	return nil
}

// Create stores a document and all its chunks in one pipelined bulk write.
// The caller only reaches this point with every chunk already embedded, so an
// embedding failure can never leave a document with partial chunks.
func (r *Repo) Create(ctx context.Context, doc *domain.SourceDocument, chunks []domain.Chunk) error {
	items := make([]db.HashSetItem, 0, 1+len(chunks))
	items = append(items, db.HashSetItem{Key: r.docKey(doc.ID), Fields: buildDocFields(doc)})
	for i := range chunks {
		items = append(items, db.HashSetItem{
			Key:    r.chunkKey(chunks[i].DocumentID, chunks[i].Index),
			Fields: buildChunkFields(&chunks[i]),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store document %s: %w", doc.ID, err)
	}
	return nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.SourceDocument, error) {
	m, err := r.store.HGetAll(ctx, r.docKey(id))
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("get document %s: %w", id, err)
	}
	if len(m) == 0 {
		return domain.SourceDocument{}, domain.ErrDocumentNotFound
	}
	return parseDocFields(id, m), nil
}

// List returns documents ordered by upload time, newest first, plus the total count.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domain.SourceDocument, int, error) {
	result, err := r.store.SearchList(ctx, r.docIndexName(), "*", offset, limit, "uploaded_ts", true)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	if result == nil || result.Total == 0 {
		return nil, 0, nil
	}

	docs := make([]domain.SourceDocument, 0, len(result.Entries))
	for _, entry := range result.Entries {
		docs = append(docs, parseDocFields(r.docIDFromKey(entry.Key), entry.Fields))
	}
	return docs, result.Total, nil
}

// Count returns the number of stored documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.docIndexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Chunks returns all chunks of a document in ordinal order.
func (r *Repo) Chunks(ctx context.Context, doc *domain.SourceDocument) ([]domain.Chunk, error) {
	if doc.ChunkCount == 0 {
		return nil, nil
	}
	keys := make([]string, doc.ChunkCount)
	for i := 0; i < doc.ChunkCount; i++ {
		keys[i] = r.chunkKey(doc.ID, i)
	}
	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get chunks of %s: %w", doc.ID, err)
	}

	chunks := make([]domain.Chunk, 0, len(maps))
	for _, m := range maps {
		if len(m) == 0 {
			continue
		}
		chunks = append(chunks, parseChunkFields(m))
	}
	return chunks, nil
}

// ReplaceChunks removes a document's chunks and writes the new set together
// with the updated document hash. Used by reindexing: document identity and
// metadata stay untouched except for chunk_count.
func (r *Repo) ReplaceChunks(ctx context.Context, doc *domain.SourceDocument, oldCount int, chunks []domain.Chunk) error {
	if oldCount > 0 {
		keys := make([]string, oldCount)
		for i := 0; i < oldCount; i++ {
			keys[i] = r.chunkKey(doc.ID, i)
		}
		if err := r.store.DelMulti(ctx, keys); err != nil {
			return fmt.Errorf("delete old chunks of %s: %w", doc.ID, err)
		}
	}
	return r.Create(ctx, doc, chunks)
}

// Delete removes a document and every chunk it owns.
func (r *Repo) Delete(ctx context.Context, id string) error {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	keys := make([]string, 0, 1+doc.ChunkCount)
	for i := 0; i < doc.ChunkCount; i++ {
		keys = append(keys, r.chunkKey(id, i))
	}
	keys = append(keys, r.docKey(id))

	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

func (r *Repo) docKey(id string) string {
	return r.keyPrefix + "doc:" + id
}

func (r *Repo) docIDFromKey(key string) string {
	prefix := r.keyPrefix + "doc:"
	if len(key) > len(prefix) {
		return key[len(prefix):]
	}
	return key
}

func (r *Repo) chunkKey(docID string, index int) string {
	return r.keyPrefix + "chunk:" + domain.ChunkID(docID, index)
}

func (r *Repo) docIndexName() string {
	return r.keyPrefix + "doc:idx"
}

func (r *Repo) chunkIndexName() string {
	return r.keyPrefix + "chunk:idx"
}
