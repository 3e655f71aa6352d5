// Package querylog records answered queries for later inspection.
package querylog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/ragdex/internal/db"
	"github.com/kailas-cloud/ragdex/internal/domain"
)

// store is the consumer interface for query log persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	SearchList(ctx context.Context, index, query string, offset, limit int, sortBy string, desc bool) (*db.SearchResult, error)
}

// Repo implements query log persistence over db.Store.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a query log repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// EnsureIndex creates the query log FT index if absent.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def := &db.IndexDefinition{
		Name:        r.indexName(),
		StorageType: db.StorageHash,
		Prefixes:    []string{r.keyPrefix + "qlog:"},
		Fields: []db.IndexField{
			{Name: "created_ts", Type: db.IndexFieldNumeric, Sortable: true},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create query log index: %w", err)
	}
	return nil
}

// Create stores a single query log entry.
func (r *Repo) Create(ctx context.Context, log *domain.QueryLog) error {
	chunkIDs, _ := json.Marshal(log.ChunkIDs)
	fields := map[string]string{
		"query":           log.Query,
		"response":        log.Response,
		"chunk_ids":       string(chunkIDs),
		"conversation_id": log.ConversationID,
		"elapsed_seconds": strconv.FormatFloat(log.ElapsedSeconds, 'f', -1, 64),
		"created_at":      log.CreatedAt.UTC().Format(time.RFC3339Nano),
		"created_ts":      strconv.FormatInt(log.CreatedAt.Unix(), 10),
	}
	if err := r.store.HSet(ctx, r.key(log.ID), fields); err != nil {
		return fmt.Errorf("store query log %s: %w", log.ID, err)
	}
	return nil
}

// List returns query logs ordered by creation time, newest first, plus the total count.
func (r *Repo) List(ctx context.Context, offset, limit int) ([]domain.QueryLog, int, error) {
	result, err := r.store.SearchList(ctx, r.indexName(), "*", offset, limit, "created_ts", true)
	if err != nil {
		return nil, 0, fmt.Errorf("list query logs: %w", err)
	}
	if result == nil || result.Total == 0 {
		return nil, 0, nil
	}

	logs := make([]domain.QueryLog, 0, len(result.Entries))
	for _, entry := range result.Entries {
		logs = append(logs, parseFields(r.idFromKey(entry.Key), entry.Fields))
	}
	return logs, result.Total, nil
}

func parseFields(id string, m map[string]string) domain.QueryLog {
	log := domain.QueryLog{
		ID:             id,
		Query:          m["query"],
		Response:       m["response"],
		ConversationID: m["conversation_id"],
	}
	log.ElapsedSeconds, _ = strconv.ParseFloat(m["elapsed_seconds"], 64)
	if t, err := time.Parse(time.RFC3339Nano, m["created_at"]); err == nil {
		log.CreatedAt = t
	}
	if raw := m["chunk_ids"]; raw != "" {
		_ = json.Unmarshal([]byte(raw), &log.ChunkIDs)
	}
	return log
}

func (r *Repo) key(id string) string {
	return r.keyPrefix + "qlog:" + id
}

func (r *Repo) idFromKey(key string) string {
	prefix := r.keyPrefix + "qlog:"
	if len(key) > len(prefix) {
		return key[len(prefix):]
	}
	return key
}

func (r *Repo) indexName() string {
	return r.keyPrefix + "qlog:idx"
}
