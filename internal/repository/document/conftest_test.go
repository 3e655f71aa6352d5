package document

import (
	"context"

	"github.com/kailas-cloud/ragdex/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	hgetMultiFn   func(ctx context.Context, keys []string) ([]map[string]string, error)
	delMultiFn    func(ctx context.Context, keys []string) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	searchListFn  func(ctx context.Context, index, query string, offset, limit int, sortBy string, desc bool) (*db.SearchResult, error)
	searchCountFn func(ctx context.Context, index, query string) (int, error)

	lastItems   []db.HashSetItem
	deletedKeys []string
	indexes     []*db.IndexDefinition
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	m.lastItems = items
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetMultiFn != nil {
		return m.hgetMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) DelMulti(ctx context.Context, keys []string) error {
	m.deletedKeys = append(m.deletedKeys, keys...)
	if m.delMultiFn != nil {
		return m.delMultiFn(ctx, keys)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	m.indexes = append(m.indexes, def)
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) SearchList(
	ctx context.Context, index, query string, offset, limit int, sortBy string, desc bool,
) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, index, query, offset, limit, sortBy, desc)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, query)
	}
	return 0, nil
}
