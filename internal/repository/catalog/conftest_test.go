package catalog

import (
	"context"
	"sort"

	"github.com/skillmatch-cloud/skillmatch/internal/db"
)

// mockHashStore implements the consumer interface over an in-memory map.
type mockHashStore struct {
	hashes map[string]map[string]string

	scanErr error
	loadErr error
}

func newMockHashStore() *mockHashStore {
	return &mockHashStore{hashes: make(map[string]map[string]string)}
}

func (m *mockHashStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	for _, item := range items {
		m.hashes[item.Key] = item.Fields
	}
	return nil
}

func (m *mockHashStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = m.hashes[k]
	}
	return out, nil
}

func (m *mockHashStore) Del(_ context.Context, key string) error {
	delete(m.hashes, key)
	return nil
}

func (m *mockHashStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	keys := make([]string, 0, len(m.hashes))
	for k := range m.hashes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
