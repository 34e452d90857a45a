package catalog

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/skillmatch-cloud/skillmatch/internal/db"
	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

// KeyPrefix namespaces assessment record hashes.
const KeyPrefix = domain.KeyPrefix + "assessment:"

// store is the consumer interface for catalog persistence (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo persists assessment records as Redis hashes. The API server only
// reads (LoadSnapshot at startup); writes happen offline via the indexer.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Key returns the Redis key for an assessment ID.
func Key(id string) string {
	return KeyPrefix + id
}

// UpsertAll writes records with their embedding vectors in one pipelined
// round-trip. Vector i belongs to record i.
func (r *Repo) UpsertAll(ctx context.Context, records []domain.Assessment, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("records/vectors length mismatch: %d != %d", len(records), len(vectors))
	}

	items := make([]db.HashSetItem, len(records))
	for i := range records {
		items[i] = db.HashSetItem{
			Key:    Key(records[i].ID),
			Fields: toFields(&records[i], vectors[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert catalog: %w", err)
	}
	return nil
}

// DeleteAll removes every assessment record. Used by the indexer with -recreate.
func (r *Repo) DeleteAll(ctx context.Context) error {
	keys, err := r.store.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("scan catalog: %w", err)
	}
	for _, k := range keys {
		if err := r.store.Del(ctx, k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

// LoadSnapshot reads the full catalog into an immutable in-memory snapshot,
// ordered by insertion sequence. Called once at startup.
func (r *Repo) LoadSnapshot(ctx context.Context) (*domain.Catalog, error) {
	keys, err := r.store.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w: %w", domain.ErrIndexUnavailable, err)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w: %w", domain.ErrIndexUnavailable, err)
	}

	records := make([]domain.Assessment, 0, len(hashes))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue
		}
		id := strings.TrimPrefix(keys[i], KeyPrefix)
		a, err := fromFields(id, fields)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		records = append(records, a)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })

	return domain.NewCatalog(records), nil
}

// vectorToBytes serializes []float32 to the binary string stored in the hash.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
