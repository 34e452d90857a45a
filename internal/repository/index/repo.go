// Package index adapts the Redis FT vector index to the semantic index
// contract consumed by the candidate retriever.
package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillmatch-cloud/skillmatch/internal/db"
	"github.com/skillmatch-cloud/skillmatch/internal/domain"
	"github.com/skillmatch-cloud/skillmatch/internal/repository/catalog"
)

// Name is the FT index over assessment vectors.
const Name = domain.KeyPrefix + "assessment:idx"

// store is the consumer interface for index operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements nearest-neighbor lookup over the assessment vector index.
type Repo struct {
	store store
}

// New creates an index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Nearest returns the k catalog items closest to the query vector by cosine
// similarity, best first. An unreachable store or missing index maps to
// domain.ErrIndexUnavailable.
func (r *Repo) Nearest(ctx context.Context, vector []float32, k int) ([]domain.IndexHit, error) {
	q := &db.KNNQuery{
		IndexName:    Name,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w: %w", domain.ErrIndexUnavailable, err)
	}

	hits := make([]domain.IndexHit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		hits = append(hits, domain.IndexHit{
			ID:         strings.TrimPrefix(entry.Key, catalog.KeyPrefix),
			Similarity: entry.Score,
		})
	}
	return hits, nil
}

// Exists reports whether the FT index has been built.
func (r *Repo) Exists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, Name)
	if err != nil {
		return false, fmt.Errorf("index info: %w", err)
	}
	return ok, nil
}

// Definition returns the FT index definition for the given vector dimension.
// FLAT suits the catalog's size; cosine distance matches the normalized
// embeddings.
func Definition(dim int) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     Name,
		Prefixes: []string{catalog.KeyPrefix},
		Fields: []db.IndexField{
			{Name: "category", Type: db.IndexFieldTag},
			{Name: "duration", Type: db.IndexFieldNumeric},
			{
				Name:           "vector",
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorFlat,
				VectorDim:      dim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}
}
