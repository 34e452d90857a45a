// Package retriever turns a query into a broad similarity-ordered candidate
// set: embed the text, ask the semantic index for the nearest neighbors, and
// resolve hits against the in-memory catalog snapshot.
package retriever

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

// Service retrieves candidates for a query.
type Service struct {
	embed   Embedder
	index   Index
	catalog *domain.Catalog
	pool    int
	logger  *zap.Logger
}

// New creates a retriever. pool is the broad candidate count requested from
// the index before balancing narrows it down.
func New(embed Embedder, index Index, catalog *domain.Catalog, pool int, logger *zap.Logger) *Service {
	return &Service{
		embed:   embed,
		index:   index,
		catalog: catalog,
		pool:    pool,
		logger:  logger,
	}
}

// Retrieve returns up to pool candidates ordered by similarity descending,
// ties broken by catalog insertion order. An empty catalog or unreachable
// index is a hard failure; "no matches" cannot occur on a non-empty catalog
// since KNN always ranks whatever exists.
func (s *Service) Retrieve(ctx context.Context, query string) ([]domain.Candidate, error) {
	if s.catalog.Len() == 0 {
		return nil, fmt.Errorf("retrieve: %w", domain.ErrCatalogEmpty)
	}

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	hits, err := s.index.Nearest(ctx, embResult.Embedding, s.pool)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(hits))
	for _, hit := range hits {
		record, ok := s.catalog.Get(hit.ID)
		if !ok {
			// Index and catalog snapshot drifted, skip rather than fail
			s.logger.Warn("Index hit missing from catalog", zap.String("id", hit.ID))
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Assessment: record,
			Similarity: hit.Similarity,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Similarity != candidates[j].Similarity {
			return candidates[i].Similarity > candidates[j].Similarity
		}
		return candidates[i].Assessment.Seq < candidates[j].Assessment.Seq
	})

	return candidates, nil
}
