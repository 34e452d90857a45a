package reranker

import (
	"context"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

// Provider is the external contextual scoring service. It returns candidate
// IDs in relevance order; the set may be a subset of the input and is never
// trusted blindly.
type Provider interface {
	Rank(ctx context.Context, query string, candidates []*domain.Assessment) ([]string, error)
}
