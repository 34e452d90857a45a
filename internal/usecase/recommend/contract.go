package recommend

import (
	"context"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

// Analyzer extracts structural signals from the query text.
type Analyzer interface {
	Analyze(query string) domain.QuerySignals
}

// Retriever produces the broad similarity-ordered candidate set.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.Candidate, error)
}

// Balancer reshapes candidates to the target category mix.
type Balancer interface {
	Balance(candidates []domain.Candidate, signals domain.QuerySignals) []domain.Candidate
}

// Reranker reorders the balanced set, reporting whether the provider order
// was applied or the pipeline fell back to the incoming order.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []domain.Candidate) ([]domain.Candidate, bool)
}
