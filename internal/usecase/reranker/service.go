// Package reranker reorders a bounded candidate set through an external
// contextual scoring provider. Reranking is an enhancement, not a
// correctness dependency: every provider failure falls back to the
// incoming order, and the output always contains exactly the input set.
package reranker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
	"github.com/skillmatch-cloud/skillmatch/internal/metrics"
)

// Fallback reasons for the rerank_fallback_total metric.
const (
	reasonTimeout           = "timeout"
	reasonProviderError     = "provider_error"
	reasonEmptyIntersection = "empty_intersection"
)

// Service invokes the rerank provider with a bounded timeout.
type Service struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a reranker. provider may be nil, which disables reranking
// entirely and every call falls through to the input order.
func New(provider Provider, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{provider: provider, timeout: timeout, logger: logger}
}

// Rerank returns the same candidate set in provider order, most relevant
// first, and whether the provider order was actually applied. IDs outside
// the input set are discarded; input items the provider omitted are
// appended in their original order so the set never shrinks. A single
// bounded attempt is made, no retries.
func (s *Service) Rerank(ctx context.Context, query string, candidates []domain.Candidate) ([]domain.Candidate, bool) {
	if s.provider == nil || len(candidates) == 0 {
		return candidates, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records := make([]*domain.Assessment, len(candidates))
	for i := range candidates {
		records[i] = candidates[i].Assessment
	}

	ids, err := s.provider.Rank(ctx, query, records)
	if err != nil {
		reason := reasonProviderError
		if errors.Is(err, context.DeadlineExceeded) {
			reason = reasonTimeout
		}
		metrics.RerankFallbackTotal.WithLabelValues(reason).Inc()
		s.logger.Warn("Rerank failed, keeping balanced order",
			zap.String("reason", reason),
			zap.Error(err),
		)
		return candidates, false
	}

	ordered := reconcile(ids, candidates)
	if ordered == nil {
		metrics.RerankFallbackTotal.WithLabelValues(reasonEmptyIntersection).Inc()
		s.logger.Warn("Rerank returned no usable IDs, keeping balanced order",
			zap.Strings("ids", ids),
		)
		return candidates, false
	}

	return ordered, true
}

// reconcile maps provider IDs back onto the input set. Returns nil when the
// provider order does not intersect the input at all.
func reconcile(ids []string, candidates []domain.Candidate) []domain.Candidate {
	byID := make(map[string]int, len(candidates))
	for i := range candidates {
		byID[candidates[i].Assessment.ID] = i
	}

	ordered := make([]domain.Candidate, 0, len(candidates))
	used := make(map[string]bool, len(candidates))
	rank := 0

	for _, id := range ids {
		i, ok := byID[id]
		if !ok || used[id] {
			// Out-of-set ID: contract violation by the provider, drop it
			continue
		}
		used[id] = true
		c := candidates[i]
		c.Reranked = true
		c.Relevance = 1.0 - float64(rank)/float64(len(candidates))
		rank++
		ordered = append(ordered, c)
	}

	if len(ordered) == 0 {
		return nil
	}

	// Preserve set equality: anything the provider omitted trails in its
	// original order.
	for _, c := range candidates {
		if !used[c.Assessment.ID] {
			ordered = append(ordered, c)
		}
	}

	return ordered
}
