// Package recommend composes the recommendation pipeline:
// analyze, retrieve, balance, rerank, respond. Only retrieval can fail the
// request; every later stage degrades to a defined fallback.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
	"github.com/skillmatch-cloud/skillmatch/internal/metrics"
)

// State tracks a request through the pipeline, for logging and debugging.
type State string

const (
	StateReceived      State = "RECEIVED"
	StateAnalyzed      State = "ANALYZED"
	StateRetrieved     State = "RETRIEVED"
	StateBalanced      State = "BALANCED"
	StateReranked      State = "RERANKED"
	StateRerankSkipped State = "RERANK_SKIPPED"
	StateResponded     State = "RESPONDED"
	StateFailed        State = "FAILED"
)

// MinQueryLen is the minimum effective query length accepted at the
// pipeline boundary.
const MinQueryLen = 10

// Service orchestrates one recommendation request per call. Stateless
// beyond its read-only collaborators, safe for concurrent use.
type Service struct {
	analyzer   Analyzer
	retriever  Retriever
	balancer   Balancer
	reranker   Reranker
	maxResults int
	logger     *zap.Logger
}

// New creates the orchestrator. maxResults bounds the response size.
func New(
	analyzer Analyzer, retriever Retriever, balancer Balancer, reranker Reranker,
	maxResults int, logger *zap.Logger,
) *Service {
	return &Service{
		analyzer:   analyzer,
		retriever:  retriever,
		balancer:   balancer,
		reranker:   reranker,
		maxResults: maxResults,
		logger:     logger,
	}
}

// Recommend runs the full pipeline for one query. The result is
// deduplicated by assessment identity and bounded by maxResults. The only
// caller-visible failure is a retrieval error on an unusable backing store.
func (s *Service) Recommend(ctx context.Context, query string) ([]domain.Recommendation, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLen {
		return nil, fmt.Errorf("query length %d below minimum %d: %w",
			len(query), MinQueryLen, domain.ErrQueryTooShort)
	}

	state := StateReceived

	start := time.Now()
	signals := s.analyzer.Analyze(query)
	metrics.StageDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	state = StateAnalyzed

	start = time.Now()
	candidates, err := s.retriever.Retrieve(ctx, query)
	metrics.StageDuration.WithLabelValues("retrieve").Observe(time.Since(start).Seconds())
	if err != nil {
		state = StateFailed
		metrics.RecommendRequestsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("Recommendation pipeline failed",
			zap.String("state", string(state)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}
	state = StateRetrieved

	start = time.Now()
	balanced := s.balancer.Balance(candidates, signals)
	metrics.StageDuration.WithLabelValues("balance").Observe(time.Since(start).Seconds())
	state = StateBalanced

	start = time.Now()
	final, reranked := s.reranker.Rerank(ctx, query, balanced)
	metrics.StageDuration.WithLabelValues("rerank").Observe(time.Since(start).Seconds())

	outcome := "rerank_skipped"
	state = StateRerankSkipped
	if reranked {
		outcome = "reranked"
		state = StateReranked
	}

	recommendations := s.finalize(final)
	state = StateResponded

	metrics.RecommendRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.ResultSize.Observe(float64(len(recommendations)))

	s.logger.Info("Recommendation pipeline completed",
		zap.String("state", string(state)),
		zap.Int("query_len", len(query)),
		zap.Int("max_duration_minutes", signals.MaxDurationMinutes),
		zap.Float64("weight_technical", signals.Weights.Technical),
		zap.Float64("weight_behavioral", signals.Weights.Behavioral),
		zap.Float64("weight_cognitive", signals.Weights.Cognitive),
		zap.Int("retrieved", len(candidates)),
		zap.Int("balanced", len(balanced)),
		zap.Int("returned", len(recommendations)),
		zap.Bool("reranked", reranked),
	)

	return recommendations, nil
}

// finalize deduplicates by assessment identity, clamps to maxResults, and
// projects candidates into the response shape.
func (s *Service) finalize(candidates []domain.Candidate) []domain.Recommendation {
	seen := make(map[string]bool, len(candidates))
	out := make([]domain.Recommendation, 0, s.maxResults)

	for _, c := range candidates {
		if seen[c.Assessment.ID] {
			continue
		}
		seen[c.Assessment.ID] = true
		out = append(out, domain.RecommendationFrom(c))
		if len(out) == s.maxResults {
			break
		}
	}
	return out
}
