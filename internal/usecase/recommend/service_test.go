package recommend

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
	"github.com/skillmatch-cloud/skillmatch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockAnalyzer struct {
	signals domain.QuerySignals
}

func (m *mockAnalyzer) Analyze(_ string) domain.QuerySignals { return m.signals }

type mockRetriever struct {
	candidates []domain.Candidate
	err        error
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string) ([]domain.Candidate, error) {
	return m.candidates, m.err
}

type mockBalancer struct{}

func (m *mockBalancer) Balance(c []domain.Candidate, _ domain.QuerySignals) []domain.Candidate {
	return c
}

type mockReranker struct {
	reorder  func([]domain.Candidate) []domain.Candidate
	reranked bool
}

func (m *mockReranker) Rerank(_ context.Context, _ string, c []domain.Candidate) ([]domain.Candidate, bool) {
	if m.reorder != nil {
		return m.reorder(c), m.reranked
	}
	return c, m.reranked
}

func candidateSet(ids ...string) []domain.Candidate {
	out := make([]domain.Candidate, len(ids))
	for i, id := range ids {
		out[i] = domain.Candidate{
			Assessment: &domain.Assessment{ID: id, Name: "Assessment " + id, URL: "https://example.com/" + id},
		}
	}
	return out
}

func newService(r Retriever, rr Reranker) *Service {
	return New(
		&mockAnalyzer{signals: domain.QuerySignals{Weights: domain.BaselineWeights()}},
		r, &mockBalancer{}, rr, 10, zap.NewNop(),
	)
}

const validQuery = "Hiring for Java developers who collaborate"

// --- Tests ---

func TestRecommend_Success(t *testing.T) {
	svc := newService(
		&mockRetriever{candidates: candidateSet("a", "b", "c", "d", "e")},
		&mockReranker{reranked: true},
	)

	got, err := svc.Recommend(context.Background(), validQuery)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("got %d recommendations, want 5", len(got))
	}
	if got[0].Name != "Assessment a" || got[0].URL != "https://example.com/a" {
		t.Errorf("unexpected first recommendation: %+v", got[0])
	}
}

func TestRecommend_QueryTooShort(t *testing.T) {
	svc := newService(&mockRetriever{}, &mockReranker{})

	_, err := svc.Recommend(context.Background(), "   java   ")
	if !errors.Is(err, domain.ErrQueryTooShort) {
		t.Fatalf("expected ErrQueryTooShort, got %v", err)
	}
}

func TestRecommend_RetrievalFailureIsFatal(t *testing.T) {
	svc := newService(
		&mockRetriever{err: domain.ErrIndexUnavailable},
		&mockReranker{},
	)

	_, err := svc.Recommend(context.Background(), validQuery)
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestRecommend_ClampsToMaxResults(t *testing.T) {
	ids := make([]string, 15)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}
	svc := newService(&mockRetriever{candidates: candidateSet(ids...)}, &mockReranker{})

	got, err := svc.Recommend(context.Background(), validQuery)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("got %d recommendations, want 10", len(got))
	}
}

func TestRecommend_Deduplicates(t *testing.T) {
	svc := newService(&mockRetriever{candidates: candidateSet("a", "b", "a", "c", "b")}, &mockReranker{})

	got, err := svc.Recommend(context.Background(), validQuery)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d recommendations, want 3 after dedupe", len(got))
	}
}

func TestRecommend_RerankFallbackPreservesComposition(t *testing.T) {
	input := candidateSet("a", "b", "c", "d", "e")
	svc := newService(&mockRetriever{candidates: input}, &mockReranker{reranked: false})

	got, err := svc.Recommend(context.Background(), validQuery)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(got) != len(input) {
		t.Fatalf("fallback changed the result size: %d", len(got))
	}
	for i, c := range input {
		if got[i].Name != c.Assessment.Name {
			t.Errorf("fallback changed order at %d: %s", i, got[i].Name)
		}
	}
}

func TestRecommend_RerankedOrderApplied(t *testing.T) {
	reverse := func(c []domain.Candidate) []domain.Candidate {
		out := make([]domain.Candidate, len(c))
		for i := range c {
			out[i] = c[len(c)-1-i]
		}
		return out
	}
	svc := newService(
		&mockRetriever{candidates: candidateSet("a", "b", "c")},
		&mockReranker{reorder: reverse, reranked: true},
	)

	got, err := svc.Recommend(context.Background(), validQuery)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if got[0].Name != "Assessment c" {
		t.Errorf("expected reranked order, got %v first", got[0].Name)
	}
}

func TestRecommend_EmptyCandidatesIsNotAnError(t *testing.T) {
	svc := newService(&mockRetriever{candidates: nil}, &mockReranker{})

	got, err := svc.Recommend(context.Background(), validQuery)
	if err != nil {
		t.Fatalf("expected terminal empty result, got error %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
