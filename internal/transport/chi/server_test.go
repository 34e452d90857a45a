package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
	"github.com/skillmatch-cloud/skillmatch/internal/metrics"
	healthuc "github.com/skillmatch-cloud/skillmatch/internal/usecase/health"
	recommenduc "github.com/skillmatch-cloud/skillmatch/internal/usecase/recommend"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

// --- Pipeline stubs ---

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(_ string) domain.QuerySignals {
	return domain.QuerySignals{Weights: domain.BaselineWeights()}
}

type stubRetriever struct {
	candidates []domain.Candidate
	err        error
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string) ([]domain.Candidate, error) {
	return s.candidates, s.err
}

type stubBalancer struct{}

func (stubBalancer) Balance(c []domain.Candidate, _ domain.QuerySignals) []domain.Candidate {
	return c
}

type stubReranker struct{}

func (stubReranker) Rerank(_ context.Context, _ string, c []domain.Candidate) ([]domain.Candidate, bool) {
	return c, false
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(_ context.Context) error { return s.err }

func testRecommendations() []domain.Candidate {
	return []domain.Candidate{
		{Assessment: &domain.Assessment{ID: "java", Name: "Java Test", URL: "https://example.com/java"}},
		{Assessment: &domain.Assessment{ID: "sql", Name: "SQL Test", URL: "https://example.com/sql"}},
	}
}

func newTestRouter(retriever *stubRetriever, pingErr error) http.Handler {
	catalog := domain.NewCatalog([]domain.Assessment{
		{ID: "java", Name: "Java Test", Category: domain.CategoryTechnical},
		{ID: "team", Name: "Teamwork", Category: domain.CategoryBehavioral},
	})

	recSvc := recommenduc.New(
		stubAnalyzer{}, retriever, stubBalancer{}, stubReranker{},
		10, zap.NewNop(),
	)
	healthSvc := healthuc.New(&stubPinger{err: pingErr}, nil, nil, catalog.Len())

	server := NewServer(recSvc, healthSvc, catalog, zap.NewNop())
	r := chirouter.NewRouter()
	server.Routes(r)
	return r
}

// --- Tests ---

func TestRecommendEndpoint_Success(t *testing.T) {
	router := newTestRouter(&stubRetriever{candidates: testRecommendations()}, nil)

	body := `{"query": "Java developer with SQL experience"}`
	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp RecommendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Count != 2 || len(resp.Recommendations) != 2 {
		t.Fatalf("count = %d, recommendations = %d, want 2", resp.Count, len(resp.Recommendations))
	}
	if resp.Recommendations[0].AssessmentName != "Java Test" {
		t.Errorf("first recommendation = %q", resp.Recommendations[0].AssessmentName)
	}
	if resp.Recommendations[0].AssessmentURL != "https://example.com/java" {
		t.Errorf("first url = %q", resp.Recommendations[0].AssessmentURL)
	}
}

func TestRecommendEndpoint_QueryTooShort(t *testing.T) {
	router := newTestRouter(&stubRetriever{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"query": "java"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if resp.Code != codeQueryTooShort {
		t.Errorf("code = %q, want %q", resp.Code, codeQueryTooShort)
	}
}

func TestRecommendEndpoint_InvalidJSON(t *testing.T) {
	router := newTestRouter(&stubRetriever{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRecommendEndpoint_IndexUnavailable(t *testing.T) {
	router := newTestRouter(&stubRetriever{err: domain.ErrIndexUnavailable}, nil)

	body := `{"query": "Java developer with SQL experience"}`
	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if resp.Code != codeServiceUnavailable {
		t.Errorf("code = %q, want %q", resp.Code, codeServiceUnavailable)
	}
}

func TestRecommendEndpoint_EmptyCatalog(t *testing.T) {
	router := newTestRouter(&stubRetriever{err: domain.ErrCatalogEmpty}, nil)

	body := `{"query": "Java developer with SQL experience"}`
	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubRetriever{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad health body: %v", err)
	}
	if resp.Status != string(healthuc.Healthy) {
		t.Errorf("status = %q, want %q", resp.Status, healthuc.Healthy)
	}
	if resp.CatalogSize != 2 {
		t.Errorf("catalog_size = %d, want 2", resp.CatalogSize)
	}
}

func TestHealthEndpoint_Unhealthy(t *testing.T) {
	router := newTestRouter(&stubRetriever{}, context.DeadlineExceeded)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(&stubRetriever{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad stats body: %v", err)
	}
	if resp.TotalAssessments != 2 {
		t.Errorf("total_assessments = %d, want 2", resp.TotalAssessments)
	}
	if resp.Status != "operational" {
		t.Errorf("status = %q, want operational", resp.Status)
	}
	if resp.ByCategory[domain.CategoryTechnical.DisplayName()] != 1 {
		t.Errorf("by_category = %v", resp.ByCategory)
	}
}
