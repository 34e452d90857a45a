// Package chi exposes the recommendation pipeline over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
	logpkg "github.com/skillmatch-cloud/skillmatch/internal/logger"
	healthuc "github.com/skillmatch-cloud/skillmatch/internal/usecase/health"
	recommenduc "github.com/skillmatch-cloud/skillmatch/internal/usecase/recommend"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest         = "bad_request"
	codeQueryTooShort      = "query_too_short"
	codeServiceUnavailable = "service_unavailable"
	codeEmbeddingProvider  = "embedding_provider_error"
	codeInternalError      = "internal_error"
	codeUnauthorized       = "unauthorized"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RecommendRequest is the POST /recommend body.
type RecommendRequest struct {
	Query string `json:"query"`
}

// RecommendationItem is one recommended assessment.
type RecommendationItem struct {
	AssessmentName string `json:"assessment_name"`
	AssessmentURL  string `json:"assessment_url"`
}

// RecommendResponse is the POST /recommend response body.
type RecommendResponse struct {
	Query           string               `json:"query"`
	Recommendations []RecommendationItem `json:"recommendations"`
	Count           int                  `json:"count"`
}

// HealthResponse is the GET /health response body.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	CatalogSize int               `json:"catalog_size"`
}

// StatsResponse is the GET /stats response body.
type StatsResponse struct {
	TotalAssessments int            `json:"total_assessments"`
	ByCategory       map[string]int `json:"by_category"`
	Status           string         `json:"status"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the recommendation and health services.
type Server struct {
	recommend     *recommenduc.Service
	health        *healthuc.Service
	catalog       *domain.Catalog
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recommend *recommenduc.Service,
	health *healthuc.Service,
	catalog *domain.Catalog,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommend: recommend,
		health:    health,
		catalog:   catalog,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrQueryTooShort, http.StatusBadRequest, codeQueryTooShort),
		sentinelHandler(domain.ErrCatalogEmpty, http.StatusServiceUnavailable, codeServiceUnavailable),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, codeServiceUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Routes registers the API handlers on a router.
func (s *Server) Routes(r chirouter.Router) {
	r.Post("/recommend", s.Recommend)
	r.Get("/health", s.Health)
	r.Get("/stats", s.Stats)
	r.Get("/metrics", s.Metrics)
}

// Recommend handles POST /recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	recs, err := s.recommend.Recommend(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]RecommendationItem, len(recs))
	for i, rec := range recs {
		items[i] = RecommendationItem{
			AssessmentName: rec.Name,
			AssessmentURL:  rec.URL,
		}
	}

	writeJSON(w, http.StatusOK, RecommendResponse{
		Query:           req.Query,
		Recommendations: items,
		Count:           len(items),
	})
}

// Health handles GET /health. Unhealthy reports 503 so load balancers can
// drain the instance.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, result := range report.Checks {
		checks[name] = string(result)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:      string(report.Status),
		Checks:      checks,
		CatalogSize: report.CatalogSize,
	})
}

// Stats handles GET /stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	byCategory := make(map[string]int, len(domain.Categories))
	for cat, n := range s.catalog.CountByCategory() {
		byCategory[cat.DisplayName()] = n
	}

	status := "operational"
	if s.catalog.Len() == 0 {
		status = "not_initialized"
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TotalAssessments: s.catalog.Len(),
		ByCategory:       byCategory,
		Status:           status,
	})
}

// Metrics handles GET /metrics (Prometheus exposition).
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrQueryTooShort,
		domain.ErrCatalogEmpty,
		domain.ErrIndexUnavailable,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Request-scoped logger carries the request_id set by the middleware
	logger := logpkg.FromContext(r.Context())
	logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
