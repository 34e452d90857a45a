package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure: recommendations still work or
	// degrade gracefully, but some component is down.
	Degraded Status = "degraded"
	// Unhealthy indicates the backing store is unusable and requests fail.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status      Status
	Checks      map[string]CheckResult
	CatalogSize int
}

// Service coordinates health checks.
type Service struct {
	db          DBPinger
	embedding   EmbeddingChecker
	index       IndexChecker
	catalogSize int
}

// New creates a Service. embedding and index can be nil.
func New(db DBPinger, embedding EmbeddingChecker, index IndexChecker, catalogSize int) *Service {
	return &Service{db: db, embedding: embedding, index: index, catalogSize: catalogSize}
}

// Check runs health checks against all components. Database or index
// failure is Unhealthy since retrieval cannot work without them; an
// embedding provider failure alone is Degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	if s.index != nil {
		if ok, err := s.index.Exists(ctx); err != nil || !ok {
			checks["index"] = CheckError
			status = Unhealthy
		} else {
			checks["index"] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["embedding"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks, CatalogSize: s.catalogSize}
}
