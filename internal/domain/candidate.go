package domain

// IndexHit is a single nearest-neighbor match returned by the semantic index.
type IndexHit struct {
	ID         string
	Similarity float64
}

// Candidate references an assessment under consideration in the pipeline,
// carrying its retrieval similarity and, after reranking, a relevance score.
// Candidates flow through one request and are discarded at its end.
type Candidate struct {
	Assessment *Assessment
	// Similarity is the cosine similarity from retrieval, higher = closer.
	Similarity float64
	// Relevance is filled in by the contextual reranker; 0 until then.
	Relevance float64
	Reranked  bool
}

// Recommendation is the externally visible result: name and URL only.
// Derived from a Candidate at response-serialization time.
type Recommendation struct {
	Name string
	URL  string
}

// RecommendationFrom projects a candidate into its response shape.
func RecommendationFrom(c Candidate) Recommendation {
	return Recommendation{Name: c.Assessment.Name, URL: c.Assessment.URL}
}
