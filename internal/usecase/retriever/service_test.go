package retriever

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	vec []float32
	err error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockIndex struct {
	hits []domain.IndexHit
	err  error

	gotK int
}

func (m *mockIndex) Nearest(_ context.Context, _ []float32, k int) ([]domain.IndexHit, error) {
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

func testCatalog() *domain.Catalog {
	return domain.NewCatalog([]domain.Assessment{
		{ID: "a", Name: "A", Category: domain.CategoryTechnical},
		{ID: "b", Name: "B", Category: domain.CategoryBehavioral},
		{ID: "c", Name: "C", Category: domain.CategoryCognitive},
	})
}

// --- Tests ---

func TestRetrieve_OrdersBySimilarity(t *testing.T) {
	idx := &mockIndex{hits: []domain.IndexHit{
		{ID: "a", Similarity: 0.5},
		{ID: "b", Similarity: 0.9},
		{ID: "c", Similarity: 0.7},
	}}
	svc := New(&mockEmbedder{vec: []float32{0.1}}, idx, testCatalog(), 50, zap.NewNop())

	got, err := svc.Retrieve(context.Background(), "any query")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	if idx.gotK != 50 {
		t.Errorf("index k = %d, expected 50", idx.gotK)
	}

	want := []string{"b", "c", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].Assessment.ID != id {
			t.Errorf("candidate[%d] = %q, want %q", i, got[i].Assessment.ID, id)
		}
	}
}

func TestRetrieve_TiesBrokenByInsertionOrder(t *testing.T) {
	idx := &mockIndex{hits: []domain.IndexHit{
		{ID: "c", Similarity: 0.8},
		{ID: "a", Similarity: 0.8},
		{ID: "b", Similarity: 0.8},
	}}
	svc := New(&mockEmbedder{vec: []float32{0.1}}, idx, testCatalog(), 50, zap.NewNop())

	got, err := svc.Retrieve(context.Background(), "any query")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if got[i].Assessment.ID != id {
			t.Errorf("candidate[%d] = %q, want %q", i, got[i].Assessment.ID, id)
		}
	}
}

func TestRetrieve_EmptyCatalog(t *testing.T) {
	svc := New(&mockEmbedder{vec: []float32{0.1}}, &mockIndex{}, domain.NewCatalog(nil), 50, zap.NewNop())

	_, err := svc.Retrieve(context.Background(), "any query")
	if !errors.Is(err, domain.ErrCatalogEmpty) {
		t.Fatalf("expected ErrCatalogEmpty, got %v", err)
	}
}

func TestRetrieve_IndexUnavailable(t *testing.T) {
	idx := &mockIndex{err: domain.ErrIndexUnavailable}
	svc := New(&mockEmbedder{vec: []float32{0.1}}, idx, testCatalog(), 50, zap.NewNop())

	_, err := svc.Retrieve(context.Background(), "any query")
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestRetrieve_EmbedError(t *testing.T) {
	emb := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	svc := New(emb, &mockIndex{}, testCatalog(), 50, zap.NewNop())

	_, err := svc.Retrieve(context.Background(), "any query")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestRetrieve_SkipsUnknownIDs(t *testing.T) {
	idx := &mockIndex{hits: []domain.IndexHit{
		{ID: "a", Similarity: 0.9},
		{ID: "ghost", Similarity: 0.8},
	}}
	svc := New(&mockEmbedder{vec: []float32{0.1}}, idx, testCatalog(), 50, zap.NewNop())

	got, err := svc.Retrieve(context.Background(), "any query")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(got) != 1 || got[0].Assessment.ID != "a" {
		t.Errorf("expected only candidate a, got %v", got)
	}
}
