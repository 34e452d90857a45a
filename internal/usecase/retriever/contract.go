package retriever

import (
	"context"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index performs nearest-neighbor lookup over the assessment vectors.
type Index interface {
	Nearest(ctx context.Context, vector []float32, k int) ([]domain.IndexHit, error)
}
