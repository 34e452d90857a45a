package balancer

import (
	"testing"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

// makeCandidates builds n candidates of one category with descending
// similarity, IDs like "k-0", "k-1", ...
func makeCandidates(cat domain.Category, prefix string, n int, duration int) []domain.Candidate {
	out := make([]domain.Candidate, n)
	for i := 0; i < n; i++ {
		out[i] = domain.Candidate{
			Assessment: &domain.Assessment{
				ID:              prefix + "-" + string(rune('0'+i)),
				Name:            prefix,
				Category:        cat,
				DurationMinutes: duration,
			},
			Similarity: 1.0 - float64(i)*0.01,
		}
	}
	return out
}

func countByCategory(cands []domain.Candidate) map[domain.Category]int {
	counts := make(map[domain.Category]int)
	for _, c := range cands {
		counts[c.Assessment.Category]++
	}
	return counts
}

func TestBalance_BaselineMix(t *testing.T) {
	var input []domain.Candidate
	input = append(input, makeCandidates(domain.CategoryTechnical, "k", 10, 0)...)
	input = append(input, makeCandidates(domain.CategoryBehavioral, "p", 10, 0)...)
	input = append(input, makeCandidates(domain.CategoryCognitive, "c", 10, 0)...)

	svc := New(10, 5)
	got := svc.Balance(input, domain.QuerySignals{Weights: domain.BaselineWeights()})

	if len(got) != 10 {
		t.Fatalf("got %d candidates, want 10", len(got))
	}

	counts := countByCategory(got)
	if counts[domain.CategoryTechnical] != 6 {
		t.Errorf("technical = %d, want 6", counts[domain.CategoryTechnical])
	}
	if counts[domain.CategoryBehavioral] != 3 {
		t.Errorf("behavioral = %d, want 3", counts[domain.CategoryBehavioral])
	}
	if counts[domain.CategoryCognitive] != 1 {
		t.Errorf("cognitive = %d, want 1", counts[domain.CategoryCognitive])
	}

	// Technical block first, in similarity order
	if got[0].Assessment.Category != domain.CategoryTechnical {
		t.Errorf("first candidate category = %s, want technical", got[0].Assessment.Category)
	}
	if got[0].Similarity < got[1].Similarity {
		t.Error("technical block not in similarity order")
	}
}

func TestBalance_TechnicalHeavyMix(t *testing.T) {
	var input []domain.Candidate
	input = append(input, makeCandidates(domain.CategoryTechnical, "k", 10, 0)...)
	input = append(input, makeCandidates(domain.CategoryBehavioral, "p", 10, 0)...)
	input = append(input, makeCandidates(domain.CategoryCognitive, "c", 10, 0)...)

	svc := New(10, 5)
	got := svc.Balance(input, domain.QuerySignals{Weights: domain.TechnicalHeavyWeights()})

	counts := countByCategory(got)
	if counts[domain.CategoryTechnical] != 7 {
		t.Errorf("technical = %d, want 7", counts[domain.CategoryTechnical])
	}
	if counts[domain.CategoryCognitive] != 2 {
		t.Errorf("cognitive = %d, want 2", counts[domain.CategoryCognitive])
	}
	if counts[domain.CategoryBehavioral] != 1 {
		t.Errorf("behavioral = %d, want 1", counts[domain.CategoryBehavioral])
	}

	// Fill order is weight-descending: technical, then cognitive, then behavioral
	if got[7].Assessment.Category != domain.CategoryCognitive {
		t.Errorf("candidate[7] category = %s, want cognitive", got[7].Assessment.Category)
	}
	if got[9].Assessment.Category != domain.CategoryBehavioral {
		t.Errorf("candidate[9] category = %s, want behavioral", got[9].Assessment.Category)
	}
}

func TestBalance_RedistributesShortfall(t *testing.T) {
	// Only 2 technical available, baseline quota is 6: the shortfall goes to
	// behavioral (next-highest weight) before cognitive.
	var input []domain.Candidate
	input = append(input, makeCandidates(domain.CategoryTechnical, "k", 2, 0)...)
	input = append(input, makeCandidates(domain.CategoryBehavioral, "p", 10, 0)...)
	input = append(input, makeCandidates(domain.CategoryCognitive, "c", 10, 0)...)

	svc := New(10, 5)
	got := svc.Balance(input, domain.QuerySignals{Weights: domain.BaselineWeights()})

	if len(got) != 10 {
		t.Fatalf("got %d candidates, want 10", len(got))
	}

	counts := countByCategory(got)
	if counts[domain.CategoryTechnical] != 2 {
		t.Errorf("technical = %d, want 2", counts[domain.CategoryTechnical])
	}
	if counts[domain.CategoryBehavioral] != 7 {
		t.Errorf("behavioral = %d, want 7", counts[domain.CategoryBehavioral])
	}
	if counts[domain.CategoryCognitive] != 1 {
		t.Errorf("cognitive = %d, want 1", counts[domain.CategoryCognitive])
	}
}

func TestBalance_MinOneSlot(t *testing.T) {
	// With cap 4 the cognitive weight rounds to zero, but an available
	// candidate still earns one slot.
	var input []domain.Candidate
	input = append(input, makeCandidates(domain.CategoryTechnical, "k", 4, 0)...)
	input = append(input, makeCandidates(domain.CategoryBehavioral, "p", 4, 0)...)
	input = append(input, makeCandidates(domain.CategoryCognitive, "c", 4, 0)...)

	svc := New(4, 2)
	got := svc.Balance(input, domain.QuerySignals{Weights: domain.BaselineWeights()})

	counts := countByCategory(got)
	if counts[domain.CategoryCognitive] != 1 {
		t.Errorf("cognitive = %d, want 1", counts[domain.CategoryCognitive])
	}
	if len(got) != 4 {
		t.Errorf("got %d candidates, want 4", len(got))
	}
}

func TestBalance_DurationFilter(t *testing.T) {
	var input []domain.Candidate
	input = append(input, makeCandidates(domain.CategoryTechnical, "k", 6, 20)...)
	input = append(input, makeCandidates(domain.CategoryBehavioral, "p", 3, 60)...)
	input = append(input, makeCandidates(domain.CategoryCognitive, "c", 1, 20)...)

	svc := New(10, 5)
	got := svc.Balance(input, domain.QuerySignals{
		Weights:            domain.BaselineWeights(),
		MaxDurationMinutes: 30,
	})

	// 6 technical + 1 cognitive survive, behavioral items exceed the bound
	if len(got) != 7 {
		t.Fatalf("got %d candidates, want 7", len(got))
	}
	for _, c := range got {
		if c.Assessment.DurationMinutes > 30 {
			t.Errorf("candidate %s exceeds the duration bound", c.Assessment.ID)
		}
	}
}

func TestBalance_DurationConstraintRelaxed(t *testing.T) {
	// Enforcing the bound would leave 2 items (< min 5), so the constraint
	// is dropped and all candidates are retained.
	var input []domain.Candidate
	input = append(input, makeCandidates(domain.CategoryTechnical, "k", 2, 20)...)
	input = append(input, makeCandidates(domain.CategoryBehavioral, "p", 4, 60)...)

	svc := New(10, 5)
	got := svc.Balance(input, domain.QuerySignals{
		Weights:            domain.BaselineWeights(),
		MaxDurationMinutes: 30,
	})

	if len(got) != 6 {
		t.Fatalf("got %d candidates, want all 6 after relaxing the bound", len(got))
	}
}

func TestBalance_UnknownDurationPassesFilter(t *testing.T) {
	var input []domain.Candidate
	input = append(input, makeCandidates(domain.CategoryTechnical, "k", 5, 0)...)
	input = append(input, makeCandidates(domain.CategoryBehavioral, "p", 3, 90)...)

	svc := New(10, 5)
	got := svc.Balance(input, domain.QuerySignals{
		Weights:            domain.BaselineWeights(),
		MaxDurationMinutes: 30,
	})

	// Items with unknown duration are kept, only known violations drop
	if len(got) != 5 {
		t.Fatalf("got %d candidates, want 5", len(got))
	}
}

func TestBalance_DegenerateCatalog(t *testing.T) {
	input := makeCandidates(domain.CategoryTechnical, "k", 3, 0)

	svc := New(10, 5)
	got := svc.Balance(input, domain.QuerySignals{Weights: domain.BaselineWeights()})

	if len(got) != 3 {
		t.Fatalf("got %d candidates, want all 3", len(got))
	}
}

func TestBalance_EmptyInput(t *testing.T) {
	svc := New(10, 5)
	if got := svc.Balance(nil, domain.QuerySignals{Weights: domain.BaselineWeights()}); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}
