package analyzer

import (
	"testing"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

func TestAnalyze_Weights(t *testing.T) {
	svc := New()

	tests := []struct {
		name  string
		query string
		want  domain.Weights
	}{
		{
			"technical only",
			"Looking for a Java developer with strong SQL skills",
			domain.TechnicalHeavyWeights(),
		},
		{
			"behavioral only",
			"Need someone with great communication and leadership",
			domain.BehavioralHeavyWeights(),
		},
		{
			"both present",
			"Hiring Java developers who can also collaborate effectively",
			domain.BaselineWeights(),
		},
		{
			"neither present",
			"Looking for a great new hire for our office",
			domain.BaselineWeights(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Analyze(tt.query)
			if got.Weights != tt.want {
				t.Errorf("weights = %+v, want %+v", got.Weights, tt.want)
			}
			if !got.Weights.Valid() {
				t.Errorf("weights %+v do not sum to 1", got.Weights)
			}
		})
	}
}

func TestAnalyze_Duration(t *testing.T) {
	svc := New()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"minutes", "assessment under 30 minutes", 30},
		{"mins", "max 45 mins total", 45},
		{"hours", "should take about 1 hour", 60},
		{"range midpoint", "tests lasting 40-60 minutes", 50},
		{"no duration", "Java developer position", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Analyze(tt.query)
			if got.MaxDurationMinutes != tt.want {
				t.Errorf("duration = %d, want %d", got.MaxDurationMinutes, tt.want)
			}
			if (tt.want > 0) != got.HasDurationBound() {
				t.Errorf("HasDurationBound() = %v for duration %d", got.HasDurationBound(), tt.want)
			}
		})
	}
}

func TestAnalyze_WordBoundaries(t *testing.T) {
	svc := New()

	// "pythonic" must not trigger the "python" term
	got := svc.Analyze("We value pythonic cultures of thought")
	if got.Weights != domain.BaselineWeights() {
		t.Errorf("expected baseline weights, got %+v", got.Weights)
	}
}

func TestAnalyze_SkillTerms(t *testing.T) {
	svc := New()

	got := svc.Analyze("Java and Python developer, teamwork matters, java again")

	want := map[string]bool{"java": true, "python": true, "developer": true, "teamwork": true}
	if len(got.SkillTerms) != len(want) {
		t.Fatalf("terms = %v, want %d unique terms", got.SkillTerms, len(want))
	}
	for _, term := range got.SkillTerms {
		if !want[term] {
			t.Errorf("unexpected term %q", term)
		}
	}
}

func TestAnalyze_CustomTerms(t *testing.T) {
	svc := NewWithTerms([]string{"golang"}, []string{"empathy"}, nil)

	got := svc.Analyze("golang position")
	if got.Weights != domain.TechnicalHeavyWeights() {
		t.Errorf("expected technical-heavy weights, got %+v", got.Weights)
	}

	got = svc.Analyze("empathy first")
	if got.Weights != domain.BehavioralHeavyWeights() {
		t.Errorf("expected behavioral-heavy weights, got %+v", got.Weights)
	}
}
