package domain

import "math"

// weightTolerance is the floating tolerance for the sum-to-one invariant.
const weightTolerance = 1e-9

// Weights holds per-category emphasis, non-negative and summing to 1.
type Weights struct {
	Technical  float64
	Behavioral float64
	Cognitive  float64
}

// Of returns the weight for a category.
func (w Weights) Of(c Category) float64 {
	switch c {
	case CategoryTechnical:
		return w.Technical
	case CategoryBehavioral:
		return w.Behavioral
	case CategoryCognitive:
		return w.Cognitive
	default:
		return 0
	}
}

// Valid reports whether all weights are non-negative and sum to 1
// within tolerance.
func (w Weights) Valid() bool {
	if w.Technical < 0 || w.Behavioral < 0 || w.Cognitive < 0 {
		return false
	}
	return math.Abs(w.Technical+w.Behavioral+w.Cognitive-1) < weightTolerance
}

// BaselineWeights is the documented default mix for ambiguous queries:
// 60% technical, 30% behavioral, 10% cognitive.
func BaselineWeights() Weights {
	return Weights{Technical: 0.6, Behavioral: 0.3, Cognitive: 0.1}
}

// TechnicalHeavyWeights is used when technical vocabulary dominates:
// 70% technical, 20% cognitive, 10% behavioral.
func TechnicalHeavyWeights() Weights {
	return Weights{Technical: 0.7, Behavioral: 0.1, Cognitive: 0.2}
}

// BehavioralHeavyWeights is used when behavioral vocabulary dominates:
// 70% behavioral, 20% cognitive, 10% technical.
func BehavioralHeavyWeights() Weights {
	return Weights{Technical: 0.1, Behavioral: 0.7, Cognitive: 0.2}
}

// QuerySignals carries the structural signals extracted from one query.
// Created per request and discarded when the request completes.
type QuerySignals struct {
	// MaxDurationMinutes is 0 when the query states no duration bound.
	MaxDurationMinutes int
	Weights            Weights
	SkillTerms         []string
}

// HasDurationBound reports whether the query stated a duration limit.
func (s QuerySignals) HasDurationBound() bool { return s.MaxDurationMinutes > 0 }
