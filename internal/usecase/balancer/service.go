// Package balancer reshapes a similarity-ordered candidate set to match the
// per-category emphasis extracted from the query, capped at the response
// upper bound, with the duration constraint applied as a soft preference.
package balancer

import (
	"math"
	"sort"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

// Service balances candidate sets. Stateless, safe for concurrent use.
type Service struct {
	cap int
	min int
}

// New creates a balancer. cap bounds the output size (the pre-rerank pool),
// min is the smallest result size below which the duration constraint is
// relaxed instead of enforced.
func New(cap, min int) *Service {
	return &Service{cap: cap, min: min}
}

// Balance returns at most cap candidates honoring the category mix as
// closely as integer rounding allows. Candidates must arrive in similarity
// order; each category keeps that order internally. Never fails: a
// degenerate input simply yields a short list.
func (s *Service) Balance(candidates []domain.Candidate, signals domain.QuerySignals) []domain.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	pools := partition(candidates)
	order := fillOrder(signals.Weights)

	taken := make(map[domain.Category]int, len(order))
	total := 0

	// Quota pass: each category takes up to round(weight*cap) of its best
	// candidates, clamped by availability and remaining slots.
	for _, cat := range order {
		quota := quotaFor(signals.Weights.Of(cat), s.cap, len(pools[cat]))
		n := minInt(quota, len(pools[cat]), s.cap-total)
		taken[cat] = n
		total += n
	}

	// Redistribution pass: hand unfilled slots to the highest-weight
	// category that still has unused candidates.
	for _, cat := range order {
		for total < s.cap && taken[cat] < len(pools[cat]) {
			taken[cat]++
			total++
		}
	}

	selected := make([]domain.Candidate, 0, total)
	for _, cat := range order {
		selected = append(selected, pools[cat][:taken[cat]]...)
	}

	if signals.HasDurationBound() {
		selected = s.applyDurationBound(selected, signals.MaxDurationMinutes)
	}

	return selected
}

// applyDurationBound drops items whose known duration exceeds the bound.
// If that would leave fewer than min items the constraint is relaxed and
// the unfiltered list is kept (soft preference, not a hard filter).
func (s *Service) applyDurationBound(selected []domain.Candidate, bound int) []domain.Candidate {
	filtered := make([]domain.Candidate, 0, len(selected))
	for _, c := range selected {
		if c.Assessment.HasKnownDuration() && c.Assessment.DurationMinutes > bound {
			continue
		}
		filtered = append(filtered, c)
	}

	if len(filtered) < s.min {
		return selected
	}
	return filtered
}

// partition splits candidates into per-category sublists, preserving the
// incoming similarity order.
func partition(candidates []domain.Candidate) map[domain.Category][]domain.Candidate {
	pools := make(map[domain.Category][]domain.Candidate, len(domain.Categories))
	for _, c := range candidates {
		cat := c.Assessment.Category
		pools[cat] = append(pools[cat], c)
	}
	return pools
}

// fillOrder returns categories by emphasis weight descending. Equal weights
// keep the canonical order: technical, behavioral, cognitive.
func fillOrder(w domain.Weights) []domain.Category {
	order := make([]domain.Category, len(domain.Categories))
	copy(order, domain.Categories)
	sort.SliceStable(order, func(i, j int) bool {
		return w.Of(order[i]) > w.Of(order[j])
	})
	return order
}

// quotaFor rounds the weighted share of the cap. A category whose weight
// rounds to zero still gets one slot when it has candidates available, so
// an ambiguous query never starves a whole category.
func quotaFor(weight float64, cap, available int) int {
	quota := int(math.Round(weight * float64(cap)))
	if quota == 0 && available > 0 && weight > 0 {
		quota = 1
	}
	return quota
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
