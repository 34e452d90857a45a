// Package analyzer extracts structural signals from raw query text:
// a duration bound and per-category emphasis weights. Pure heuristics,
// no I/O, never fails: absent signals degrade to baseline defaults.
package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/skillmatch-cloud/skillmatch/internal/domain"
)

// Duration patterns, most specific first. A range like "45-60 minutes"
// resolves to its midpoint; hours convert to minutes.
var (
	reDurationRange   = regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s*(?:minute|min)`)
	reDurationMinutes = regexp.MustCompile(`(\d+)\s*(?:minute|min)`)
	reDurationHours   = regexp.MustCompile(`(\d+)\s*(?:hour|hr)`)
)

// Service derives QuerySignals from query text.
type Service struct {
	technical  *regexp.Regexp
	behavioral *regexp.Regexp
	cognitive  *regexp.Regexp
}

// New creates an analyzer with the default vocabulary.
func New() *Service {
	return NewWithTerms(defaultTechnicalTerms, defaultBehavioralTerms, defaultCognitiveTerms)
}

// NewWithTerms creates an analyzer with custom vocabulary lists. Terms are
// matched case-insensitively on word boundaries, so "python" in "Python
// developer" matches but not inside "pythonic".
func NewWithTerms(technical, behavioral, cognitive []string) *Service {
	return &Service{
		technical:  compileTerms(technical),
		behavioral: compileTerms(behavioral),
		cognitive:  compileTerms(cognitive),
	}
}

// Analyze extracts a duration bound, emphasis weights, and matched skill
// terms from the query. Always returns valid signals.
func (s *Service) Analyze(query string) domain.QuerySignals {
	lower := strings.ToLower(query)

	hasTechnical := s.technical != nil && s.technical.MatchString(lower)
	hasBehavioral := s.behavioral != nil && s.behavioral.MatchString(lower)

	var weights domain.Weights
	switch {
	case hasTechnical && !hasBehavioral:
		weights = domain.TechnicalHeavyWeights()
	case hasBehavioral && !hasTechnical:
		weights = domain.BehavioralHeavyWeights()
	default:
		weights = domain.BaselineWeights()
	}

	return domain.QuerySignals{
		MaxDurationMinutes: parseDuration(lower),
		Weights:            weights,
		SkillTerms:         s.matchedTerms(lower),
	}
}

// parseDuration returns the stated duration bound in minutes, or 0 when the
// query states none.
func parseDuration(lower string) int {
	if m := reDurationRange.FindStringSubmatch(lower); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return (lo + hi) / 2
	}
	if m := reDurationMinutes.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := reDurationHours.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n * 60
	}
	return 0
}

// matchedTerms collects every vocabulary term present in the query, across
// all three lists, deduplicated in match order.
func (s *Service) matchedTerms(lower string) []string {
	var terms []string
	seen := make(map[string]bool)

	for _, re := range []*regexp.Regexp{s.technical, s.behavioral, s.cognitive} {
		if re == nil {
			continue
		}
		for _, m := range re.FindAllString(lower, -1) {
			if !seen[m] {
				seen[m] = true
				terms = append(terms, m)
			}
		}
	}
	return terms
}

// compileTerms builds one word-boundary alternation over the term list.
func compileTerms(terms []string) *regexp.Regexp {
	if len(terms) == 0 {
		return nil
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(t))
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
