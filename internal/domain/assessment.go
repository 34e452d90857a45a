package domain

import "fmt"

// KeyPrefix namespaces all Redis keys owned by skillmatch.
const KeyPrefix = "skillmatch:"

// Category classifies an assessment. The set is closed: SHL catalog test
// types map K (knowledge/technical), P (personality/behavioral),
// C (cognitive ability).
type Category string

const (
	// CategoryTechnical is knowledge and technical skills (code K).
	CategoryTechnical Category = "K"
	// CategoryBehavioral is personality and behavior (code P).
	CategoryBehavioral Category = "P"
	// CategoryCognitive is cognitive ability and reasoning (code C).
	CategoryCognitive Category = "C"
)

// Categories lists all categories in the canonical tie-break order:
// technical, then behavioral, then cognitive.
var Categories = []Category{CategoryTechnical, CategoryBehavioral, CategoryCognitive}

// ParseCategory converts a stored category code into a Category.
func ParseCategory(code string) (Category, error) {
	switch Category(code) {
	case CategoryTechnical, CategoryBehavioral, CategoryCognitive:
		return Category(code), nil
	default:
		return "", fmt.Errorf("unknown category code %q", code)
	}
}

// DisplayName returns a human-readable category name for prompts and stats.
func (c Category) DisplayName() string {
	switch c {
	case CategoryTechnical:
		return "Knowledge & Skills"
	case CategoryBehavioral:
		return "Personality & Behavior"
	case CategoryCognitive:
		return "Cognitive Ability"
	default:
		return string(c)
	}
}

// Assessment is a single catalog record. Records are created at
// catalog-build time and never mutated at query time.
type Assessment struct {
	ID          string
	Name        string
	URL         string
	Description string
	Category    Category
	// DurationMinutes is 0 when the catalog does not know the duration.
	DurationMinutes int
	Skills          []string
	// Seq is the catalog insertion order, used as the stable tie-break
	// when similarity scores are equal.
	Seq int
}

// HasKnownDuration reports whether the catalog recorded a duration.
func (a *Assessment) HasKnownDuration() bool { return a.DurationMinutes > 0 }

// Document composes the text representation used for embedding, combining
// name, description, category and measured skills into one searchable string.
func (a *Assessment) Document() string {
	doc := "Assessment: " + a.Name
	if a.Description != "" {
		doc += " | Description: " + a.Description
	}
	doc += " | Type: " + a.Category.DisplayName()
	if len(a.Skills) > 0 {
		doc += " | Measures: "
		for i, s := range a.Skills {
			if i > 0 {
				doc += ", "
			}
			doc += s
		}
	}
	if a.HasKnownDuration() {
		doc += fmt.Sprintf(" | Duration: %d minutes", a.DurationMinutes)
	}
	return doc
}
