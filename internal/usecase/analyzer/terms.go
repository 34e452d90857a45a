package analyzer

// Default vocabulary for category emphasis detection. The lists are
// heuristic: they catch common hiring-query phrasing, not every possible
// skill name. Callers with domain-specific catalogs can pass their own
// lists to NewWithTerms.
var (
	defaultTechnicalTerms = []string{
		"java", "python", "sql", "javascript", "programming", "coding",
		"technical", "developer", "engineer", "data", "software",
		"backend", "frontend", "devops", "cloud", "api",
	}

	defaultBehavioralTerms = []string{
		"communication", "leadership", "teamwork", "collaboration",
		"collaborate", "personality", "behavioral", "soft skill",
		"culture", "interpersonal", "stakeholder",
	}

	defaultCognitiveTerms = []string{
		"reasoning", "aptitude", "cognitive", "numerical",
		"verbal ability", "problem solving", "logical",
	}
)
