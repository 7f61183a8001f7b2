package matching

import "strings"

// Matcher computes the overlap ratio between a required term set and a
// possessed term set. It is an interface so the substring strategy can later
// be swapped for a smarter similarity measure without touching the pipeline.
type Matcher interface {
	// MatchRatio returns a value in [0, 1]: the fraction of required terms
	// that are satisfied by at least one possessed term. An empty required
	// set returns 1.0 — the absence of a requirement never penalizes a
	// candidate.
	MatchRatio(required, possessed []string) float64
}

// SubstringMatcher matches terms by case-insensitive bidirectional substring
// containment: a required term is satisfied when it contains a possessed
// term or a possessed term contains it. This tolerates phrasing differences
// such as "Infirmier" vs "Infirmier diplômé d'État".
type SubstringMatcher struct{}

// NewSubstringMatcher returns the default fuzzy matcher.
func NewSubstringMatcher() SubstringMatcher {
	return SubstringMatcher{}
}

// MatchRatio implements Matcher.
func (SubstringMatcher) MatchRatio(required, possessed []string) float64 {
	if len(required) == 0 {
		return 1.0
	}

	matched := 0
	for _, req := range required {
		r := strings.ToLower(strings.TrimSpace(req))
		if r == "" {
			// A blank requirement constrains nothing.
			matched++
			continue
		}
		for _, pos := range possessed {
			p := strings.ToLower(strings.TrimSpace(pos))
			if p == "" {
				continue
			}
			if strings.Contains(p, r) || strings.Contains(r, p) {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(len(required))
}
