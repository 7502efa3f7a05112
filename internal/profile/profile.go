package profile

import "strings"

// BusinessProfile describes the business a discovery run is prospecting for.
// It is treated as immutable for the duration of a run. All vocabulary slices
// may be empty; downstream query generation degrades to a fallback set rather
// than producing zero queries.
type BusinessProfile struct {
	BusinessName     string   `json:"business_name"`
	Description      string   `json:"description,omitempty"`
	ProblemStatement string   `json:"problem_statement,omitempty"`
	Solution         string   `json:"solution,omitempty"`
	PainPoints       []string `json:"pain_points,omitempty"`
	SolutionKeywords []string `json:"solution_keywords,omitempty"`
	Competitors      []string `json:"competitors,omitempty"`
	JobTitles        []string `json:"job_titles,omitempty"`
	// TargetSubreddits restricts searching to specific communities. Empty
	// means search the whole platform.
	TargetSubreddits []string `json:"target_subreddits,omitempty"`
	// GeoFocus narrows queries to a region. "global" or "" disables geo
	// qualification.
	GeoFocus string `json:"geo_focus,omitempty"`
}

// Global reports whether the profile has no geographic restriction.
func (p BusinessProfile) Global() bool {
	geo := strings.TrimSpace(strings.ToLower(p.GeoFocus))
	return geo == "" || geo == "global"
}

// KeywordTerms returns the combined keyword vocabulary used by the relevance
// scorer: solution keywords plus competitor names, trimmed, empties dropped.
func (p BusinessProfile) KeywordTerms() []string {
	terms := make([]string, 0, len(p.SolutionKeywords)+len(p.Competitors))
	for _, set := range [][]string{p.SolutionKeywords, p.Competitors} {
		for _, t := range set {
			if t = strings.TrimSpace(t); t != "" {
				terms = append(terms, t)
			}
		}
	}
	return terms
}
