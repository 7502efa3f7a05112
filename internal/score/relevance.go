package score

import (
	"strings"

	"github.com/FranksOps/scout/internal/lead"
)

// relevanceThreshold is deliberately permissive: this gate favors recall, the
// opportunity scorer does the fine ranking later.
const relevanceThreshold = 25

var solutionSeekingPhrases = []string{
	"looking for",
	"recommendations",
	"recommend me",
	"what should i use",
	"any suggestions",
	"best tool for",
	"alternatives to",
}

var painPointPhrases = []string{
	"struggling with",
	"frustrated",
	"not working",
	"sick of",
	"tired of",
	"wasting time",
	"can't figure out",
}

var buyingIntentPhrases = []string{
	"budget",
	"pricing",
	"worth it",
	"worth paying",
	"how much does",
	"subscription",
}

var questionMarkers = []string{
	"?",
	"how do",
	"which",
}

var selfPromoPhrases = []string{
	"dm me",
	"follow me",
	"check out my",
	"link in bio",
}

// businessSubreddits are communities where commercial intent is common enough
// to be a signal by itself.
var businessSubreddits = map[string]struct{}{
	"entrepreneur":  {},
	"smallbusiness": {},
	"startups":      {},
	"saas":          {},
	"business":      {},
	"marketing":     {},
	"ecommerce":     {},
	"sidehustle":    {},
}

// generalSubreddits carry a weaker, discussion-level signal.
var generalSubreddits = map[string]struct{}{
	"askreddit":    {},
	"productivity": {},
	"technology":   {},
	"software":     {},
	"webdev":       {},
}

// Relevance is the outcome of the first-pass content scoring.
type Relevance struct {
	Score      int
	Reasons    []string
	IsRelevant bool
}

// ScoreRelevance scores a raw post against the business vocabulary. Signals
// are additive and independent; the final score is clamped to [0, 100].
// When the keyword list is empty, a few long words from the business
// description stand in so the scorer still has something to match.
func ScoreRelevance(l lead.RawLead, keywords []string, description string) Relevance {
	text := strings.ToLower(l.Title + " " + l.Body)
	if len(keywords) == 0 {
		keywords = termsFromDescription(description)
	}

	score := 0
	var reasons []string
	addSignal := func(points int, label string) {
		score += points
		reasons = append(reasons, label)
	}

	if containsAny(text, solutionSeekingPhrases) {
		addSignal(25, "solution_seeking")
	}
	if containsAny(text, painPointPhrases) {
		addSignal(20, "pain_point")
	}
	if containsAny(text, buyingIntentPhrases) {
		addSignal(20, "buying_intent")
	}

	exact, partial := keywordMatches(text, keywords)
	if exact > 0 {
		addSignal(10*exact, "keyword_match")
	}
	if partial > 0 {
		addSignal(5*partial, "partial_keyword_match")
	}

	if containsAny(text, questionMarkers) {
		addSignal(15, "question")
	}
	if l.NumComments >= 3 {
		addSignal(8, "active_discussion")
	}
	if l.UpvoteRatio >= 0.7 {
		addSignal(5, "well_received")
	}

	sub := strings.ToLower(l.Subreddit)
	if _, ok := businessSubreddits[sub]; ok {
		addSignal(8, "business_subreddit")
	} else if _, ok := generalSubreddits[sub]; ok {
		addSignal(3, "general_subreddit")
	}

	if len(l.Body) < 30 && len(l.Title) < 40 {
		addSignal(-10, "thin_content")
	}
	if containsAny(text, selfPromoPhrases) {
		addSignal(-20, "self_promotion")
	}

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	return Relevance{
		Score:      score,
		Reasons:    reasons,
		IsRelevant: score >= relevanceThreshold,
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// keywordMatches counts exact keyword hits and, for multi-word keywords,
// word-level partial hits. The text must already be lowercased.
func keywordMatches(text string, keywords []string) (exact, partial int) {
	for _, kw := range keywords {
		kwLower := strings.ToLower(strings.TrimSpace(kw))
		if kwLower == "" {
			continue
		}
		if strings.Contains(text, kwLower) {
			exact++
			continue
		}
		words := strings.Fields(kwLower)
		if len(words) < 2 {
			continue
		}
		for _, w := range words {
			if len(w) >= 4 && strings.Contains(text, w) {
				partial++
			}
		}
	}
	return exact, partial
}

// termsFromDescription extracts up to five distinct long words to use as
// fallback keywords.
func termsFromDescription(description string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(description)) {
		w = strings.Trim(w, ".,!?;:()\"'")
		if len(w) < 5 {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
		if len(terms) == 5 {
			break
		}
	}
	return terms
}
