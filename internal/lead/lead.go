package lead

import "time"

// Tag classifies how a post was surfaced and which scoring multiplier applies.
type Tag string

const (
	TagDirectLead        Tag = "DIRECT_LEAD"
	TagCompetitorMention Tag = "COMPETITOR_MENTION"
)

// Intent is the classified posting intent of a direct lead. It is supplied by
// an external enrichment collaborator; IntentUnknown is the zero behavior.
type Intent string

const (
	IntentSolutionSeeking   Intent = "solution_seeking"
	IntentPainPoint         Intent = "pain_point"
	IntentBrandComparison   Intent = "brand_comparison"
	IntentGeneralDiscussion Intent = "general_discussion"
	IntentUnknown           Intent = ""
)

// Sentiment is the classified sentiment of a competitor mention.
type Sentiment string

const (
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentPositive Sentiment = "positive"
	SentimentUnknown  Sentiment = ""
)

// RawLead is a deduplicated post pulled from the platform during one discovery
// run. It lives only for the duration of the run; persistence applies to the
// enriched form.
type RawLead struct {
	// ID is the platform-native post identifier and the dedup key.
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	URL         string  `json:"url"`
	Body        string  `json:"body,omitempty"`
	CreatedUTC  int64   `json:"created_utc"`
	NumComments int     `json:"num_comments"`
	Score       int     `json:"score"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	Tag         Tag     `json:"tag"`
}

// CreatedAt converts the platform's unix timestamp to a time.Time.
func (r RawLead) CreatedAt() time.Time {
	return time.Unix(r.CreatedUTC, 0).UTC()
}

// ScoredLead is a RawLead that passed the relevance gate.
type ScoredLead struct {
	RawLead
	RelevanceScore int `json:"relevance_score"`
	// RelevanceReasons lists the signal labels that contributed, in the order
	// they were evaluated.
	RelevanceReasons []string `json:"relevance_reasons"`
}

// EnrichedLead carries the external enrichment signals used for final ranking.
type EnrichedLead struct {
	ScoredLead
	OpportunityScore int       `json:"opportunity_score"`
	Intent           Intent    `json:"intent,omitempty"`
	Sentiment        Sentiment `json:"sentiment,omitempty"`
	GoogleRanked     bool      `json:"google_ranked"`
	AuthorKarma      int       `json:"author_karma"`
}
