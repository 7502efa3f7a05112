package score

import (
	"math"
	"time"

	"github.com/FranksOps/scout/internal/lead"
)

const (
	recencyWeight  = 0.40
	commentsWeight = 0.35
	upvoteWeight   = 0.25

	// halfLifeHours makes the recency component halve every 24 hours.
	halfLifeHours = 24.0
	decayConstant = 0.693 // ln 2

	karmaThreshold = 1000
	karmaBoost     = 1.05
	serpBoost      = 1.5
)

// sentimentMultipliers apply to competitor mentions. Negative sentiment about
// a competitor is the most actionable signal.
var sentimentMultipliers = map[lead.Sentiment]float64{
	lead.SentimentNegative: 2.0,
	lead.SentimentNeutral:  0.9,
	lead.SentimentPositive: 0.7,
}

// intentMultipliers apply to direct leads.
var intentMultipliers = map[lead.Intent]float64{
	lead.IntentSolutionSeeking:   1.5,
	lead.IntentPainPoint:         1.4,
	lead.IntentBrandComparison:   1.2,
	lead.IntentGeneralDiscussion: 0.8,
}

// OpportunityInput carries the enriched signals used for final ranking.
type OpportunityInput struct {
	CreatedAt   time.Time
	Now         time.Time
	NumComments int
	UpvoteRatio float64
	Tag         lead.Tag
	Intent      lead.Intent
	Sentiment   lead.Sentiment
	// GoogleRanked is set when the post independently ranks organically for a
	// relevant query.
	GoogleRanked bool
	AuthorKarma  int
}

// ScoreOpportunity returns the final ranking score, an integer in [0, 100].
func ScoreOpportunity(in OpportunityInput) int {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	hoursAgo := now.Sub(in.CreatedAt).Hours()
	if hoursAgo < 0 {
		hoursAgo = 0
	}
	recency := math.Exp(-decayConstant * hoursAgo / halfLifeHours)

	// Log compression saturates near 100 comments.
	comments := math.Log(1+float64(in.NumComments)) / math.Log(1+100)
	if comments > 1 {
		comments = 1
	}

	upvotes := in.UpvoteRatio
	if upvotes < 0 {
		upvotes = 0
	} else if upvotes > 1 {
		upvotes = 1
	}

	base := recency*recencyWeight + comments*commentsWeight + upvotes*upvoteWeight

	// Exactly one categorical multiplier applies, chosen by the lead tag.
	multiplier := 1.0
	switch in.Tag {
	case lead.TagCompetitorMention:
		if m, ok := sentimentMultipliers[in.Sentiment]; ok {
			multiplier = m
		}
	case lead.TagDirectLead:
		if m, ok := intentMultipliers[in.Intent]; ok {
			multiplier = m
		}
	}

	if in.GoogleRanked {
		multiplier *= serpBoost
	}
	if in.AuthorKarma > karmaThreshold {
		multiplier *= karmaBoost
	}

	final := int(math.Round(base * multiplier * 100))
	if final < 0 {
		final = 0
	} else if final > 100 {
		final = 100
	}
	return final
}
