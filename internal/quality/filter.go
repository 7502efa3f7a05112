package quality

import (
	"regexp"
	"strings"
	"time"

	"github.com/FranksOps/scout/internal/lead"
)

const (
	minTitleLen    = 15
	minScore       = 1
	minComments    = 2
	maxAge         = 1 // years
	rejectTooOld   = "too_old"
	rejectLowEng   = "weak_engagement"
	rejectTitle    = "short_title"
	rejectSpamBase = "spam:"
)

// spamPatterns reject posts that surface in keyword searches but never convert
// into opportunities: people looking for work, resume threads, promo spam.
var spamPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"job_seeking", regexp.MustCompile(`(?i)\b(looking for (a )?job|for hire|seeking (work|employment)|we'?re hiring|\[hiring\])`)},
	{"resume_review", regexp.MustCompile(`(?i)\b(review my (resume|cv)|resume (review|feedback)|rate my (resume|cv))\b`)},
	{"promo", regexp.MustCompile(`(?i)\b(free trial|promo code|discount code|use my (referral|affiliate) (link|code))\b`)},
}

// Filter is a synchronous predicate over a single raw post. The age cutoff is
// fixed when the filter is built, at the start of a discovery run.
type Filter struct {
	cutoff time.Time
}

// New builds a Filter whose cutoff is one year before now.
func New(now time.Time) *Filter {
	return &Filter{cutoff: now.AddDate(-maxAge, 0, 0)}
}

// Keep reports whether the post is worth retaining, with a short reason code
// when it is not. Checks are independent; the first failure rejects.
func (f *Filter) Keep(p lead.RawLead) (bool, string) {
	// A post created exactly at the cutoff is retained.
	if p.CreatedAt().Before(f.cutoff) {
		return false, rejectTooOld
	}

	if p.Score < minScore && p.NumComments < minComments {
		return false, rejectLowEng
	}

	if len(strings.TrimSpace(p.Title)) < minTitleLen {
		return false, rejectTitle
	}

	text := p.Title + " " + p.Body
	for _, sp := range spamPatterns {
		if sp.re.MatchString(text) {
			return false, rejectSpamBase + sp.name
		}
	}

	return true, ""
}

// Cutoff returns the filter's age cutoff, mainly for logging.
func (f *Filter) Cutoff() time.Time {
	return f.cutoff
}
