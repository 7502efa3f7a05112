package score

import (
	"testing"

	"github.com/FranksOps/scout/internal/lead"
)

func basePost() lead.RawLead {
	return lead.RawLead{
		ID:          "p1",
		Title:       "Looking for recommendations on project tooling",
		Body:        "We are a small agency and our current process is chaos. Any suggestions?",
		Subreddit:   "smallbusiness",
		NumComments: 5,
		UpvoteRatio: 0.85,
	}
}

func TestScoreRelevance_Signals(t *testing.T) {
	r := ScoreRelevance(basePost(), []string{"project tooling"}, "")

	if !r.IsRelevant {
		t.Errorf("expected relevant, score=%d reasons=%v", r.Score, r.Reasons)
	}
	for _, want := range []string{"solution_seeking", "keyword_match", "question", "active_discussion", "well_received", "business_subreddit"} {
		if !hasReason(r.Reasons, want) {
			t.Errorf("missing reason %q in %v", want, r.Reasons)
		}
	}
}

func TestScoreRelevance_KeywordMonotonicity(t *testing.T) {
	p := basePost()
	p.Body += " We also tried a few kanban board products."

	without := ScoreRelevance(p, []string{"project tooling"}, "")
	with := ScoreRelevance(p, []string{"project tooling", "kanban board"}, "")

	if with.Score < without.Score {
		t.Errorf("adding a matching keyword decreased score: %d -> %d", without.Score, with.Score)
	}
	if with.Score < 100 && with.Score == without.Score {
		t.Errorf("adding a matching keyword below the ceiling should increase score: %d", with.Score)
	}
}

func TestScoreRelevance_PartialKeywordMatch(t *testing.T) {
	p := lead.RawLead{
		Title: "Our invoice process takes forever every month",
		Body:  "Manually chasing invoice approvals across the whole team.",
	}

	// "invoice" (>=4 chars) from the multi-word keyword matches, the full
	// phrase does not.
	r := ScoreRelevance(p, []string{"invoice automation software"}, "")
	if !hasReason(r.Reasons, "partial_keyword_match") {
		t.Errorf("expected partial keyword match, reasons=%v", r.Reasons)
	}
	if hasReason(r.Reasons, "keyword_match") {
		t.Errorf("did not expect exact keyword match, reasons=%v", r.Reasons)
	}
}

func TestScoreRelevance_Penalties(t *testing.T) {
	thin := lead.RawLead{Title: "Quick question here", Body: "help?"}
	r := ScoreRelevance(thin, nil, "")
	if !hasReason(r.Reasons, "thin_content") {
		t.Errorf("expected thin_content penalty, reasons=%v", r.Reasons)
	}

	promo := basePost()
	promo.Body = "I built the perfect tool for this, dm me for access!"
	r = ScoreRelevance(promo, nil, "")
	if !hasReason(r.Reasons, "self_promotion") {
		t.Errorf("expected self_promotion penalty, reasons=%v", r.Reasons)
	}
}

func TestScoreRelevance_Clamped(t *testing.T) {
	p := basePost()
	p.Body += " struggling with pricing and budget decisions, frustrated with everything, worth it?"

	keywords := []string{"agency", "process", "chaos", "tooling", "project", "recommendations", "suggestions", "small", "budget", "pricing"}
	r := ScoreRelevance(p, keywords, "")
	if r.Score > 100 {
		t.Errorf("score %d exceeds ceiling", r.Score)
	}

	junk := lead.RawLead{Title: "hi", Body: "dm me"}
	r = ScoreRelevance(junk, nil, "")
	if r.Score < 0 {
		t.Errorf("score %d below floor", r.Score)
	}
	if r.IsRelevant {
		t.Error("junk post marked relevant")
	}
}

func TestScoreRelevance_DescriptionFallback(t *testing.T) {
	p := lead.RawLead{
		Title: "Anyone else drowning in spreadsheet chaos for client invoicing?",
		Body:  "Managing invoicing by hand is killing our accounting team.",
	}

	r := ScoreRelevance(p, nil, "Automated invoicing software for accounting teams")
	if !hasReason(r.Reasons, "keyword_match") {
		t.Errorf("expected description-derived keywords to match, reasons=%v", r.Reasons)
	}
}

func hasReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}
