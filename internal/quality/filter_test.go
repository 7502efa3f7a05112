package quality

import (
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/scout/internal/lead"
)

var now = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func goodPost() lead.RawLead {
	return lead.RawLead{
		ID:          "abc",
		Title:       "Looking for a better way to track tasks",
		Body:        "Our team keeps dropping the ball on follow-ups.",
		CreatedUTC:  now.Add(-24 * time.Hour).Unix(),
		Score:       5,
		NumComments: 3,
	}
}

func TestKeep_GoodPost(t *testing.T) {
	f := New(now)
	if keep, reason := f.Keep(goodPost()); !keep {
		t.Fatalf("good post rejected: %s", reason)
	}
}

func TestKeep_AgeBoundary(t *testing.T) {
	f := New(now)
	cutoff := now.AddDate(-1, 0, 0)

	atCutoff := goodPost()
	atCutoff.CreatedUTC = cutoff.Unix()
	if keep, reason := f.Keep(atCutoff); !keep {
		t.Errorf("post exactly at cutoff rejected: %s", reason)
	}

	older := goodPost()
	older.CreatedUTC = cutoff.Unix() - 1
	if keep, _ := f.Keep(older); keep {
		t.Error("post one second older than cutoff was retained")
	}
}

func TestKeep_WeakEngagement(t *testing.T) {
	f := New(now)

	weak := goodPost()
	weak.Score = 0
	weak.NumComments = 1
	if keep, reason := f.Keep(weak); keep || reason != "weak_engagement" {
		t.Errorf("keep=%v reason=%q, want weak_engagement rejection", keep, reason)
	}

	// Either signal alone is enough to keep.
	scoreOnly := goodPost()
	scoreOnly.Score = 1
	scoreOnly.NumComments = 0
	if keep, _ := f.Keep(scoreOnly); !keep {
		t.Error("post with score 1 should pass engagement check")
	}

	commentsOnly := goodPost()
	commentsOnly.Score = 0
	commentsOnly.NumComments = 2
	if keep, _ := f.Keep(commentsOnly); !keep {
		t.Error("post with 2 comments should pass engagement check")
	}
}

func TestKeep_TitleBoundary(t *testing.T) {
	f := New(now)

	p := goodPost()
	p.Title = strings.Repeat("x", 15)
	if keep, _ := f.Keep(p); !keep {
		t.Error("15-char title rejected")
	}

	p.Title = strings.Repeat("x", 14)
	if keep, _ := f.Keep(p); keep {
		t.Error("14-char title retained")
	}

	p.Title = ""
	if keep, _ := f.Keep(p); keep {
		t.Error("missing title retained")
	}
}

func TestKeep_SpamPatterns(t *testing.T) {
	f := New(now)

	cases := []struct {
		title, body, wantReason string
	}{
		{"Looking for a job in marketing please", "", "spam:job_seeking"},
		{"Can someone review my resume for tech roles", "", "spam:resume_review"},
		{"Try our new productivity app today", "Sign up for a free trial now!", "spam:promo"},
	}
	for _, tc := range cases {
		p := goodPost()
		p.Title = tc.title
		if tc.body != "" {
			p.Body = tc.body
		}
		keep, reason := f.Keep(p)
		if keep || reason != tc.wantReason {
			t.Errorf("title %q: keep=%v reason=%q, want %q", tc.title, keep, reason, tc.wantReason)
		}
	}
}
