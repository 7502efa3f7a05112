package query

import (
	"strings"
	"testing"

	"github.com/FranksOps/scout/internal/profile"
)

func TestGenerate_KeywordBearingQueries(t *testing.T) {
	p := profile.BusinessProfile{
		BusinessName:     "TaskFlow",
		PainPoints:       []string{"losing track of tasks"},
		SolutionKeywords: []string{"task manager"},
		Competitors:      []string{"Trello"},
	}

	g := NewGenerator(1, nil)
	queries := g.Generate(p, 0)

	want := []string{
		`"losing track of tasks"`,
		"task manager",
		"alternative to Trello",
		"Trello",
	}
	for _, w := range want {
		if !contains(queries, w) {
			t.Errorf("expected query %q in %v", w, queries)
		}
	}

	foundBest := false
	for _, q := range queries {
		if strings.HasPrefix(q, "best task manager for ") {
			foundBest = true
		}
	}
	if !foundBest {
		t.Errorf("expected a 'best task manager for <title>' query in %v", queries)
	}
}

func TestGenerate_NoDuplicates(t *testing.T) {
	p := profile.BusinessProfile{
		BusinessName:     "TaskFlow",
		PainPoints:       []string{"losing track of tasks", "losing track of tasks"},
		SolutionKeywords: []string{"task manager"},
		Competitors:      []string{"Trello"},
		JobTitles:        []string{"project managers"},
	}

	g := NewGenerator(7, nil)
	queries := g.Generate(p, 2)

	seen := make(map[string]struct{}, len(queries))
	for _, q := range queries {
		if _, dup := seen[q]; dup {
			t.Errorf("duplicate query %q", q)
		}
		seen[q] = struct{}{}
	}
}

func TestGenerate_HigherLevelBroadens(t *testing.T) {
	p := profile.BusinessProfile{
		PainPoints:       []string{"slow deploys", "flaky tests", "manual releases"},
		SolutionKeywords: []string{"ci tool", "release automation"},
		Competitors:      []string{"Jenkins"},
		JobTitles:        []string{"devops engineers"},
	}

	g0 := NewGenerator(42, nil)
	g2 := NewGenerator(42, nil)

	n0 := len(g0.Generate(p, 0))
	n2 := len(g2.Generate(p, 2))
	if n2 <= n0 {
		t.Errorf("level 2 should produce more queries than level 0: got %d vs %d", n2, n0)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	p := profile.BusinessProfile{
		PainPoints:       []string{"a", "bb", "ccc", "dddd"},
		SolutionKeywords: []string{"x", "y"},
		JobTitles:        []string{"founders", "managers"},
	}

	a := NewGenerator(99, nil).Generate(p, 1)
	b := NewGenerator(99, nil).Generate(p, 1)
	if len(a) != len(b) {
		t.Fatalf("same seed produced different sizes: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestGenerate_EmptyVocabularyFallsBack(t *testing.T) {
	p := profile.BusinessProfile{BusinessName: "TaskFlow"}

	g := NewGenerator(3, nil)
	queries := g.Generate(p, 0)

	if len(queries) == 0 {
		t.Fatal("expected non-empty fallback query set")
	}
	if !contains(queries, "TaskFlow help") {
		t.Errorf("expected fallback to include business name queries, got %v", queries)
	}
}

func TestGenerate_GeoFocusQualifiesEveryQuery(t *testing.T) {
	p := profile.BusinessProfile{
		SolutionKeywords: []string{"payroll software"},
		JobTitles:        []string{"accountants"},
		GeoFocus:         "Canada",
	}

	g := NewGenerator(5, nil)
	for _, q := range g.Generate(p, 0) {
		if !strings.HasSuffix(q, " Canada") {
			t.Errorf("query %q is not geo-qualified", q)
		}
	}
}

func TestGenerate_GlobalFocusLeavesQueriesAlone(t *testing.T) {
	p := profile.BusinessProfile{
		SolutionKeywords: []string{"payroll software"},
		JobTitles:        []string{"accountants"},
		GeoFocus:         "global",
	}

	g := NewGenerator(5, nil)
	if !contains(g.Generate(p, 0), "payroll software") {
		t.Error("global focus should not rewrite queries")
	}
}

func contains(queries []string, want string) bool {
	for _, q := range queries {
		if q == want {
			return true
		}
	}
	return false
}
