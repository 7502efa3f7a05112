package query

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/FranksOps/scout/internal/profile"
)

const (
	basePainPoints  = 8
	baseKeywords    = 6
	baseCompetitors = 4
)

// recencyPhrases are appended to time-qualified query copies at variation
// level > 0.
var recencyPhrases = []string{
	"recently",
	"this year",
	"right now",
	"lately",
}

// defaultJobTitles substitute when the profile supplies no customer titles, so
// "best <keyword> for <title>" queries are still emitted.
var defaultJobTitles = []string{
	"small teams",
	"freelancers",
	"startups",
	"small business",
}

// Generator derives search query strings from a BusinessProfile. Vocabulary
// sampling goes through a seeded rand source so runs can be replayed in tests.
type Generator struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// NewGenerator creates a Generator with the given seed. A nil logger falls
// back to slog.Default().
func NewGenerator(seed int64, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// Generate returns a deduplicated query set for the profile at the given
// variation level (0-2, clamped; higher = broader sampling). It never returns
// an empty set: empty vocabularies or an internal failure degrade to a small
// fallback derived from the business name.
func (g *Generator) Generate(p profile.BusinessProfile, level int) (queries []string) {
	if level < 0 {
		level = 0
	} else if level > 2 {
		level = 2
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("query generation failed, using fallback set", "panic", r)
			queries = Fallback(p)
		}
	}()

	set := newQuerySet()

	for _, pain := range g.sample(p.PainPoints, basePainPoints+2*level) {
		set.add(fmt.Sprintf("%q", pain))
		if level > 0 {
			set.add("struggling with " + pain)
			set.add("need help with " + pain)
		}
	}

	titles := p.JobTitles
	if len(titles) == 0 {
		titles = defaultJobTitles
	}
	for _, kw := range g.sample(p.SolutionKeywords, baseKeywords+2*level) {
		set.add(fmt.Sprintf("best %s for %s", kw, titles[g.rng.Intn(len(titles))]))
		set.add(kw)
		if level > 0 {
			set.add("need " + kw)
			set.add("looking for " + kw)
		}
	}

	for _, comp := range g.sample(p.Competitors, baseCompetitors+level) {
		set.add("alternative to " + comp)
		set.add(comp)
		if level > 0 {
			set.add(comp + " vs")
			set.add("better than " + comp)
		}
	}

	// Time-qualified copies roughly double the set at higher variation levels.
	if level > 0 {
		for _, q := range set.slice() {
			set.add(q + " " + recencyPhrases[g.rng.Intn(len(recencyPhrases))])
		}
	}

	queries = set.slice()
	if len(queries) == 0 {
		g.logger.Warn("profile vocabulary produced no queries, using fallback set",
			"business", p.BusinessName)
		return Fallback(p)
	}

	// A non-global geo focus replaces every query with its qualified variant.
	if !p.Global() {
		geo := strings.TrimSpace(p.GeoFocus)
		for i, q := range queries {
			queries[i] = q + " " + geo
		}
	}

	return queries
}

// Fallback is the minimal query set used when generation yields nothing. The
// pipeline must never receive zero queries.
func Fallback(p profile.BusinessProfile) []string {
	set := newQuerySet()
	name := strings.TrimSpace(p.BusinessName)
	for _, term := range []string{"help", "solution", "problem"} {
		if name != "" {
			set.add(name + " " + term)
		}
		set.add(term)
	}
	if name != "" {
		set.add(name)
	}
	return set.slice()
}

// sample returns up to n items chosen from vocab without replacement, in
// shuffled order. The source slice is not modified.
func (g *Generator) sample(vocab []string, n int) []string {
	cleaned := make([]string, 0, len(vocab))
	for _, v := range vocab {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	g.rng.Shuffle(len(cleaned), func(i, j int) {
		cleaned[i], cleaned[j] = cleaned[j], cleaned[i]
	})
	if len(cleaned) > n {
		cleaned = cleaned[:n]
	}
	return cleaned
}

// querySet collapses duplicates while preserving insertion order.
type querySet struct {
	seen  map[string]struct{}
	order []string
}

func newQuerySet() *querySet {
	return &querySet{seen: make(map[string]struct{})}
}

func (s *querySet) add(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}
	if _, ok := s.seen[q]; ok {
		return
	}
	s.seen[q] = struct{}{}
	s.order = append(s.order, q)
}

func (s *querySet) slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
