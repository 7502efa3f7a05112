package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/FranksOps/scout/internal/discover"
	"github.com/FranksOps/scout/internal/lead"
	"github.com/FranksOps/scout/internal/profile"
	"github.com/FranksOps/scout/internal/query"
	"github.com/FranksOps/scout/internal/score"
	"github.com/FranksOps/scout/internal/storage"
)

// Expander optionally rewrites or extends the statically generated query list,
// typically via an LLM. A failing expander degrades to the static queries.
type Expander interface {
	Expand(ctx context.Context, p profile.BusinessProfile, queries []string) ([]string, error)
}

// Enrichment carries the external classification signals for one lead.
type Enrichment struct {
	Intent       lead.Intent
	Sentiment    lead.Sentiment
	AuthorKarma  int
	GoogleRanked bool
}

// Enricher classifies a relevant lead. A failing enricher degrades to zero
// enrichment; the lead is still ranked on its engagement signals.
type Enricher interface {
	Enrich(ctx context.Context, l lead.ScoredLead) (Enrichment, error)
}

// Orchestrator is the search stage contract, satisfied by discover.Orchestrator.
type Orchestrator interface {
	Run(ctx context.Context, queries []string, p profile.BusinessProfile, blacklist []string) ([]lead.RawLead, discover.Diagnostics, error)
}

// Config assembles an Engine. Generator and Orchestrator are required;
// Expander, Enricher, and Backend are optional stages.
type Config struct {
	Generator    *query.Generator
	Orchestrator Orchestrator
	Expander     Expander
	Enricher     Enricher
	Backend      storage.Backend
	// QueryLevel controls how broad the generated query set is.
	QueryLevel int
	// Blacklist lists communities excluded from search and retention.
	Blacklist []string
	Logger    *slog.Logger
	// Now is injectable for tests.
	Now func() time.Time
}

// Result is the output of one full discovery run: ranked leads plus the run's
// diagnostics.
type Result struct {
	RunID       string
	Leads       []lead.EnrichedLead
	Diagnostics discover.Diagnostics
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Engine runs the full discovery flow: query generation, concurrent search,
// relevance gating, enrichment, opportunity ranking, and optional persistence.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("pipeline: query generator is required")
	}
	if cfg.Orchestrator == nil {
		return nil, fmt.Errorf("pipeline: search orchestrator is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{cfg: cfg, logger: cfg.Logger, now: cfg.Now}, nil
}

// Run executes one discovery run for the given profile. The returned leads are
// sorted by opportunity score, highest first.
func (e *Engine) Run(ctx context.Context, p profile.BusinessProfile) (Result, error) {
	started := e.now()

	queries := e.buildQueries(ctx, p)
	if len(queries) == 0 {
		return Result{}, fmt.Errorf("pipeline: no queries generated for %q", p.BusinessName)
	}

	raw, diag, err := e.cfg.Orchestrator.Run(ctx, queries, p, e.cfg.Blacklist)
	if err != nil {
		return Result{}, fmt.Errorf("search stage: %w", err)
	}

	logger := e.logger.With("run_id", diag.RunID)

	scored := e.gateRelevance(raw, p, logger)
	enriched := e.enrichAndRank(ctx, scored, logger)

	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].OpportunityScore > enriched[j].OpportunityScore
	})

	if e.cfg.Backend != nil {
		e.persist(ctx, diag.RunID, enriched, logger)
	}

	finished := e.now()
	logger.Info("pipeline run complete",
		"queries", len(queries),
		"raw_leads", len(raw),
		"relevant", len(scored),
		"duration", finished.Sub(started))

	return Result{
		RunID:       diag.RunID,
		Leads:       enriched,
		Diagnostics: diag,
		StartedAt:   started,
		FinishedAt:  finished,
	}, nil
}

// buildQueries generates the static query set and runs it through the
// optional expander. Expander failures are logged and ignored.
func (e *Engine) buildQueries(ctx context.Context, p profile.BusinessProfile) []string {
	queries := e.cfg.Generator.Generate(p, e.cfg.QueryLevel)

	if e.cfg.Expander == nil {
		return queries
	}

	expanded, err := e.cfg.Expander.Expand(ctx, p, queries)
	if err != nil {
		e.logger.Warn("query expansion failed, using static queries", "err", err)
		return queries
	}
	if len(expanded) == 0 {
		return queries
	}

	seen := make(map[string]struct{}, len(queries)+len(expanded))
	merged := make([]string, 0, len(queries)+len(expanded))
	for _, q := range append(queries, expanded...) {
		if _, dup := seen[q]; dup || q == "" {
			continue
		}
		seen[q] = struct{}{}
		merged = append(merged, q)
	}
	return merged
}

// gateRelevance drops leads scoring below the relevance threshold.
func (e *Engine) gateRelevance(raw []lead.RawLead, p profile.BusinessProfile, logger *slog.Logger) []lead.ScoredLead {
	keywords := p.KeywordTerms()

	var scored []lead.ScoredLead
	for _, r := range raw {
		rel := score.ScoreRelevance(r, keywords, p.Description)
		if !rel.IsRelevant {
			continue
		}
		scored = append(scored, lead.ScoredLead{
			RawLead:          r,
			RelevanceScore:   rel.Score,
			RelevanceReasons: rel.Reasons,
		})
	}

	logger.Info("relevance gate applied", "in", len(raw), "out", len(scored))
	return scored
}

// enrichAndRank applies the optional enricher to each relevant lead and
// computes the final opportunity score.
func (e *Engine) enrichAndRank(ctx context.Context, scored []lead.ScoredLead, logger *slog.Logger) []lead.EnrichedLead {
	now := e.now()
	enriched := make([]lead.EnrichedLead, 0, len(scored))
	enrichFailures := 0

	for _, s := range scored {
		var enr Enrichment
		if e.cfg.Enricher != nil {
			var err error
			enr, err = e.cfg.Enricher.Enrich(ctx, s)
			if err != nil {
				enrichFailures++
				enr = Enrichment{}
			}
		}

		opportunity := score.ScoreOpportunity(score.OpportunityInput{
			CreatedAt:    s.CreatedAt(),
			Now:          now,
			NumComments:  s.NumComments,
			UpvoteRatio:  s.UpvoteRatio,
			Tag:          s.Tag,
			Intent:       enr.Intent,
			Sentiment:    enr.Sentiment,
			GoogleRanked: enr.GoogleRanked,
			AuthorKarma:  enr.AuthorKarma,
		})

		enriched = append(enriched, lead.EnrichedLead{
			ScoredLead:       s,
			OpportunityScore: opportunity,
			Intent:           enr.Intent,
			Sentiment:        enr.Sentiment,
			GoogleRanked:     enr.GoogleRanked,
			AuthorKarma:      enr.AuthorKarma,
		})
	}

	if enrichFailures > 0 {
		logger.Warn("some leads ranked without enrichment", "failures", enrichFailures)
	}
	return enriched
}

// persist saves the ranked leads. Storage failures do not fail the run.
func (e *Engine) persist(ctx context.Context, runID string, leads []lead.EnrichedLead, logger *slog.Logger) {
	saved := 0
	savedAt := e.now().UTC()
	for _, l := range leads {
		err := e.cfg.Backend.Save(ctx, &storage.StoredLead{
			EnrichedLead: l,
			RunID:        runID,
			SavedAt:      savedAt,
		})
		if err != nil {
			logger.Warn("failed to persist lead", "post_id", l.ID, "err", err)
			continue
		}
		saved++
	}
	logger.Info("persisted leads", "saved", saved, "total", len(leads))
}
