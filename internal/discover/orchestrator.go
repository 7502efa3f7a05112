package discover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/FranksOps/scout/internal/lead"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/profile"
	"github.com/FranksOps/scout/internal/quality"
	"github.com/FranksOps/scout/internal/redditapi"
	"github.com/FranksOps/scout/pkg/ratelimit"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultChunkSize   = 10
	defaultTargetLeads = 2000
	defaultQueryLimit  = 100
	defaultChunkDelay  = 50 * time.Millisecond
	// minCommunityLimit keeps per-community searches from being starved when
	// a profile targets many communities.
	minCommunityLimit = 25
)

// Searcher is the slice of the platform client the orchestrator needs.
type Searcher interface {
	Verify(ctx context.Context) error
	Search(ctx context.Context, p redditapi.SearchParams) ([]redditapi.Post, error)
}

// Config tunes an Orchestrator. Zero values take defaults.
type Config struct {
	// ChunkSize is how many queries run concurrently per chunk.
	ChunkSize int
	// TargetLeads stops the run early once this many unique posts are
	// retained. Checked at chunk boundaries only.
	TargetLeads int
	// QueryLimit is the total result budget per query, split across target
	// communities.
	QueryLimit int
	// ChunkDelay paces consecutive chunks.
	ChunkDelay time.Duration
	Logger     *slog.Logger
}

// Diagnostics are observability counters for one run. They are not part of
// the functional contract.
type Diagnostics struct {
	RunID            string
	Attempted        int
	Succeeded        int
	Failed           int
	UniqueLeads      int
	QueriesRun       int
	ChunksRun        int
	EarlyTerminated  bool
	RequestsInWindow int
}

// Orchestrator executes query batches against the search API with bounded
// parallelism, deduplicates and quality-filters the results, and stops early
// once enough raw material has been gathered.
type Orchestrator struct {
	searcher Searcher
	monitor  *ratelimit.Monitor
	pacer    *ratelimit.Pacer
	cfg      Config
	logger   *slog.Logger
}

// New creates an Orchestrator. The monitor may be nil.
func New(searcher Searcher, monitor *ratelimit.Monitor, cfg Config) *Orchestrator {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.TargetLeads <= 0 {
		cfg.TargetLeads = defaultTargetLeads
	}
	if cfg.QueryLimit <= 0 {
		cfg.QueryLimit = defaultQueryLimit
	}
	if cfg.ChunkDelay <= 0 {
		cfg.ChunkDelay = defaultChunkDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Orchestrator{
		searcher: searcher,
		monitor:  monitor,
		pacer:    ratelimit.NewPacer(cfg.ChunkDelay, 0.2),
		cfg:      cfg,
		logger:   cfg.Logger,
	}
}

// Run executes all queries and returns the unique retained posts. Output
// order is not significant; callers sort.
//
// A missing or rejected credential aborts the run with an error satisfying
// errors.Is(err, redditapi.ErrAuthentication). Every other failure degrades:
// per-call errors are counted and contribute zero results, and a total outage
// yields an empty list with a nil error.
func (o *Orchestrator) Run(ctx context.Context, queries []string, p profile.BusinessProfile, blacklist []string) ([]lead.RawLead, Diagnostics, error) {
	diag := Diagnostics{RunID: uuid.New().String()}

	if o.searcher == nil {
		return nil, diag, fmt.Errorf("%w: no search client configured", redditapi.ErrAuthentication)
	}
	if err := o.searcher.Verify(ctx); err != nil {
		if !errors.Is(err, redditapi.ErrAuthentication) {
			err = fmt.Errorf("%w: connectivity check: %v", redditapi.ErrAuthentication, err)
		}
		return nil, diag, err
	}

	filter := quality.New(time.Now())
	collector := newCollector(filter, p.Competitors)
	communities := targetCommunities(p.TargetSubreddits, blacklist)

	logger := o.logger.With("run_id", diag.RunID)
	logger.Info("starting discovery run",
		"queries", len(queries),
		"communities", len(communities),
		"chunk_size", o.cfg.ChunkSize,
		"target", o.cfg.TargetLeads)

	for start := 0; start < len(queries); start += o.cfg.ChunkSize {
		end := start + o.cfg.ChunkSize
		if end > len(queries) {
			end = len(queries)
		}

		g, gCtx := errgroup.WithContext(ctx)
		for i, q := range queries[start:end] {
			index := start + i
			query := q
			g.Go(func() error {
				o.runQuery(gCtx, logger, collector, query, index, communities, blacklist)
				return nil // per-call errors never cancel siblings
			})
		}
		_ = g.Wait()

		diag.ChunksRun++
		diag.QueriesRun = end

		if collector.uniqueCount() >= o.cfg.TargetLeads {
			diag.EarlyTerminated = true
			logger.Info("lead target reached, terminating early",
				"unique", collector.uniqueCount(), "queries_run", end, "queries_total", len(queries))
			break
		}

		if end < len(queries) {
			if err := o.pacer.Wait(ctx); err != nil {
				break // run context canceled
			}
		}
	}

	leads := collector.leads()
	attempted, succeeded, failed := collector.counters()
	diag.Attempted, diag.Succeeded, diag.Failed = attempted, succeeded, failed
	diag.UniqueLeads = len(leads)
	if o.monitor != nil {
		diag.RequestsInWindow = o.monitor.Count()
	}

	if failed > succeeded {
		logger.Warn("search failures dominated this run",
			"failed", failed, "succeeded", succeeded)
	}
	logger.Info("discovery run finished",
		"unique_leads", len(leads),
		"attempted", attempted,
		"failed", failed,
		"early_terminated", diag.EarlyTerminated)

	return leads, diag, nil
}

// runQuery issues the sub-searches for one query: one per target community,
// or a single site-wide search with the blacklist as negative clauses.
func (o *Orchestrator) runQuery(ctx context.Context, logger *slog.Logger, c *collector, query string, index int, communities, blacklist []string) {
	strategy := redditapi.StrategyFor(index)

	if len(communities) == 0 {
		o.subSearch(ctx, logger, c, redditapi.SearchParams{
			Query:    query,
			Exclude:  blacklist,
			Strategy: strategy,
			Limit:    o.cfg.QueryLimit,
		}, "site")
		return
	}

	limit := o.cfg.QueryLimit / len(communities)
	if limit < minCommunityLimit {
		limit = minCommunityLimit
	}
	for _, sub := range communities {
		o.subSearch(ctx, logger, c, redditapi.SearchParams{
			Query:     query,
			Subreddit: sub,
			Strategy:  strategy,
			Limit:     limit,
		}, "subreddit")
	}
}

// subSearch executes a single call, isolating its failure from the batch.
func (o *Orchestrator) subSearch(ctx context.Context, logger *slog.Logger, c *collector, params redditapi.SearchParams, scope string) {
	start := time.Now()
	posts, err := o.searcher.Search(ctx, params)
	metrics.RecordSearch(scope, time.Since(start), err)
	if err != nil {
		c.recordFailure()
		logger.Debug("sub-search failed",
			"query", params.Query, "subreddit", params.Subreddit, "err", err)
		return
	}
	c.recordSuccess()
	for _, post := range posts {
		c.offer(post)
	}
}

// targetCommunities returns the profile's target list minus blacklisted
// entries, normalized.
func targetCommunities(targets, blacklist []string) []string {
	blocked := make(map[string]struct{}, len(blacklist))
	for _, b := range blacklist {
		blocked[strings.ToLower(strings.TrimSpace(b))] = struct{}{}
	}

	var out []string
	for _, t := range targets {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := blocked[strings.ToLower(t)]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// collector owns the dedup map and counters for a single run. It is not
// shared across runs.
type collector struct {
	mu          sync.Mutex
	filter      *quality.Filter
	competitors []string // lowercased, for tag assignment
	seen        map[string]struct{}
	retained    []lead.RawLead
	attempted   int
	succeeded   int
	failed      int
}

func newCollector(filter *quality.Filter, competitors []string) *collector {
	lowered := make([]string, 0, len(competitors))
	for _, c := range competitors {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			lowered = append(lowered, c)
		}
	}
	return &collector{
		filter:      filter,
		competitors: lowered,
		seen:        make(map[string]struct{}),
	}
}

// offer retains the post unless it was already seen or fails the quality
// filter. First sighting wins; later duplicates are skipped without
// re-validation.
func (c *collector) offer(post redditapi.Post) {
	raw := toRawLead(post)
	raw.Tag = c.tagFor(raw)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, dup := c.seen[raw.ID]; dup {
		return
	}
	c.seen[raw.ID] = struct{}{}

	if keep, reason := c.filter.Keep(raw); !keep {
		metrics.RecordRejection(reason)
		return
	}

	c.retained = append(c.retained, raw)
	metrics.LeadsRetainedTotal.Inc()
}

// tagFor marks posts that mention a competitor by name; everything else is a
// direct lead.
func (c *collector) tagFor(raw lead.RawLead) lead.Tag {
	text := strings.ToLower(raw.Title + " " + raw.Body)
	for _, comp := range c.competitors {
		if strings.Contains(text, comp) {
			return lead.TagCompetitorMention
		}
	}
	return lead.TagDirectLead
}

func (c *collector) recordSuccess() {
	c.mu.Lock()
	c.attempted++
	c.succeeded++
	c.mu.Unlock()
}

func (c *collector) recordFailure() {
	c.mu.Lock()
	c.attempted++
	c.failed++
	c.mu.Unlock()
}

func (c *collector) uniqueCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.retained)
}

func (c *collector) leads() []lead.RawLead {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]lead.RawLead, len(c.retained))
	copy(out, c.retained)
	return out
}

func (c *collector) counters() (attempted, succeeded, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempted, c.succeeded, c.failed
}

func toRawLead(p redditapi.Post) lead.RawLead {
	url := p.Permalink
	if url != "" && !strings.HasPrefix(url, "http") {
		url = "https://www.reddit.com" + url
	}
	return lead.RawLead{
		ID:          p.ID,
		Title:       p.Title,
		Author:      p.Author,
		Subreddit:   p.Subreddit,
		URL:         url,
		Body:        p.SelfText,
		CreatedUTC:  int64(p.CreatedUTC),
		NumComments: p.NumComments,
		Score:       p.Score,
		UpvoteRatio: p.UpvoteRatio,
		Tag:         lead.TagDirectLead,
	}
}
