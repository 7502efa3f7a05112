package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/FranksOps/scout/internal/config"
	"github.com/FranksOps/scout/internal/discover"
	"github.com/FranksOps/scout/internal/fingerprint"
	"github.com/FranksOps/scout/internal/lead"
	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/pipeline"
	"github.com/FranksOps/scout/internal/profile"
	"github.com/FranksOps/scout/internal/query"
	"github.com/FranksOps/scout/internal/redditapi"
	"github.com/FranksOps/scout/internal/report"
	"github.com/FranksOps/scout/internal/serprank"
	"github.com/FranksOps/scout/internal/storage"
	"github.com/FranksOps/scout/internal/storage/jsonbackend"
	"github.com/FranksOps/scout/internal/storage/postgres"
	"github.com/FranksOps/scout/internal/storage/sqlite"
	"github.com/FranksOps/scout/pkg/ratelimit"
	"github.com/spf13/cobra"
)

func newDiscoverCmd() *cobra.Command {
	var (
		profilePath string
		format      string
		outputPath  string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run a discovery pass for a business profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			p, err := loadProfile(profilePath)
			if err != nil {
				return err
			}

			return runDiscover(cmd.Context(), cfg, logger, p, format, outputPath)
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "business profile JSON file (required)")
	cmd.Flags().StringVar(&format, "format", "text", "report format: text, json, or html")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "report output file (default stdout)")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func runDiscover(ctx context.Context, cfg *config.Config, logger *slog.Logger, p profile.BusinessProfile, format, outputPath string) error {
	if cfg.Metrics.Enabled {
		srv := metrics.Start(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	monitor := ratelimit.NewMonitor(time.Minute)

	client, err := redditapi.New(redditapi.Config{
		Credential: redditapi.Credential{
			ClientID:     cfg.Reddit.ClientID,
			ClientSecret: cfg.Reddit.ClientSecret,
			RefreshToken: cfg.Reddit.RefreshToken,
		},
		UserAgent: cfg.Reddit.UserAgent,
		Monitor:   monitor,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("setting up reddit client: %w", err)
	}

	orch := discover.New(client, monitor, discover.Config{
		ChunkSize:   cfg.Search.ChunkSize,
		TargetLeads: cfg.Search.TargetLeads,
		QueryLimit:  cfg.Search.QueryLimit,
		ChunkDelay:  cfg.Search.ChunkDelay,
		Logger:      logger,
	})

	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		return err
	}
	if backend != nil {
		defer backend.Close()
	}

	var enricher pipeline.Enricher
	if cfg.Serp.Enabled {
		checker, err := serprank.New(serprank.Config{
			Fingerprint: fingerprint.Profile(cfg.Serp.Fingerprint),
			Logger:      logger,
		})
		if err != nil {
			return fmt.Errorf("setting up serp checker: %w", err)
		}
		enricher = &serpEnricher{checker: checker, logger: logger}
	}

	engine, err := pipeline.New(pipeline.Config{
		Generator:    query.NewGenerator(time.Now().UnixNano(), logger),
		Orchestrator: orch,
		Enricher:     enricher,
		Backend:      backend,
		QueryLevel:   cfg.Search.QueryLevel,
		Blacklist:    cfg.Search.Blacklist,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	res, err := engine.Run(ctx, p)
	if err != nil {
		return err
	}

	summary := report.GenerateSummary(res.Diagnostics, res.Leads, res.StartedAt, res.FinishedAt)
	return writeReport(summary, format, outputPath)
}

// serpEnricher fills in only the organic-ranking signal; intent and sentiment
// classification need an external collaborator not wired into the CLI.
type serpEnricher struct {
	checker *serprank.Checker
	logger  *slog.Logger
}

func (e *serpEnricher) Enrich(ctx context.Context, l lead.ScoredLead) (pipeline.Enrichment, error) {
	ranked, err := e.checker.IsRanked(ctx, l.Title, l.URL)
	if err != nil {
		return pipeline.Enrichment{}, fmt.Errorf("serp check for %s: %w", l.ID, err)
	}
	return pipeline.Enrichment{GoogleRanked: ranked}, nil
}

func buildBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return sqlite.New(cfg.Storage.DSN)
	case "postgres":
		return postgres.New(ctx, cfg.Storage.DSN)
	case "json":
		return jsonbackend.New(cfg.Storage.Dir)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func loadProfile(path string) (profile.BusinessProfile, error) {
	var p profile.BusinessProfile

	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading profile: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing profile: %w", err)
	}
	if p.BusinessName == "" {
		return p, fmt.Errorf("profile is missing business_name")
	}
	return p, nil
}

func writeReport(summary report.Summary, format, outputPath string) error {
	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		return report.WriteJSON(out, summary)
	case "html":
		return report.WriteHTML(out, summary)
	case "text":
		return report.WriteText(out, summary)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
