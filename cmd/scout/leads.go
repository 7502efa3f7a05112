package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/FranksOps/scout/internal/lead"
	"github.com/FranksOps/scout/internal/storage"
	"github.com/spf13/cobra"
)

func newLeadsCmd() *cobra.Command {
	var (
		runID    string
		sub      string
		tag      string
		minScore int
		limit    int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "leads",
		Short: "List stored leads from previous discovery runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Storage.Backend == "none" {
				return fmt.Errorf("storage is disabled; nothing to list")
			}

			backend, err := buildBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer backend.Close()

			return listLeads(cmd.Context(), backend, storage.Filter{
				RunID:          runID,
				Subreddit:      sub,
				Tag:            lead.Tag(tag),
				MinOpportunity: minScore,
				Limit:          limit,
			}, asJSON)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "filter by run id")
	cmd.Flags().StringVar(&sub, "subreddit", "", "filter by subreddit")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by tag (DIRECT_LEAD or COMPETITOR_MENTION)")
	cmd.Flags().IntVar(&minScore, "min-score", 0, "minimum opportunity score")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum leads to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of a table")

	return cmd
}

func listLeads(ctx context.Context, backend storage.Backend, filter storage.Filter, asJSON bool) error {
	leads, err := backend.Query(ctx, filter)
	if err != nil {
		return fmt.Errorf("querying leads: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(leads)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tTAG\tSUBREDDIT\tTITLE\tURL")
	for _, l := range leads {
		title := l.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\tr/%s\t%s\t%s\n",
			l.OpportunityScore, l.Tag, l.Subreddit, title, l.URL)
	}
	return w.Flush()
}
