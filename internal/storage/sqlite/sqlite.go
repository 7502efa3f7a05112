package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/FranksOps/scout/internal/lead"
	"github.com/FranksOps/scout/internal/storage"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements storage.Backend
var _ storage.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	run_id TEXT NOT NULL,
	post_id TEXT NOT NULL,
	title TEXT NOT NULL,
	author TEXT,
	subreddit TEXT,
	url TEXT,
	body TEXT,
	created_utc INTEGER NOT NULL,
	num_comments INTEGER NOT NULL,
	score INTEGER NOT NULL,
	upvote_ratio REAL NOT NULL,
	tag TEXT NOT NULL,
	relevance_score INTEGER NOT NULL,
	relevance_reasons TEXT NOT NULL,
	opportunity_score INTEGER NOT NULL,
	intent TEXT,
	sentiment TEXT,
	google_ranked BOOLEAN NOT NULL,
	author_karma INTEGER NOT NULL,
	saved_at DATETIME NOT NULL,
	PRIMARY KEY (run_id, post_id)
);
CREATE INDEX IF NOT EXISTS idx_leads_opportunity ON leads (opportunity_score DESC);
`

// New creates a new SQLite-backed storage.Backend.
func New(dsn string) (storage.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, l *storage.StoredLead) error {
	reasonsJSON, err := json.Marshal(l.RelevanceReasons)
	if err != nil {
		return fmt.Errorf("encoding reasons: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO leads (
		run_id, post_id, title, author, subreddit, url, body, created_utc,
		num_comments, score, upvote_ratio, tag, relevance_score,
		relevance_reasons, opportunity_score, intent, sentiment,
		google_ranked, author_karma, saved_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = b.db.ExecContext(ctx, query,
		l.RunID,
		l.ID,
		l.Title,
		l.Author,
		l.Subreddit,
		l.URL,
		l.Body,
		l.CreatedUTC,
		l.NumComments,
		l.Score,
		l.UpvoteRatio,
		string(l.Tag),
		l.RelevanceScore,
		string(reasonsJSON),
		l.OpportunityScore,
		string(l.Intent),
		string(l.Sentiment),
		l.GoogleRanked,
		l.AuthorKarma,
		l.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting lead %s: %w", l.ID, err)
	}

	return nil
}

func (b *sqliteBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.StoredLead, error) {
	query := `SELECT run_id, post_id, title, author, subreddit, url, body, created_utc,
		num_comments, score, upvote_ratio, tag, relevance_score, relevance_reasons,
		opportunity_score, intent, sentiment, google_ranked, author_karma, saved_at
	FROM leads WHERE 1=1`
	args := []any{}

	if filter.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, filter.RunID)
	}
	if filter.Subreddit != "" {
		query += ` AND subreddit = ?`
		args = append(args, filter.Subreddit)
	}
	if filter.Tag != "" {
		query += ` AND tag = ?`
		args = append(args, string(filter.Tag))
	}
	if filter.MinOpportunity > 0 {
		query += ` AND opportunity_score >= ?`
		args = append(args, filter.MinOpportunity)
	}
	if filter.Since != nil {
		query += ` AND saved_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY opportunity_score DESC, saved_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	defer rows.Close()

	var results []*storage.StoredLead
	for rows.Next() {
		var l storage.StoredLead
		var reasonsJSON, tag, intent, sentiment string

		err := rows.Scan(
			&l.RunID, &l.ID, &l.Title, &l.Author, &l.Subreddit, &l.URL, &l.Body,
			&l.CreatedUTC, &l.NumComments, &l.Score, &l.UpvoteRatio, &tag,
			&l.RelevanceScore, &reasonsJSON, &l.OpportunityScore, &intent,
			&sentiment, &l.GoogleRanked, &l.AuthorKarma, &l.SavedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning lead row: %w", err)
		}

		l.Tag = lead.Tag(tag)
		l.Intent = lead.Intent(intent)
		l.Sentiment = lead.Sentiment(sentiment)
		if err := json.Unmarshal([]byte(reasonsJSON), &l.RelevanceReasons); err != nil {
			return nil, fmt.Errorf("decoding reasons: %w", err)
		}

		results = append(results, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lead rows: %w", err)
	}

	return results, nil
}

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
