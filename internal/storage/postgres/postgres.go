package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FranksOps/scout/internal/lead"
	"github.com/FranksOps/scout/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure postgresBackend implements storage.Backend
var _ storage.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
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
	created_utc BIGINT NOT NULL,
	num_comments INTEGER NOT NULL,
	score INTEGER NOT NULL,
	upvote_ratio DOUBLE PRECISION NOT NULL,
	tag TEXT NOT NULL,
	relevance_score INTEGER NOT NULL,
	relevance_reasons JSONB NOT NULL,
	opportunity_score INTEGER NOT NULL,
	intent TEXT,
	sentiment TEXT,
	google_ranked BOOLEAN NOT NULL,
	author_karma INTEGER NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, post_id)
);
CREATE INDEX IF NOT EXISTS idx_leads_opportunity ON leads (opportunity_score DESC);
`

// New creates a new Postgres-backed storage.Backend.
func New(ctx context.Context, dsn string) (storage.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, l *storage.StoredLead) error {
	reasonsJSON, err := json.Marshal(l.RelevanceReasons)
	if err != nil {
		return fmt.Errorf("encoding reasons: %w", err)
	}

	query := `
	INSERT INTO leads (
		run_id, post_id, title, author, subreddit, url, body, created_utc,
		num_comments, score, upvote_ratio, tag, relevance_score,
		relevance_reasons, opportunity_score, intent, sentiment,
		google_ranked, author_karma, saved_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	ON CONFLICT (run_id, post_id) DO UPDATE SET
		opportunity_score = EXCLUDED.opportunity_score,
		intent = EXCLUDED.intent,
		sentiment = EXCLUDED.sentiment,
		google_ranked = EXCLUDED.google_ranked,
		author_karma = EXCLUDED.author_karma,
		saved_at = EXCLUDED.saved_at
	`

	_, err = b.pool.Exec(ctx, query,
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
		reasonsJSON,
		l.OpportunityScore,
		string(l.Intent),
		string(l.Sentiment),
		l.GoogleRanked,
		l.AuthorKarma,
		l.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting lead %s: %w", l.ID, err)
	}

	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.StoredLead, error) {
	query := `SELECT run_id, post_id, title, author, subreddit, url, body, created_utc,
		num_comments, score, upvote_ratio, tag, relevance_score, relevance_reasons,
		opportunity_score, intent, sentiment, google_ranked, author_karma, saved_at
	FROM leads WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.RunID != "" {
		query += fmt.Sprintf(` AND run_id = $%d`, paramCount)
		args = append(args, filter.RunID)
		paramCount++
	}
	if filter.Subreddit != "" {
		query += fmt.Sprintf(` AND subreddit = $%d`, paramCount)
		args = append(args, filter.Subreddit)
		paramCount++
	}
	if filter.Tag != "" {
		query += fmt.Sprintf(` AND tag = $%d`, paramCount)
		args = append(args, string(filter.Tag))
		paramCount++
	}
	if filter.MinOpportunity > 0 {
		query += fmt.Sprintf(` AND opportunity_score >= $%d`, paramCount)
		args = append(args, filter.MinOpportunity)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND saved_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY opportunity_score DESC, saved_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
		paramCount++
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	defer rows.Close()

	var results []*storage.StoredLead
	for rows.Next() {
		var l storage.StoredLead
		var reasonsJSON []byte
		var tag, intent, sentiment string

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
		if err := json.Unmarshal(reasonsJSON, &l.RelevanceReasons); err != nil {
			return nil, fmt.Errorf("decoding reasons: %w", err)
		}

		results = append(results, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lead rows: %w", err)
	}

	return results, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
