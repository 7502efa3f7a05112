package storage

import (
	"context"
	"time"

	"github.com/FranksOps/scout/internal/lead"
)

// StoredLead is an enriched lead persisted after a discovery run, keyed by
// (run, post).
type StoredLead struct {
	lead.EnrichedLead
	RunID   string    `json:"run_id"`
	SavedAt time.Time `json:"saved_at"`
}

// Filter narrows Query results.
type Filter struct {
	RunID          string
	Subreddit      string
	Tag            lead.Tag
	MinOpportunity int
	Since          *time.Time
	Limit          int
	Offset         int
}

// Backend persists and queries discovered leads.
type Backend interface {
	Save(ctx context.Context, l *StoredLead) error
	Query(ctx context.Context, filter Filter) ([]*StoredLead, error)
	Close() error
}
