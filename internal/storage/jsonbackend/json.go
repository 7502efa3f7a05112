package jsonbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/FranksOps/scout/internal/storage"
)

// ensure jsonBackend implements storage.Backend
var _ storage.Backend = (*jsonBackend)(nil)

// jsonBackend persists leads as one JSON file per run. It is meant for
// local runs and debugging, not for concurrent writers on shared disks.
type jsonBackend struct {
	mu  sync.Mutex
	dir string
}

// New creates a JSON-file-backed storage.Backend rooted at dir.
func New(dir string) (storage.Backend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &jsonBackend{dir: dir}, nil
}

func (b *jsonBackend) runPath(runID string) string {
	return filepath.Join(b.dir, fmt.Sprintf("run_%s.json", runID))
}

func (b *jsonBackend) Save(ctx context.Context, l *storage.StoredLead) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	leads, err := b.readRun(l.RunID)
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range leads {
		if existing.ID == l.ID {
			leads[i] = l
			replaced = true
			break
		}
	}
	if !replaced {
		leads = append(leads, l)
	}

	return b.writeRun(l.RunID, leads)
}

func (b *jsonBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.StoredLead, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var leads []*storage.StoredLead
	if filter.RunID != "" {
		runLeads, err := b.readRun(filter.RunID)
		if err != nil {
			return nil, err
		}
		leads = runLeads
	} else {
		matches, err := filepath.Glob(filepath.Join(b.dir, "run_*.json"))
		if err != nil {
			return nil, fmt.Errorf("listing run files: %w", err)
		}
		for _, path := range matches {
			runLeads, err := b.readFile(path)
			if err != nil {
				return nil, err
			}
			leads = append(leads, runLeads...)
		}
	}

	var results []*storage.StoredLead
	for _, l := range leads {
		if filter.Subreddit != "" && l.Subreddit != filter.Subreddit {
			continue
		}
		if filter.Tag != "" && l.Tag != filter.Tag {
			continue
		}
		if filter.MinOpportunity > 0 && l.OpportunityScore < filter.MinOpportunity {
			continue
		}
		if filter.Since != nil && l.SavedAt.Before(*filter.Since) {
			continue
		}
		results = append(results, l)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].OpportunityScore != results[j].OpportunityScore {
			return results[i].OpportunityScore > results[j].OpportunityScore
		}
		return results[i].SavedAt.After(results[j].SavedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(results) {
			return nil, nil
		}
		results = results[filter.Offset:]
	}
	if filter.Limit > 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}

	return results, nil
}

func (b *jsonBackend) Close() error {
	return nil
}

func (b *jsonBackend) readRun(runID string) ([]*storage.StoredLead, error) {
	return b.readFile(b.runPath(runID))
}

func (b *jsonBackend) readFile(path string) ([]*storage.StoredLead, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var leads []*storage.StoredLead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return leads, nil
}

func (b *jsonBackend) writeRun(runID string, leads []*storage.StoredLead) error {
	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding leads: %w", err)
	}

	path := b.runPath(runID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
