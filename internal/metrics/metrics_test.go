package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestMetricsServer(t *testing.T) {
	srv := Start(8899)
	// Give it a tiny bit of time to start up
	time.Sleep(100 * time.Millisecond)

	defer srv.Stop(context.Background())

	RecordSearch("subreddit", 800*time.Millisecond, nil)
	RecordSearch("site", 2*time.Second, errors.New("timeout"))
	RecordRejection("short_title")
	LeadsRetainedTotal.Inc()

	resp, err := http.Get("http://localhost:8899/metrics")
	if err != nil {
		t.Fatalf("failed to fetch metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	output := string(body)

	for _, want := range []string{
		`scout_search_requests_total{outcome="ok",scope="subreddit"}`,
		`scout_search_requests_total{outcome="error",scope="site"}`,
		"scout_search_duration_seconds_bucket",
		`scout_leads_rejected_total{reason="short_title"}`,
		"scout_leads_retained_total",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected metric %s in output", want)
		}
	}
}
