package redditapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/scout/pkg/ratelimit"
)

func testCredential() Credential {
	return Credential{RefreshToken: "refresh", ClientID: "id", ClientSecret: "secret"}
}

// newTestServer returns a server that speaks just enough of the OAuth + search
// protocol for the client, and records the search queries it saw.
func newTestServer(t *testing.T, listingJSON string) (*httptest.Server, *[]url.Values) {
	t.Helper()
	var seen []url.Values

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			http.Error(w, "missing basic auth", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"name":"tester"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "search") {
			http.NotFound(w, r)
			return
		}
		seen = append(seen, r.URL.Query())
		w.Write([]byte(listingJSON))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newTestClient(t *testing.T, srv *httptest.Server, monitor *ratelimit.Monitor) *Client {
	t.Helper()
	c, err := New(Config{
		Credential: testCredential(),
		BaseURL:    srv.URL,
		AuthURL:    srv.URL + "/api/v1/access_token",
		Monitor:    monitor,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

const sampleListing = `{"data":{"children":[
	{"data":{"id":"abc","title":"Need a task manager","author":"u1","subreddit":"productivity",
	 "permalink":"/r/productivity/comments/abc","selftext":"any recs?","created_utc":1700000000,
	 "num_comments":4,"score":10,"upvote_ratio":0.93}}
]}}`

func TestNew_MissingCredential(t *testing.T) {
	_, err := New(Config{})
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	srv, _ := newTestServer(t, sampleListing)
	c := newTestClient(t, srv, nil)

	if err := c.Verify(context.Background()); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerify_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		Credential: testCredential(),
		BaseURL:    srv.URL,
		AuthURL:    srv.URL + "/api/v1/access_token",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.Verify(context.Background()); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestSearch_SubredditScoped(t *testing.T) {
	srv, seen := newTestServer(t, sampleListing)
	c := newTestClient(t, srv, nil)

	posts, err := c.Search(context.Background(), SearchParams{
		Query:     "task manager",
		Subreddit: "productivity",
		Strategy:  Strategy{Sort: "new", Time: "month"},
		Limit:     25,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "abc" {
		t.Fatalf("unexpected posts: %+v", posts)
	}

	q := (*seen)[0]
	if q.Get("restrict_sr") != "1" {
		t.Error("subreddit search should set restrict_sr")
	}
	if q.Get("sort") != "new" || q.Get("t") != "month" || q.Get("limit") != "25" {
		t.Errorf("unexpected query params: %v", q)
	}
}

func TestSearch_SiteWideAppliesExclusions(t *testing.T) {
	srv, seen := newTestServer(t, sampleListing)
	c := newTestClient(t, srv, nil)

	if _, err := c.Search(context.Background(), SearchParams{
		Query:   "task manager",
		Exclude: []string{"jobs", "forhire"},
	}); err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := (*seen)[0].Get("q")
	if !strings.Contains(q, "-subreddit:jobs") || !strings.Contains(q, "-subreddit:forhire") {
		t.Errorf("exclusion clauses missing from query %q", q)
	}
}

func TestSearch_RecordsOnMonitor(t *testing.T) {
	srv, _ := newTestServer(t, sampleListing)
	monitor := ratelimit.NewMonitor(time.Minute)
	c := newTestClient(t, srv, monitor)

	if _, err := c.Search(context.Background(), SearchParams{Query: "x"}); err != nil {
		t.Fatalf("Search: %v", err)
	}

	// Token exchange + search = two outbound calls.
	if got := monitor.Count(); got != 2 {
		t.Errorf("monitor count = %d, want 2", got)
	}
}

func TestStrategyFor_RoundRobin(t *testing.T) {
	want := []Strategy{
		{Sort: "relevance", Time: "year"},
		{Sort: "new", Time: "month"},
		{Sort: "top", Time: "month"},
		{Sort: "relevance", Time: "year"},
	}
	for i, w := range want {
		if got := StrategyFor(i); got != w {
			t.Errorf("StrategyFor(%d) = %+v, want %+v", i, got, w)
		}
	}
}
