package serprank

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FranksOps/scout/internal/fingerprint"
)

const serpPage = `<html><body>
<div id="search">
  <a href="/url?q=https://www.reddit.com/r/startups/comments/abc&amp;sa=U">Need a task manager</a>
  <a href="https://example.com/blog/post">Some blog</a>
</div>
</body></html>`

func newTestChecker(t *testing.T, handler http.HandlerFunc) *Checker {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		Fingerprint: fingerprint.ProfileGo,
		BaseURL:     srv.URL + "/search",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestIsRanked_FindsWrappedLink(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			t.Error("missing query parameter")
		}
		w.Write([]byte(serpPage))
	})

	ranked, err := c.IsRanked(context.Background(), "task manager reddit",
		"https://reddit.com/r/startups/comments/abc/")
	if err != nil {
		t.Fatalf("IsRanked: %v", err)
	}
	if !ranked {
		t.Error("expected target URL to be found in results")
	}
}

func TestIsRanked_FindsDirectLink(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(serpPage))
	})

	ranked, err := c.IsRanked(context.Background(), "blog", "http://example.com/blog/post")
	if err != nil {
		t.Fatalf("IsRanked: %v", err)
	}
	if !ranked {
		t.Error("expected direct link to match")
	}
}

func TestIsRanked_NotFound(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(serpPage))
	})

	ranked, err := c.IsRanked(context.Background(), "anything", "https://other.com/page")
	if err != nil {
		t.Fatalf("IsRanked: %v", err)
	}
	if ranked {
		t.Error("unrelated URL should not be ranked")
	}
}

func TestIsRanked_BlockPage(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>Our systems have detected unusual traffic from your network.</html>`))
	})

	_, err := c.IsRanked(context.Background(), "q", "https://example.com")
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
}

func TestIsRanked_TooManyRequests(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.IsRanked(context.Background(), "q", "https://example.com")
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct{ a, b string }{
		{"https://www.reddit.com/r/x/", "http://reddit.com/r/x"},
		{"https://example.com/p", "example.com/p"},
	}
	for _, tc := range cases {
		if normalizeURL(tc.a) != normalizeURL(tc.b) {
			t.Errorf("normalizeURL(%q) != normalizeURL(%q): %q vs %q",
				tc.a, tc.b, normalizeURL(tc.a), normalizeURL(tc.b))
		}
	}
}
