package serprank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FranksOps/scout/internal/fingerprint"
	"github.com/FranksOps/scout/pkg/httpclient"
	"github.com/FranksOps/scout/pkg/useragent"
	"github.com/PuerkitoBio/goquery"
)

// ErrBlocked indicates the search engine served a challenge page instead of
// results. Callers should treat the ranking as unknown, not as "not ranked".
var ErrBlocked = errors.New("serp request blocked")

const (
	defaultBaseURL = "https://www.google.com/search"
	defaultTimeout = 10 * time.Second
	resultCount    = 20
)

// Config sets up a Checker.
type Config struct {
	// Fingerprint selects the TLS profile presented to the search engine.
	// Defaults to Chrome; tests use ProfileGo.
	Fingerprint fingerprint.Profile
	BaseURL     string
	Timeout     time.Duration
	Agents      *useragent.Pool
	Logger      *slog.Logger
}

// Checker verifies whether a lead's URL also ranks organically for a query.
// A hit is a strong independent corroboration signal for opportunity scoring.
type Checker struct {
	http    *httpclient.Client
	agents  *useragent.Pool
	baseURL string
	logger  *slog.Logger
}

// New creates a Checker.
func New(cfg Config) (*Checker, error) {
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Agents == nil {
		cfg.Agents = useragent.NewPool(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("setting up transport: %w", err)
	}

	return &Checker{
		http: httpclient.New(httpclient.Config{
			Timeout:      cfg.Timeout,
			MaxRedirects: 3,
			Transport:    transport,
		}),
		agents:  cfg.Agents,
		baseURL: cfg.BaseURL,
		logger:  cfg.Logger,
	}, nil
}

// IsRanked fetches one results page for query and reports whether targetURL
// appears among the organic links.
func (c *Checker) IsRanked(ctx context.Context, query, targetURL string) (bool, error) {
	vals := url.Values{}
	vals.Set("q", query)
	vals.Set("num", fmt.Sprint(resultCount))

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"?"+vals.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.agents.Next())
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return false, ErrBlocked
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("serp returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return false, fmt.Errorf("reading serp body: %w", err)
	}
	if isBlockPage(body) {
		return false, ErrBlocked
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return false, fmt.Errorf("parsing serp html: %w", err)
	}

	target := normalizeURL(targetURL)
	ranked := false
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if normalizeURL(unwrapRedirect(href)) == target {
			ranked = true
			return false
		}
		return true
	})

	return ranked, nil
}

// isBlockPage spots the engine's challenge markers in the response body.
func isBlockPage(body []byte) bool {
	text := strings.ToLower(string(body))
	return strings.Contains(text, "unusual traffic") ||
		strings.Contains(text, "recaptcha") ||
		strings.Contains(text, "/sorry/")
}

// unwrapRedirect extracts the destination from result links of the form
// /url?q=<dest>&sa=...
func unwrapRedirect(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if dest := u.Query().Get("q"); dest != "" {
		return dest
	}
	return href
}

// normalizeURL strips scheme, www, trailing slashes, and query noise so that
// equivalent links compare equal.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimRight(u.Path, "/")
	return host + path
}
