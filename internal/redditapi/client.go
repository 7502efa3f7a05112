package redditapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/FranksOps/scout/pkg/httpclient"
	"github.com/FranksOps/scout/pkg/ratelimit"
)

// ErrAuthentication marks credential bootstrap or verification failures. The
// orchestrator treats it as fatal for the whole run; everything else is a
// per-call transient.
var ErrAuthentication = errors.New("reddit authentication failed")

const (
	defaultBaseURL = "https://oauth.reddit.com"
	defaultAuthURL = "https://www.reddit.com/api/v1/access_token"

	searchTimeout = 15 * time.Second
	verifyTimeout = 15 * time.Second
	tokenTimeout  = 10 * time.Second
)

// Credential is the per-user OAuth material supplied by the account-linking
// collaborator.
type Credential struct {
	RefreshToken string
	ClientID     string
	ClientSecret string
}

// Empty reports whether the credential is unusable.
func (c Credential) Empty() bool {
	return strings.TrimSpace(c.RefreshToken) == "" || strings.TrimSpace(c.ClientID) == ""
}

// SearchParams describes one sub-search call.
type SearchParams struct {
	Query string
	// Subreddit restricts the search to one community. Empty searches the
	// whole platform.
	Subreddit string
	// Exclude lists communities filtered out of site-wide searches via
	// negative clauses. Ignored when Subreddit is set.
	Exclude  []string
	Strategy Strategy
	Limit    int
}

// Config sets up a Client.
type Config struct {
	Credential Credential
	// UserAgent identifies the app; Reddit requires a descriptive value.
	UserAgent string
	// BaseURL / AuthURL override the API endpoints, mainly for tests.
	BaseURL string
	AuthURL string
	// Monitor, when set, is incremented before every outbound call.
	Monitor *ratelimit.Monitor
	Logger  *slog.Logger
}

// Client talks to the Reddit search API over OAuth. Safe for concurrent use
// once the token is bootstrapped; Verify does the bootstrap.
type Client struct {
	cred    Credential
	http    *httpclient.Client
	baseURL string
	authURL string
	monitor *ratelimit.Monitor
	logger  *slog.Logger

	tokenMu sync.Mutex
	token   string
}

// New creates a Client. The credential must be present; its validity is only
// established by Verify.
func New(cfg Config) (*Client, error) {
	if cfg.Credential.Empty() {
		return nil, fmt.Errorf("%w: missing credential", ErrAuthentication)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = defaultAuthURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "scout-lead-discovery/1.0"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		cred: cfg.Credential,
		http: httpclient.New(httpclient.Config{
			Timeout:      searchTimeout,
			MaxRedirects: 3,
			UserAgent:    cfg.UserAgent,
		}),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		authURL: cfg.AuthURL,
		monitor: cfg.Monitor,
		logger:  cfg.Logger,
	}, nil
}

// Verify bootstraps the access token and runs a lightweight identity call.
// Any failure here means the credential is unusable and the run should abort.
func (c *Client) Verify(ctx context.Context) error {
	if err := c.ensureToken(ctx); err != nil {
		return err
	}

	vctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	c.record()
	if err := c.http.GetJSON(vctx, c.baseURL+"/api/v1/me", c.authHeader(), nil); err != nil {
		return fmt.Errorf("%w: identity check: %v", ErrAuthentication, err)
	}
	return nil
}

// Search executes one sub-search. Errors are per-call transients; the caller
// decides whether to count or swallow them.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]Post, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	sctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	q := p.Query
	endpoint := c.baseURL + "/search"
	vals := url.Values{}
	if p.Subreddit != "" {
		endpoint = fmt.Sprintf("%s/r/%s/search", c.baseURL, url.PathEscape(p.Subreddit))
		vals.Set("restrict_sr", "1")
	} else {
		// The API cannot OR-combine community filters, but it accepts
		// negative clauses for exclusion on site-wide searches.
		for _, sub := range p.Exclude {
			if sub = strings.TrimSpace(sub); sub != "" {
				q += " -subreddit:" + sub
			}
		}
	}
	vals.Set("q", q)
	vals.Set("type", "link")
	if p.Strategy.Sort != "" {
		vals.Set("sort", p.Strategy.Sort)
	}
	if p.Strategy.Time != "" {
		vals.Set("t", p.Strategy.Time)
	}
	if p.Limit > 0 {
		vals.Set("limit", strconv.Itoa(p.Limit))
	}

	var resp listing
	c.record()
	if err := c.http.GetJSON(sctx, endpoint+"?"+vals.Encode(), c.authHeader(), &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", p.Query, err)
	}

	posts := make([]Post, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// ensureToken exchanges the refresh token for an access token once per client.
func (c *Client) ensureToken(ctx context.Context) error {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" {
		return nil
	}

	tctx, cancel := context.WithTimeout(ctx, tokenTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.cred.RefreshToken)

	req, err := http.NewRequest(http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: building token request: %v", ErrAuthentication, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cred.ClientID, c.cred.ClientSecret)

	c.record()
	resp, err := c.http.Do(tctx, req)
	if err != nil {
		return fmt.Errorf("%w: token exchange: %v", ErrAuthentication, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: token endpoint returned %d", ErrAuthentication, resp.StatusCode)
	}

	var tok tokenResponse
	if err := decodeJSON(resp, &tok); err != nil {
		return fmt.Errorf("%w: decoding token: %v", ErrAuthentication, err)
	}
	if tok.Error != "" || tok.AccessToken == "" {
		return fmt.Errorf("%w: token rejected: %s", ErrAuthentication, tok.Error)
	}

	c.token = tok.AccessToken
	return nil
}

func (c *Client) authHeader() http.Header {
	c.tokenMu.Lock()
	token := c.token
	c.tokenMu.Unlock()

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

func decodeJSON(resp *http.Response, out any) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) record() {
	if c.monitor == nil {
		return
	}
	if n := c.monitor.Record(); n > 0 && n%100 == 0 {
		c.logger.Debug("outbound request volume",
			"window", c.monitor.Window(), "count", n)
	}
}
