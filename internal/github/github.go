// SPDX-License-Identifier: MPL-2.0

// Package github resolves numeric GitHub user ids, which crux.land uses as
// registry user ids, to GitHub logins.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxJSONResponseBytes is the upper bound on JSON API response size (10 MB).
const maxJSONResponseBytes = 10 << 20

// ErrUserNotFound is returned when no GitHub user has the requested id.
var ErrUserNotFound = errors.New("github user not found")

type (
	// RateLimitError is returned when the GitHub API rate limit is exceeded.
	RateLimitError struct {
		Limit     int
		Remaining int
		ResetAt   time.Time
	}

	// Client queries the GitHub users API.
	Client struct {
		httpClient *http.Client
		baseURL    string // API base URL (default: "https://api.github.com", overridable for tests)
		token      string // Optional GITHUB_TOKEN for authenticated requests
		userAgent  string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)

	githubUser struct {
		Login string `json:"login"`
		ID    uint64 `json:"id"`
	}
)

// Error formats the rate limit details as a human-readable message.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded (%d remaining, resets at %s)",
		e.Remaining, e.ResetAt.UTC().Format("15:04 UTC"))
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *Client) {
		g.httpClient = c
	}
}

// WithBaseURL overrides the GitHub API base URL, primarily for test servers.
func WithBaseURL(base string) ClientOption {
	return func(g *Client) {
		g.baseURL = strings.TrimRight(base, "/")
	}
}

// WithToken sets a GitHub token for authenticated requests.
func WithToken(token string) ClientOption {
	return func(g *Client) {
		g.token = token
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(g *Client) {
		g.userAgent = ua
	}
}

// NewClient creates a Client. Defaults: baseURL="https://api.github.com",
// userAgent="crux/dev", httpClient=http.DefaultClient.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    "https://api.github.com",
		userAgent:  "crux/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login returns the GitHub login of the user with the given id.
func (c *Client) Login(ctx context.Context, id uint64) (string, error) {
	userURL := c.baseURL + "/user/" + strconv.FormatUint(id, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" && sameHost(req.URL, c.baseURL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("looking up user %d: %w", id, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if err := checkRateLimit(resp); err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("looking up user %d: unexpected status %d", id, resp.StatusCode)
	}

	var u githubUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&u); err != nil {
		return "", fmt.Errorf("looking up user %d: decoding response: %w", id, err)
	}
	if u.Login == "" {
		return "", fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	return u.Login, nil
}

// checkRateLimit returns a RateLimitError when X-RateLimit-Remaining is zero.
func checkRateLimit(resp *http.Response) error {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return nil
	}
	rem, err := strconv.Atoi(remaining)
	if err != nil || rem > 0 {
		return nil //nolint:nilerr // Non-numeric header is non-fatal.
	}

	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))                 //nolint:errcheck // Best-effort header parsing.
	resetUnix, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64) //nolint:errcheck // Best-effort header parsing.

	return &RateLimitError{
		Limit:     limit,
		Remaining: 0,
		ResetAt:   time.Unix(resetUnix, 0),
	}
}

// sameHost reports whether reqURL targets the configured API host, so the
// token is never sent elsewhere.
func sameHost(reqURL *url.URL, baseURL string) bool {
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(reqURL.Host, base.Host)
}
