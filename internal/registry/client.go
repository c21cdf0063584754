// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cruxland/crux/internal/fingerprint"
)

const (
	// maxJSONResponseBytes is the upper bound on JSON API response size (10 MB).
	maxJSONResponseBytes = 10 << 20

	// defaultTimeout bounds a single registry request.
	defaultTimeout = 30 * time.Second

	// existsPrefix and existsSuffix frame the id in the registry's duplicate
	// upload message: "File already exists (<id>)".
	existsPrefix = "File already exists ("
	existsSuffix = ")"
)

type (
	// Client talks to a crux.land compatible registry over HTTP.
	Client struct {
		httpClient *http.Client
		baseURL    *url.URL
		userAgent  string
		logger     *log.Logger
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)

	addRequest struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}

	listRequest struct {
		User uint64 `json:"user"`
	}

	aliasRequest struct {
		User   uint64 `json:"user"`
		Secret string `json:"secret"`
		Alias  string `json:"alias"`
	}

	releaseRequest struct {
		User   uint64 `json:"user"`
		Secret string `json:"secret"`
		Alias  string `json:"alias"`
		Tag    string `json:"tag"`
		Script string `json:"script"`
	}

	// responseBody is the union of the registry's JSON response shapes.
	responseBody struct {
		ID    *string `json:"id"`
		Error *string `json:"error"`
	}
)

// Compile-time check that Client satisfies Registry.
var _ Registry = (*Client)(nil)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *log.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewHTTPClient returns an HTTP client with the given timeout whose
// transport is instrumented for tracing.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// NewClient creates a Client for the registry API rooted at baseURL.
// baseURL is normalized with NormalizeBaseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	base, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:   base,
		userAgent: "crux/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = NewHTTPClient(defaultTimeout)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c, nil
}

// BaseURL returns the normalized API base.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Upload stores content under name. Identical content already stored by
// the registry is reported as an existing script rather than an error.
func (c *Client) Upload(ctx context.Context, name string, content []byte) (UploadResult, error) {
	const op = "upload content"

	c.logger.Debug("uploading", "name", name, "url", c.endpoint("add"), "fingerprint", fingerprint.Of(content))

	resp, err := c.post(ctx, "add", addRequest{
		Name:    name,
		Content: base64.StdEncoding.EncodeToString(content),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	body, err := c.decode(resp)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if body.Error != nil {
		if ref, ok := parseExisting(*body.Error); ok {
			return UploadResult{Created: false, ScriptRef: ref}, nil
		}
		return UploadResult{}, &Error{Op: op, Kind: ErrorKindRejected, Message: *body.Error, Status: resp.StatusCode}
	}
	if body.ID != nil && *body.ID != "" {
		return UploadResult{Created: true, ScriptRef: *body.ID}, nil
	}

	c.logger.Debug("unknown upload response", "status", resp.StatusCode)
	return UploadResult{}, fmt.Errorf("%s: %w: response carries neither id nor error", op, ErrTransport)
}

// List returns the aliases owned by user.
func (c *Client) List(ctx context.Context, user uint64) ([]Alias, error) {
	const op = "list aliases"

	resp, err := c.post(ctx, "alias/list", listRequest{User: user})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode != http.StatusOK || !isJSON(resp) {
		return nil, fmt.Errorf("%s: %w: unexpected status %d", op, ErrTransport, resp.StatusCode)
	}

	var aliases []Alias
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&aliases); err != nil {
		return nil, fmt.Errorf("%s: %w: decoding response: %w", op, ErrTransport, err)
	}
	for i := range aliases {
		if aliases[i].Tags == nil {
			aliases[i].Tags = map[string]string{}
		}
	}
	return aliases, nil
}

// Request claims alias for id.
func (c *Client) Request(ctx context.Context, id Identity, alias string) error {
	const op = "request alias"

	resp, err := c.post(ctx, "alias/request", aliasRequest{User: id.User, Secret: id.Secret, Alias: alias})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode == http.StatusCreated {
		return nil
	}
	return c.refusal(op, resp, ErrorKindAliasExists)
}

// Release binds tag of alias to scriptRef.
func (c *Client) Release(ctx context.Context, id Identity, alias, tag, scriptRef string) error {
	const op = "release tag"

	resp, err := c.post(ctx, "alias/release", releaseRequest{
		User:   id.User,
		Secret: id.Secret,
		Alias:  alias,
		Tag:    tag,
		Script: strings.TrimPrefix(scriptRef, "/"),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode == http.StatusCreated {
		return nil
	}
	return c.refusal(op, resp, ErrorKindConflict)
}

// refusal converts a non-success response into an error. Messages that
// report an existing resource, or a 409 status, are classified as
// existsKind; every other registry message is a rejection.
func (c *Client) refusal(op string, resp *http.Response, existsKind ErrorKind) error {
	body, err := c.decode(resp)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body.Error == nil {
		c.logger.Debug("unknown response", "op", op, "status", resp.StatusCode)
		return fmt.Errorf("%s: %w: unexpected status %d", op, ErrTransport, resp.StatusCode)
	}

	kind := ErrorKindRejected
	if resp.StatusCode == http.StatusConflict || strings.Contains(strings.ToLower(*body.Error), "already exists") {
		kind = existsKind
	}
	return &Error{Op: op, Kind: kind, Message: *body.Error, Status: resp.StatusCode}
}

// post sends payload as JSON to the API path and returns the raw response.
func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("request", "method", req.Method, "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return resp, nil
}

// decode reads a JSON error/id body. Non-JSON responses are transport
// failures since they did not come from the registry API.
func (c *Client) decode(resp *http.Response) (responseBody, error) {
	var body responseBody
	if !isJSON(resp) {
		return body, fmt.Errorf("%w: %q returned an invalid response (status %d)",
			ErrTransport, resp.Request.URL.String(), resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&body); err != nil {
		return body, fmt.Errorf("%w: decoding response: %w", ErrTransport, err)
	}
	return body, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

func isJSON(resp *http.Response) bool {
	mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return strings.Contains(resp.Header.Get("Content-Type"), "json")
	}
	return strings.Contains(mt, "json")
}

// parseExisting extracts the script reference from a duplicate upload
// message.
func parseExisting(msg string) (string, bool) {
	if !strings.HasPrefix(msg, existsPrefix) || !strings.HasSuffix(msg, existsSuffix) {
		return "", false
	}
	ref := msg[len(existsPrefix) : len(msg)-len(existsSuffix)]
	if ref == "" {
		return "", false
	}
	return ref, true
}

// IsTransport reports whether err is a transport failure rather than a
// registry refusal.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
