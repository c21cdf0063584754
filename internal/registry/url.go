// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the API base of the public crux.land registry.
const DefaultBaseURL = "https://crux.land/api/"

// ErrInvalidBaseURL is returned when a base URL cannot be interpreted.
var ErrInvalidBaseURL = errors.New("invalid base URL")

// NormalizeBaseURL interprets raw as a registry API base. Host-only input
// such as "crux.land/api" is treated as https. The result keeps only the
// scheme, host and path, and always ends in a slash so that relative API
// paths resolve beneath it.
func NormalizeBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBaseURL)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidBaseURL, raw, err)
		}
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidBaseURL, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBaseURL, u.Scheme)
	}

	out := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}
	if !strings.HasSuffix(out.Path, "/") {
		out.Path += "/"
	}
	return out, nil
}

// ScriptURL returns the public URL of a script, which lives one level
// above the API base.
func ScriptURL(base *url.URL, scriptRef string) string {
	return base.ResolveReference(&url.URL{Path: "../" + strings.TrimPrefix(scriptRef, "/")}).String()
}

// AliasURL returns the public URL of a tagged alias.
func AliasURL(base *url.URL, alias, tag string) string {
	return base.ResolveReference(&url.URL{Path: "../" + alias + "@" + tag}).String()
}
