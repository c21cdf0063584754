// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// ThemeDefault lets the prompt library pick its default theme.
	ThemeDefault Theme = "default"
	// ThemeCharm is the Charm theme.
	ThemeCharm Theme = "charm"
	// ThemeDracula is the Dracula theme.
	ThemeDracula Theme = "dracula"
	// ThemeCatppuccin is the Catppuccin theme.
	ThemeCatppuccin Theme = "catppuccin"
	// ThemeBase16 is the Base16 theme.
	ThemeBase16 Theme = "base16"
	// ThemeBase is the minimal base theme.
	ThemeBase Theme = "base"

	// DefaultBaseURL is the public crux.land API.
	DefaultBaseURL = "https://crux.land/api/"
	// DefaultAuthDir is where credentials are stored by default.
	DefaultAuthDir = "~/.crux/auth"
	// DefaultHTTPTimeout bounds a single registry request.
	DefaultHTTPTimeout = 30 * time.Second
)

var (
	// ErrInvalidTheme is returned when a Theme value is not recognized.
	ErrInvalidTheme = errors.New("invalid theme")
	// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// Theme names a prompt color theme.
	Theme string

	// Config is the crux configuration.
	Config struct {
		// BaseURL is the registry API base.
		BaseURL string `json:"base_url" mapstructure:"base_url"`
		// AuthDir holds one credential file per registry.
		AuthDir string `json:"auth_dir" mapstructure:"auth_dir"`
		// HTTP configures the registry HTTP client.
		HTTP HTTPConfig `json:"http" mapstructure:"http"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// HTTPConfig configures outgoing requests.
	HTTPConfig struct {
		Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	}

	// UIConfig configures prompts and logging.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Accessible forces plain-text prompts for screen readers.
		Accessible bool `json:"accessible" mapstructure:"accessible"`
		// Theme selects the prompt theme.
		Theme Theme `json:"theme" mapstructure:"theme"`
	}

	// InvalidConfigError collects every problem found by Config.Validate.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		AuthDir: DefaultAuthDir,
		HTTP: HTTPConfig{
			Timeout: DefaultHTTPTimeout,
		},
		UI: UIConfig{
			Theme: ThemeDefault,
		},
	}
}

func (t Theme) String() string { return string(t) }

// IsValid reports whether t is a known theme. The empty theme is treated as
// ThemeDefault.
func (t Theme) IsValid() bool {
	switch t {
	case "", ThemeDefault, ThemeCharm, ThemeDracula, ThemeCatppuccin, ThemeBase16, ThemeBase:
		return true
	default:
		return false
	}
}

// Validate checks constraints the CUE schema cannot see, such as values
// that arrived through environment variables.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("base_url must not be empty"))
	}
	if strings.TrimSpace(c.AuthDir) == "" {
		errs = append(errs, errors.New("auth_dir must not be empty"))
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout))
	}
	if !c.UI.Theme.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidTheme, c.UI.Theme))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }
