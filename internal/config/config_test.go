// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cruxland/crux/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.BaseURL != "https://crux.land/api/" {
		t.Errorf("expected default base URL, got %s", cfg.BaseURL)
	}
	if cfg.AuthDir != "~/.crux/auth" {
		t.Errorf("expected default auth dir, got %s", cfg.AuthDir)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.HTTP.Timeout)
	}
	if cfg.UI.Verbose || cfg.UI.Accessible {
		t.Error("expected verbose and accessible to be off by default")
	}
	if cfg.UI.Theme != ThemeDefault {
		t.Errorf("expected default theme, got %s", cfg.UI.Theme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected no config path, got %q", path)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := writeConfig(t, dir, `
base_url: "http://localhost:8080/api/"
http: timeout: "5s"
ui: {
	verbose: true
	theme:   "dracula"
}
`)

	cfg, path, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if cfg.BaseURL != "http://localhost:8080/api/" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("Timeout = %s, want 5s", cfg.HTTP.Timeout)
	}
	if !cfg.UI.Verbose || cfg.UI.Theme != ThemeDracula {
		t.Errorf("UI = %+v", cfg.UI)
	}
	if cfg.AuthDir != DefaultAuthDir {
		t.Errorf("unset AuthDir should keep default, got %q", cfg.AuthDir)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown theme", content: `ui: theme: "neon"`, want: "ui.theme"},
		{name: "wrong type", content: `ui: verbose: "yes"`, want: "ui.verbose"},
		{name: "bad duration", content: `http: timeout: "soon"`, want: "http.timeout"},
		{name: "unknown field", content: `colour: "red"`, want: "colour"},
		{name: "syntax error", content: `base_url: "unterminated`, want: "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, t.TempDir(), tt.content)

			_, _, err := Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err == nil {
				t.Fatal("expected an error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("expected *issue.ActionableError, got %T: %v", err, err)
			}
			if got := issue.IssueOf(err); got == nil || got.Id() != issue.ConfigLoadFailedId {
				t.Errorf("IssueOf = %v, want ConfigLoadFailedId", got)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, _, err := Load(context.Background(), LoadOptions{ConfigFilePath: missing})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("error = %v, want config file not found", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `base_url: "https://file.example/api/"`)

	t.Setenv("CRUX_BASE_URL", "https://env.example/api/")
	t.Setenv("CRUX_HTTP_TIMEOUT", "45s")
	t.Setenv("CRUX_UI_ACCESSIBLE", "true")

	cfg, _, err := Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "https://env.example/api/" {
		t.Errorf("env should override file, got %q", cfg.BaseURL)
	}
	if cfg.HTTP.Timeout != 45*time.Second {
		t.Errorf("Timeout = %s, want 45s", cfg.HTTP.Timeout)
	}
	if !cfg.UI.Accessible {
		t.Error("CRUX_UI_ACCESSIBLE should enable accessible mode")
	}
}

func TestLoad_EnvInvalidTheme(t *testing.T) {
	t.Setenv("CRUX_UI_THEME", "neon")

	_, _, err := Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	t.Parallel()

	src := DefaultConfig()
	src.BaseURL = "http://localhost:9000/api/"
	src.HTTP.Timeout = 90 * time.Second
	src.UI.Theme = ThemeCatppuccin
	src.UI.Verbose = true

	path := writeConfig(t, t.TempDir(), GenerateCUE(src))
	got, _, err := Load(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("generated config should load: %v", err)
	}
	if *got != *src {
		t.Errorf("round trip = %+v, want %+v", got, src)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	path, created, err := CreateDefaultConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created || path != filepath.Join(dir, "config.cue") {
		t.Errorf("CreateDefaultConfig() = %q, %v", path, created)
	}

	if _, created, err = CreateDefaultConfig(); err != nil || created {
		t.Errorf("second call should keep the existing file, created=%v err=%v", created, err)
	}

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("provider load: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("loaded %+v, want defaults", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.HTTP.Timeout = 0
	cfg.UI.Theme = "neon"
	cfg.BaseURL = " "

	err := cfg.Validate()
	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidConfigError, got %v", err)
	}
	if len(invalid.FieldErrors) != 3 {
		t.Errorf("expected 3 field errors, got %d: %v", len(invalid.FieldErrors), invalid.FieldErrors)
	}
	if !errors.Is(invalid.FieldErrors[2], ErrInvalidTheme) {
		t.Errorf("theme error should wrap ErrInvalidTheme: %v", invalid.FieldErrors[2])
	}
}
