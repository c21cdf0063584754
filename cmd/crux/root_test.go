// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cruxland/crux/internal/auth"
	"github.com/cruxland/crux/internal/registry"
	"github.com/cruxland/crux/internal/registry/registrytest"
	"github.com/cruxland/crux/internal/testutil"
	"github.com/cruxland/crux/internal/tui"
)

const testBaseURL = "https://crux.land/api/"

type (
	// testEnv is an App wired to an in-memory registry with captured output.
	testEnv struct {
		app     *App
		reg     *registrytest.Memory
		prompts *scriptedPrompts
		authDir string
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
	}

	// scriptedPrompts answers prompts from fixed queues and records every
	// title it was asked.
	scriptedPrompts struct {
		mu       sync.Mutex
		confirms []bool
		inputs   []string
		titles   []string
	}

	loginFunc func(ctx context.Context, id uint64) (string, error)
)

func (f loginFunc) Login(ctx context.Context, id uint64) (string, error) { return f(ctx, id) }

func (s *scriptedPrompts) Confirm(_ context.Context, opts tui.ConfirmOptions) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, opts.Title)
	if len(s.confirms) == 0 {
		return false, fmt.Errorf("unexpected confirm %q", opts.Title)
	}
	answer := s.confirms[0]
	s.confirms = s.confirms[1:]
	return answer, nil
}

func (s *scriptedPrompts) Input(_ context.Context, opts tui.InputOptions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, opts.Title)
	if len(s.inputs) == 0 {
		return "", fmt.Errorf("unexpected input %q", opts.Title)
	}
	answer := s.inputs[0]
	s.inputs = s.inputs[1:]
	if opts.Validate != nil {
		if err := opts.Validate(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func (s *scriptedPrompts) asked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.titles...)
}

// newTestEnv builds an App backed by a fresh registrytest.Memory, a
// temporary config directory and a temporary credential directory.
func newTestEnv(t *testing.T, logins LoginLookup) *testEnv {
	t.Helper()

	env := &testEnv{
		reg:     registrytest.New(),
		prompts: &scriptedPrompts{},
		authDir: t.TempDir(),
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
	}
	if logins == nil {
		logins = loginFunc(func(context.Context, uint64) (string, error) {
			return "", errors.New("no lookup configured")
		})
	}
	env.app = NewApp(Dependencies{
		NewRegistry: func(baseURL string, _ time.Duration, _ *log.Logger) (registry.Registry, error) {
			if baseURL != testBaseURL {
				t.Errorf("registry base = %q, want %q", baseURL, testBaseURL)
			}
			return env.reg, nil
		},
		Logins:    logins,
		Prompts:   env.prompts,
		ConfigDir: t.TempDir(),
		UI:        &tui.Config{Accessible: true},
		Stdin:     strings.NewReader(""),
		Stdout:    env.stdout,
		Stderr:    env.stderr,
	})
	return env
}

// run executes the command tree with args. The base URL and credential
// directory flags are always set.
func (e *testEnv) run(args ...string) error {
	root := NewRootCommand(e.app)
	root.SetArgs(append([]string{"--base-url", testBaseURL, "--base-dir", e.authDir}, args...))
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)
	return root.ExecuteContext(context.Background())
}

func (e *testEnv) store() auth.Store {
	return auth.Store{Dir: e.authDir, BaseURL: testBaseURL}
}

// signIn stores credentials for user and registers them with the registry.
func (e *testEnv) signIn(t *testing.T, user uint64, login string) {
	t.Helper()
	if err := e.store().Save(auth.Credentials{User: user, Secret: "s3cret", Login: login}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	e.reg.AddUser(registry.Identity{User: user, Secret: "s3cret"})
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v (%T), want *ExitError", err, err)
	}
	return exitErr.Code
}

func TestClassifyExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"transport", fmt.Errorf("upload content: %w: dial tcp", registry.ErrTransport), 2},
		{"rejected", &registry.Error{Kind: registry.ErrorKindRejected, Message: "nope"}, 1},
		{"plain", errors.New("boom"), 1},
		{"explicit exit code", &ExitError{Code: 3}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyExitCode(tt.err); got != tt.want {
				t.Errorf("classifyExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	e := &ExitError{Code: 2, Err: cause}
	if e.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", e.Error(), "boom")
	}
	if !errors.Is(e, cause) {
		t.Error("errors.Is(ExitError, cause) = false, want true")
	}
	if got := (&ExitError{Code: 1}).Error(); got != "exit status 1" {
		t.Errorf("Error() = %q, want %q", got, "exit status 1")
	}
}

func TestNewServiceErrorPanicsOnNil(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("newServiceError(nil) did not panic")
		}
	}()
	_ = newServiceError(nil, 0, "")
}

func TestGetVersionString(t *testing.T) {
	t.Parallel()

	if Version == "dev" && getVersionString() != "dev (built from source)" {
		t.Errorf("getVersionString() = %q", getVersionString())
	}
}

func TestWhoami(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.signIn(t, 42, "octocat")

	if err := env.run("whoami"); err != nil {
		t.Fatalf("whoami error = %v", err)
	}
	if got := env.stdout.String(); got != "42 (octocat)\n" {
		t.Errorf("stdout = %q, want %q", got, "42 (octocat)\n")
	}
}

func TestWhoamiUnknownLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.signIn(t, 7, "")

	if err := env.run("whoami"); err != nil {
		t.Fatalf("whoami error = %v", err)
	}
	if got := env.stdout.String(); got != "7 (unknown)\n" {
		t.Errorf("stdout = %q, want %q", got, "7 (unknown)\n")
	}
}

func TestWhoamiNotSignedIn(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	err := env.run("whoami")
	if code := exitCode(t, err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !errors.Is(err, auth.ErrNotSignedIn) {
		t.Errorf("error = %v, want ErrNotSignedIn", err)
	}
	if !strings.Contains(env.stderr.String(), "You are currently not signed in on '"+testBaseURL+"'!") {
		t.Errorf("stderr = %q, want not-signed-in message", env.stderr.String())
	}
}

func TestLogout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.signIn(t, 42, "octocat")

	if err := env.run("logout"); err != nil {
		t.Fatalf("logout error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "Signed out 42 (octocat) from "+testBaseURL) {
		t.Errorf("stdout = %q", env.stdout.String())
	}
	if _, err := env.store().Load(); !errors.Is(err, auth.ErrNotSignedIn) {
		t.Errorf("Load() after logout error = %v, want ErrNotSignedIn", err)
	}

	err := env.run("logout")
	if code := exitCode(t, err); code != 1 {
		t.Errorf("second logout exit code = %d, want 1", code)
	}
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	if err := env.run("config", "path"); err != nil {
		t.Fatalf("config path error = %v", err)
	}
	want := filepath.Join(env.app.configDir, "config.cue") + "\n"
	if got := env.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	testutil.MustWriteFile(t, env.app.configDir, "config.cue", "http: {\n\ttimeout: \"5s\"\n}\nui: {\n\ttheme: \"dracula\"\n}\n")

	if err := env.run("config", "show"); err != nil {
		t.Fatalf("config show error = %v", err)
	}
	out := env.stdout.String()
	for _, want := range []string{
		filepath.Join(env.app.configDir, "config.cue"),
		"https://crux.land/api/",
		"5s",
		"dracula",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestConfigDumpAppliesFlags(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	if err := env.run("config", "dump"); err != nil {
		t.Fatalf("config dump error = %v", err)
	}
	out := env.stdout.String()
	if !strings.Contains(out, `base_url: "`+testBaseURL+`"`) {
		t.Errorf("dump missing base_url:\n%s", out)
	}
	if !strings.Contains(out, `auth_dir: "`+env.authDir+`"`) {
		t.Errorf("dump missing --base-dir override:\n%s", out)
	}
}

func TestInvalidConfigFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	testutil.MustWriteFile(t, env.app.configDir, "config.cue", "ui: {\n\ttheme: \"neon\"\n}\n")

	err := env.run("whoami")
	if code := exitCode(t, err); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(env.stderr.String(), "load configuration") {
		t.Errorf("stderr = %q, want configuration error", env.stderr.String())
	}
}

func TestCompletion(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	if err := env.run("completion", "bash"); err != nil {
		t.Fatalf("completion error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "crux") {
		t.Error("bash completion does not mention crux")
	}
}
