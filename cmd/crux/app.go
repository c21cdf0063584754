// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cruxland/crux/internal/auth"
	"github.com/cruxland/crux/internal/config"
	"github.com/cruxland/crux/internal/github"
	"github.com/cruxland/crux/internal/issue"
	"github.com/cruxland/crux/internal/registry"
	"github.com/cruxland/crux/internal/tui"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every Cobra handler receives an App and reaches
	// the registry, the credential store and the prompts through it.
	App struct {
		Config      config.Provider
		NewRegistry RegistryFactory
		Logins      LoginLookup
		Prompts     Prompter

		configDir string
		ui        tui.Config
		stdin     io.Reader
		stdout    io.Writer
		stderr    io.Writer

		flags globalFlags
		sess  *session
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      config.Provider
		NewRegistry RegistryFactory
		Logins      LoginLookup
		Prompts     Prompter
		// ConfigDir overrides the directory searched for config.cue.
		ConfigDir string
		// UI overrides the prompt configuration derived from the terminal.
		UI     *tui.Config
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// RegistryFactory builds the registry client for a normalized API base.
	RegistryFactory func(baseURL string, timeout time.Duration, logger *log.Logger) (registry.Registry, error)

	// LoginLookup resolves a registry user id to a GitHub login.
	LoginLookup interface {
		Login(ctx context.Context, id uint64) (string, error)
	}

	// Prompter asks the user questions.
	Prompter interface {
		Confirm(ctx context.Context, opts tui.ConfirmOptions) (bool, error)
		Input(ctx context.Context, opts tui.InputOptions) (string, error)
	}

	// globalFlags are the persistent root flags.
	globalFlags struct {
		baseURL    string
		baseDir    string
		configPath string
		verbose    bool
	}

	// session is the configuration resolved for one invocation.
	session struct {
		cfg      *config.Config
		base     *url.URL
		logger   *log.Logger
		registry registry.Registry
		store    auth.Store
		ui       tui.Config
		verbose  bool
	}

	tuiPrompter struct{}
)

// NewApp builds an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:      deps.Config,
		NewRegistry: deps.NewRegistry,
		Logins:      deps.Logins,
		Prompts:     deps.Prompts,
		configDir:   deps.ConfigDir,
		stdin:       deps.Stdin,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.NewRegistry == nil {
		app.NewRegistry = newHTTPRegistry
	}
	if app.Logins == nil {
		app.Logins = github.NewClient(
			github.WithHTTPClient(registry.NewHTTPClient(config.DefaultHTTPTimeout)),
			github.WithToken(os.Getenv("GITHUB_TOKEN")),
			github.WithUserAgent("crux/"+Version),
		)
	}
	if app.Prompts == nil {
		app.Prompts = tuiPrompter{}
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if deps.UI != nil {
		app.ui = *deps.UI
	} else {
		app.ui = tui.DefaultConfig()
	}
	return app
}

// newHTTPRegistry is the production RegistryFactory.
func newHTTPRegistry(baseURL string, timeout time.Duration, logger *log.Logger) (registry.Registry, error) {
	return registry.NewClient(baseURL,
		registry.WithHTTPClient(registry.NewHTTPClient(timeout)),
		registry.WithUserAgent("crux/"+Version),
		registry.WithLogger(logger),
	)
}

// session loads the configuration once per invocation and applies the
// global flags on top of it.
func (a *App) session(ctx context.Context) (*session, error) {
	if a.sess != nil {
		return a.sess, nil
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.flags.configPath,
		ConfigDirPath:  a.configDir,
	})
	if err != nil {
		return nil, err
	}
	if a.flags.baseURL != "" {
		cfg.BaseURL = a.flags.baseURL
	}
	if a.flags.baseDir != "" {
		cfg.AuthDir = a.flags.baseDir
	}

	verbose := a.flags.verbose || cfg.UI.Verbose
	logger := log.NewWithOptions(a.stderr, log.Options{Prefix: "crux", Level: log.WarnLevel})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	base, err := registry.NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("resolve registry URL").
			WithResource(cfg.BaseURL).
			WithSuggestion("Pass a URL such as https://crux.land/api/ with --base-url").
			WithSuggestion("Check base_url in the config file and CRUX_BASE_URL").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(err).
			BuildError()
	}

	reg, err := a.NewRegistry(base.String(), cfg.HTTP.Timeout, logger)
	if err != nil {
		return nil, err
	}

	ui := a.ui
	ui.Accessible = ui.Accessible || cfg.UI.Accessible
	if cfg.UI.Theme != "" {
		ui.Theme = tui.Theme(cfg.UI.Theme)
	}
	if ui.Input == nil {
		ui.Input = a.stdin
	}
	if ui.Output == nil {
		ui.Output = a.stderr
	}

	logger.Debug("session", "base_url", base.String(), "auth_dir", cfg.AuthDir)

	a.sess = &session{
		cfg:      cfg,
		base:     base,
		logger:   logger,
		registry: reg,
		store:    auth.Store{Dir: cfg.AuthDir, BaseURL: base.String()},
		ui:       ui,
		verbose:  verbose,
	}
	return a.sess, nil
}

// verbose reports whether verbose output was requested, before or after
// the configuration was loaded.
func (a *App) verbose() bool {
	if a.sess != nil {
		return a.sess.verbose
	}
	return a.flags.verbose
}

func (tuiPrompter) Confirm(ctx context.Context, opts tui.ConfirmOptions) (bool, error) {
	return tui.Confirm(ctx, opts)
}

func (tuiPrompter) Input(ctx context.Context, opts tui.InputOptions) (string, error) {
	return tui.Input(ctx, opts)
}
