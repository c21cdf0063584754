// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/cruxland/crux/internal/issue"
	"github.com/cruxland/crux/internal/registry"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the crux command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "crux",
		Short: "Publish scripts to crux.land",
		Long: TitleStyle.Render("crux") + SubtitleStyle.Render(" - Publish scripts to crux.land") + `

crux uploads files to a content-addressed script registry. Identical
content always maps to the same script, so uploading twice is harmless.
Scripts can be released under an alias with semantic version tags.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Sign in with your user id and secret: crux login
  2. Claim an alias: crux alias request my-tool
  3. Release a version: crux add --patch my-tool.ts

` + SubtitleStyle.Render("Examples:") + `
  crux add mod.ts           Upload mod.ts and print its URL
  crux add -m mod.ts        Release the next minor version of 'mod'
  crux add -V 2.0.0 mod.ts  Release 'mod' as 2.0.0
  crux alias ls mod         List the tags of 'mod'
  crux whoami               Show who is signed in`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&app.flags.baseURL, "base-url", "b", "", "base URL of the crux.land API (default \""+registry.DefaultBaseURL+"\")")
	pf.StringVarP(&app.flags.baseDir, "base-dir", "d", "", "base authentication directory (default \"~/.crux/auth\")")
	pf.StringVar(&app.flags.configPath, "config", "", "config file (default is $HOME/.config/crux/config.cue)")
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newAddCommand(app),
		newAliasCommand(app),
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newConfigCommand(app),
		newCompletionCommand(app),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the crux command tree. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// handleError renders err for the user and converts it into an ExitError.
// Catalog help is printed for errors linked to a known issue.
func (a *App) handleError(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	cmd.SilenceErrors = true

	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return exitErr
	}

	var svcErr *ServiceError
	switch {
	case errors.As(err, &svcErr):
		renderServiceError(a.stderr, svcErr)
	case issue.IssueOf(err) != nil:
		renderServiceError(a.stderr, newServiceError(err, issue.IssueOf(err).Id(), ""))
	}

	fmt.Fprintln(a.stderr, ErrorStyle.Render("error:")+" "+formatErrorForDisplay(err, a.verbose()))
	return &ExitError{Code: classifyExitCode(err), Err: err}
}

// classifyExitCode maps an error to a process exit code. Failures to reach
// the registry use exit code 2; everything else is user-correctable and
// uses exit code 1.
func classifyExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case registry.IsTransport(err):
		return 2
	default:
		return 1
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
