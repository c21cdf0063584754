// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cruxland/crux/internal/auth"
	"github.com/cruxland/crux/internal/issue"
	"github.com/cruxland/crux/internal/registry"
	"github.com/cruxland/crux/internal/tui"
	"github.com/cruxland/crux/internal/version"
)

const (
	// maxAliasColumns caps the number of columns `alias list` prints.
	maxAliasColumns = 6
	// aliasColumnGap is the padding added to the longest alias name.
	aliasColumnGap = 4
)

type (
	// aliasParams bundles the dependencies shared by the alias subcommands.
	aliasParams struct {
		stdout   io.Writer
		stderr   io.Writer
		base     *url.URL
		registry registry.Registry
		store    auth.Store
		ui       tui.Config

		// width is the terminal width of stdout, or 0 when stdout is not a
		// terminal.
		width int
	}
)

// newAliasCommand creates the `crux alias` command tree.
func newAliasCommand(app *App) *cobra.Command {
	aliasCmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage your aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	aliasCmd.AddCommand(&cobra.Command{
		Use:     "request <alias>",
		Aliases: []string{"req"},
		Short:   "Request a new alias",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.aliasParams(cmd.Context())
			if err != nil {
				return app.handleError(cmd, err)
			}
			return app.handleError(cmd, runAliasRequest(cmd.Context(), p, args[0]))
		},
	})

	aliasCmd.AddCommand(&cobra.Command{
		Use:     "list [alias]",
		Aliases: []string{"ls"},
		Short:   "List the aliases you own, or the tags of one alias",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.aliasParams(cmd.Context())
			if err != nil {
				return app.handleError(cmd, err)
			}
			var alias string
			if len(args) > 0 {
				alias = args[0]
			}
			return app.handleError(cmd, runAliasList(cmd.Context(), p, alias))
		},
	})

	return aliasCmd
}

func (a *App) aliasParams(ctx context.Context) (aliasParams, error) {
	s, err := a.session(ctx)
	if err != nil {
		return aliasParams{}, err
	}
	return aliasParams{
		stdout:   a.stdout,
		stderr:   a.stderr,
		base:     s.base,
		registry: s.registry,
		store:    s.store,
		ui:       s.ui,
		width:    tui.TerminalWidth(a.stdout),
	}, nil
}

// runAliasRequest claims alias for the signed-in user.
func runAliasRequest(ctx context.Context, p aliasParams, alias string) error {
	creds, err := requireCredentials(p.store, p.base.String())
	if err != nil {
		return err
	}
	fmt.Fprintln(p.stderr, VerboseStyle.Render(fmt.Sprintf("Signed in with user %d (%s)", creds.User, displayLogin(creds))))

	err = tui.Spin(ctx, p.ui, fmt.Sprintf("Requesting '%s'", alias), func(ctx context.Context) error {
		return p.registry.Request(ctx, creds.Identity(), alias)
	})
	switch {
	case errors.Is(err, registry.ErrAliasExists):
		return issue.NewErrorContext().
			WithOperation("request alias").
			WithResource(alias).
			WithSuggestion("Pick a different alias name").
			WithSuggestion("Run 'crux alias list' to see the aliases you already own").
			Wrap(err).
			BuildError()
	case err != nil:
		return explainRegistryError(err, "request alias", alias)
	}

	fmt.Fprintln(p.stdout, SuccessStyle.Render(fmt.Sprintf("Successfully requested '%s'", alias)))
	return nil
}

// runAliasList prints the aliases of the signed-in user, or the tags of
// alias when it is set.
func runAliasList(ctx context.Context, p aliasParams, alias string) error {
	creds, err := requireCredentials(p.store, p.base.String())
	if err != nil {
		return err
	}

	var entries []registry.Alias
	err = tui.Spin(ctx, p.ui, "Fetching aliases", func(ctx context.Context) error {
		var listErr error
		entries, listErr = p.registry.List(ctx, creds.User)
		return listErr
	})
	if err != nil {
		return explainRegistryError(err, "list aliases", p.base.String())
	}

	if alias == "" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}
		fmt.Fprintln(p.stdout, formatAliasNames(names, p.width))
		return nil
	}

	entry, ok := registry.Find(entries, creds.User, alias)
	if !ok {
		return &ExitError{Code: 1, Err: issue.NewErrorContext().
			WithOperation("list tags").
			WithResource(alias).
			WithSuggestion("Run 'crux alias list' to see the aliases you own").
			WithIssue(issue.AliasNotFoundId).
			Wrap(version.ErrAliasNotOwned).
			BuildError()}
	}
	fmt.Fprint(p.stdout, formatAliasTags(p.base, entry))
	return nil
}

// formatAliasNames lays names out in right-aligned columns that fit width.
// Without a width (stdout is not a terminal) it prints one name per line.
func formatAliasNames(names []string, width int) string {
	if width <= 0 {
		return strings.Join(names, "\n")
	}

	cell := 0
	for _, n := range names {
		cell = max(cell, len(n))
	}
	cell += aliasColumnGap
	columns := max(min(maxAliasColumns, width/cell), 1)

	var sb strings.Builder
	for i, n := range names {
		if i != 0 && i%columns == 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%*s", cell, n)
	}
	return sb.String()
}

// formatAliasTags prints one "<alias url> -> <script url>" line per tag in
// ascending version order, with the arrows aligned.
func formatAliasTags(base *url.URL, entry registry.Alias) string {
	tags := slices.Collect(maps.Keys(entry.Tags))
	version.Sort(tags)

	longest := 0
	for _, t := range tags {
		longest = max(longest, len(t))
	}

	var sb strings.Builder
	for _, t := range tags {
		fmt.Fprintf(&sb, "%s%s -> %s\n",
			registry.AliasURL(base, entry.Name, t),
			strings.Repeat(" ", longest-len(t)),
			registry.ScriptURL(base, entry.Tags[t]))
	}
	return sb.String()
}
