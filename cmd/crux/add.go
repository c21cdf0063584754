// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cruxland/crux/internal/auth"
	"github.com/cruxland/crux/internal/issue"
	"github.com/cruxland/crux/internal/registry"
	"github.com/cruxland/crux/internal/release"
	"github.com/cruxland/crux/internal/tui"
	"github.com/cruxland/crux/internal/version"
)

// errNoAliasName is returned when a release is requested but no alias
// name was given and none can be derived from the path.
var errNoAliasName = errors.New("could not infer name of alias")

// addParams bundles the dependencies and flags for the add command,
// enabling the core logic in runAdd to be tested without a real Cobra
// command or a live registry.
type addParams struct {
	stdout   io.Writer
	stderr   io.Writer
	base     *url.URL
	registry registry.Registry
	store    auth.Store
	prompts  Prompter
	ui       tui.Config
	logger   *log.Logger

	path    string
	name    string       // alias name (empty = derived from path)
	version string       // explicit tag
	bump    version.Bump // BumpNone unless -r/-m/-p
	yes     bool         // --yes flag: release without confirmation
}

// newAddCommand creates the `crux add` command.
func newAddCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Upload a file and optionally release it under an alias",
		Long: `Upload a file to crux.land.

When used together with --version, --major, --minor or --patch the upload is
also released as a new tag of an alias. The alias name is the file name
without its extension unless --name is given.

If the latest tag of the alias already points to the uploaded script, crux
asks before releasing the same content again.`,
		Example: `  # Upload a file
  crux add mod.ts

  # Release the next patch version of the 'mod' alias
  crux add --patch mod.ts

  # Release as an explicit version under a custom alias
  crux add --name tools --version 1.0.0-rc.1 mod.ts`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			major, _ := cmd.Flags().GetBool("major")
			minor, _ := cmd.Flags().GetBool("minor")
			patch, _ := cmd.Flags().GetBool("patch")
			name, _ := cmd.Flags().GetString("name")
			tag, _ := cmd.Flags().GetString("version")
			yes, _ := cmd.Flags().GetBool("yes")

			s, err := app.session(cmd.Context())
			if err != nil {
				return app.handleError(cmd, err)
			}

			p := addParams{
				stdout:   app.stdout,
				stderr:   app.stderr,
				base:     s.base,
				registry: s.registry,
				store:    s.store,
				prompts:  app.Prompts,
				ui:       s.ui,
				logger:   s.logger,
				path:     args[0],
				name:     name,
				version:  tag,
				bump:     bumpFromFlags(major, minor, patch),
				yes:      yes,
			}
			return app.handleError(cmd, runAdd(cmd.Context(), p))
		},
	}

	cmd.Flags().StringP("name", "n", "", "alias name (default: file name without extension)")
	cmd.Flags().StringP("version", "V", "", "release the upload under this tag")
	cmd.Flags().BoolP("major", "r", false, "release the next major version")
	cmd.Flags().BoolP("minor", "m", false, "release the next minor version")
	cmd.Flags().BoolP("patch", "p", false, "release the next patch version")
	cmd.Flags().BoolP("yes", "y", false, "release without asking when the content did not change")
	cmd.Flags().SetNormalizeFunc(normalizeAddFlags)
	cmd.MarkFlagsMutuallyExclusive("version", "major", "minor", "patch")

	return cmd
}

// normalizeAddFlags maps --release onto --major.
func normalizeAddFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "release" {
		name = "major"
	}
	return pflag.NormalizedName(name)
}

func bumpFromFlags(major, minor, patch bool) version.Bump {
	switch {
	case major:
		return version.BumpMajor
	case minor:
		return version.BumpMinor
	case patch:
		return version.BumpPatch
	default:
		return version.BumpNone
	}
}

// inferAliasName returns name, or the base name of path without its
// extension.
func inferAliasName(name, path string) string {
	if name != "" {
		return name
	}
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// runAdd is the core add logic, separated from Cobra for testability.
// All user-facing output goes through p.stdout and p.stderr.
//
// Flow:
//  1. Read the file.
//  2. When a version or bump is requested, derive the alias name and load
//     the stored credentials.
//  3. Publish: upload, then resolve, gate and release the next tag.
//  4. A declined confirmation is not an error.
func runAdd(ctx context.Context, p addParams) error {
	content, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return issue.NewErrorContext().
				WithOperation("read file").
				WithResource(p.path).
				WithSuggestion("Check the path for typos").
				WithIssue(issue.FileNotFoundId).
				Wrap(err).
				BuildError()
		}
		return fmt.Errorf("reading %s: %w", p.path, err)
	}

	req := release.Request{
		Name:    filepath.Base(p.path),
		Content: content,
		Version: p.version,
		Bump:    p.bump,
	}

	if p.version != "" || p.bump != version.BumpNone {
		req.Alias = inferAliasName(p.name, p.path)
		if req.Alias == "" {
			return errNoAliasName
		}
		creds, err := requireCredentials(p.store, p.base.String())
		if err != nil {
			return err
		}
		fmt.Fprintln(p.stderr, VerboseStyle.Render(fmt.Sprintf("Signed in with user %d (%s)", creds.User, displayLogin(creds))))
		req.Identity = creds.Identity()
	}

	fmt.Fprintln(p.stderr, VerboseStyle.Render("Uploading "+p.path))

	pub := release.NewPublisher(p.registry,
		release.WithConfirmer(p.confirmer()),
		release.WithObserver(release.ObserverFunc(p.observe)),
		release.WithLogger(p.logger),
	)
	_, err = pub.Publish(ctx, req)
	switch {
	case errors.Is(err, release.ErrAborted):
		return nil
	case err != nil:
		return explainPublishError(err, p.path, req.Alias)
	}
	return nil
}

// confirmer asks whether a tag that repeats the current script should be
// released anyway. --yes answers for the user.
func (p addParams) confirmer() release.Confirmer {
	if p.yes {
		return release.ConfirmFunc(func(context.Context, release.Prompt) (bool, error) {
			return true, nil
		})
	}
	return release.ConfirmFunc(func(ctx context.Context, pr release.Prompt) (bool, error) {
		return p.prompts.Confirm(ctx, tui.ConfirmOptions{
			Title: "Are you sure you would still like to release the new tag?",
			Description: fmt.Sprintf("%s@%s already points to %s",
				pr.Alias, pr.Current.Tag, registry.ScriptURL(p.base, pr.ScriptRef)),
			Default: false,
			Config:  p.ui,
		})
	})
}

// observe renders the progress of a publish.
func (p addParams) observe(e release.Event) {
	res := e.Result
	switch e.To {
	case release.StateUploaded:
		scriptURL := registry.ScriptURL(p.base, res.ScriptRef)
		if res.Created {
			fmt.Fprintln(p.stdout, SuccessStyle.Render("Published to "+scriptURL))
		} else {
			fmt.Fprintln(p.stdout, VerboseStyle.Render("Already published to "+scriptURL))
		}

	case release.StateResolvingVersion:
		fmt.Fprintln(p.stderr, VerboseStyle.Render("Resolving next version for "+res.Alias))

	case release.StateGated:
		fmt.Fprintln(p.stderr, WarningStyle.Render(fmt.Sprintf("Previous tag '%s' and next tag '%s' has same script %s",
			res.Current.Tag, res.Tag, registry.ScriptURL(p.base, res.ScriptRef))))

	case release.StateAborted:
		fmt.Fprintln(p.stdout, ErrorStyle.Render("Okay we won't!"))

	case release.StateReleasing:
		if e.From != release.StateResolvingVersion {
			break
		}
		switch {
		case p.version != "":
			fmt.Fprintln(p.stderr, VerboseStyle.Render(fmt.Sprintf("Releasing '%s' on '%s'", res.Tag, res.Alias)))
		case res.Current == nil:
			fmt.Fprintln(p.stderr, VerboseStyle.Render(fmt.Sprintf("No previous tags of '%s' exists, using '%s'", res.Alias, res.Tag)))
		default:
			fmt.Fprintln(p.stderr, VerboseStyle.Render(fmt.Sprintf("Next tag of '%s' will be '%s'", res.Alias, res.Tag)))
		}

	case release.StateReleased:
		fmt.Fprintln(p.stdout, SuccessStyle.Render("Published to "+registry.AliasURL(p.base, res.Alias, res.Tag)))
	}
}

// explainPublishError attaches the operation, suggestions and catalog issue
// that match a publish failure.
func explainPublishError(err error, path, alias string) error {
	switch {
	case errors.Is(err, version.ErrAliasNotOwned):
		return issue.NewErrorContext().
			WithOperation("release alias").
			WithResource(alias).
			WithSuggestion(fmt.Sprintf("Request it with 'crux alias request %s'", alias)).
			WithSuggestion("Check 'crux whoami' shows the account that owns it").
			WithIssue(issue.AliasNotOwnedId).
			Wrap(err).
			BuildError()
	case errors.Is(err, version.ErrInvalidTag), errors.Is(err, version.ErrVersionOverflow):
		return issue.NewErrorContext().
			WithOperation("resolve version").
			WithResource(alias).
			WithSuggestion("Use a semantic version such as 1.2.3 or 1.2.3-rc.1").
			WithIssue(issue.InvalidVersionId).
			Wrap(err).
			BuildError()
	}
	return explainRegistryError(err, "publish", path)
}

// explainRegistryError attaches catalog help to transport failures and
// registry refusals. Other errors are returned unchanged.
func explainRegistryError(err error, op, resource string) error {
	switch {
	case registry.IsTransport(err):
		return issue.NewErrorContext().
			WithOperation(op).
			WithResource(resource).
			WithSuggestion("Check your network connection and try again").
			WithSuggestion("Verify the registry URL passed with --base-url").
			WithIssue(issue.RegistryUnreachableId).
			Wrap(err).
			BuildError()
	case errors.Is(err, registry.ErrTagConflict), errors.Is(err, registry.ErrRejected):
		return issue.NewErrorContext().
			WithOperation(op).
			WithResource(resource).
			WithIssue(issue.ReleaseRejectedId).
			Wrap(err).
			BuildError()
	default:
		return err
	}
}
